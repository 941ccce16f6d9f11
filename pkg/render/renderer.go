package render

import (
	"context"

	"github.com/goliatone/go-opforms/pkg/operator"
)

// Renderer turns an operator's input form into an output representation
// (descriptor JSON, HTML, an interactive terminal session).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, op operator.Operator, options RenderOptions) ([]byte, error)
}
