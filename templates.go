package opforms

import (
	"io/fs"

	"github.com/goliatone/go-opforms/pkg/renderers/html"
)

// EmbeddedTemplates exposes the built-in HTML renderer templates so callers
// can reuse or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return html.DefaultTemplates()
}
