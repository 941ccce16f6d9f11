package render

import theme "github.com/goliatone/go-theme"

// RenderOptions carry per-request data renderers use without mutating the
// operator's forms.
type RenderOptions struct {
	// Values pre-populates controls, keyed by property name; nested objects
	// use nested maps.
	Values map[string]any
	// Errors are field-level messages keyed by dotted property path.
	Errors map[string][]string
	// FormErrors are messages not tied to a single property.
	FormErrors []string
	// Hidden fields are emitted alongside the visible form by renderers that
	// submit over HTTP.
	Hidden []HiddenField
	// Theme is the resolved go-theme configuration, if any.
	Theme *theme.RendererConfig
}

// ErrorsFor returns the messages recorded for path.
func (o RenderOptions) ErrorsFor(path string) []string {
	if len(o.Errors) == 0 {
		return nil
	}
	return o.Errors[path]
}
