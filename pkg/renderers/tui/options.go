package tui

// OutputFormat selects how Render encodes the collected values.
type OutputFormat string

const (
	OutputFormatJSON           OutputFormat = "json"
	OutputFormatFormURLEncoded OutputFormat = "form"
	// OutputFormatPrettyText prints one "path=value" line per leaf, sorted.
	OutputFormatPrettyText     OutputFormat = "pretty"
)

// Prefixes decorate the messages printed between prompts.
type Prefixes struct {
	Info    string
	Warning string
	Error   string
}

// DefaultPrefixes mark warnings with "!" and errors with "x".
var DefaultPrefixes = Prefixes{Warning: "! ", Error: "x "}

// SubmitTransformer rewrites the validated values before they are encoded.
type SubmitTransformer func(map[string]any) (map[string]any, error)

// Option configures a Renderer.
type Option func(*Renderer)

// WithPromptDriver replaces the survey driver, mostly for tests.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

func WithOutputFormat(format OutputFormat) Option {
	return func(r *Renderer) {
		if format != "" {
			r.outputFormat = format
		}
	}
}

func WithSubmitTransformer(fn SubmitTransformer) Option {
	return func(r *Renderer) {
		r.submitTransformer = fn
	}
}

func WithPrefixes(prefixes Prefixes) Option {
	return func(r *Renderer) {
		r.prefixes = prefixes
	}
}
