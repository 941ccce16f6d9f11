package html

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
)

//go:embed templates/*.tpl
var defaultTemplates embed.FS

// DefaultTemplates exposes the built-in templates.
func DefaultTemplates() fs.FS {
	sub, err := fs.Sub(defaultTemplates, "templates")
	if err != nil {
		return defaultTemplates
	}
	return sub
}

var registerFiltersOnce sync.Once

// registerFilters installs the package filters once per process; pongo2
// filters are global.
func registerFilters() {
	registerFiltersOnce.Do(func() {
		if !pongo2.FilterExists("sanitize") {
			_ = pongo2.RegisterFilter("sanitize", func(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
				return pongo2.AsSafeValue(sanitizeText(in.String())), nil
			})
		}
	})
}

// engine wraps a pongo2 template set with a parsed template cache. Template
// sources given with WithTemplates are searched before the built-ins.
type engine struct {
	mu        sync.RWMutex
	set       *pongo2.TemplateSet
	templates map[string]*pongo2.Template
}

func newEngine(overrides fs.FS, globals map[string]any) *engine {
	var loaders []pongo2.TemplateLoader
	if overrides != nil {
		loaders = append(loaders, pongo2.NewFSLoader(overrides))
	}
	loaders = append(loaders, pongo2.NewFSLoader(DefaultTemplates()))

	registerFilters()
	set := pongo2.NewSet("opforms", loaders...)
	if len(globals) > 0 {
		set.Globals = make(pongo2.Context, len(globals))
		for key, value := range globals {
			set.Globals[strings.TrimSpace(key)] = value
		}
	}
	return &engine{
		set:       set,
		templates: make(map[string]*pongo2.Template),
	}
}

func (e *engine) render(name string, data pongo2.Context) ([]byte, error) {
	if e == nil || e.set == nil {
		return nil, errors.New("html: engine is nil")
	}
	tmpl, err := e.template(name)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(data, &buf); err != nil {
		return nil, fmt.Errorf("html: execute template %q: %w", name, err)
	}
	return buf.Bytes(), nil
}

func (e *engine) template(name string) (*pongo2.Template, error) {
	e.mu.RLock()
	if tmpl, ok := e.templates[name]; ok {
		e.mu.RUnlock()
		return tmpl, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	if tmpl, ok := e.templates[name]; ok {
		return tmpl, nil
	}
	tmpl, err := e.set.FromFile(name)
	if err != nil {
		return nil, fmt.Errorf("html: load template %q: %w", name, err)
	}
	e.templates[name] = tmpl
	return tmpl, nil
}
