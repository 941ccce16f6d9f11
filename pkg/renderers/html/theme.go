package html

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"
)

// Partial keys a theme manifest may override in Templates.
const (
	PartialForm = "opforms.form"
	PartialRow  = "opforms.row"
	// AssetStylesheet names the stylesheet linked from the rendered form.
	AssetStylesheet = "opforms.stylesheet"
)

// Themes indexes go-theme manifests and resolves them into renderer
// configuration. It satisfies theme.ThemeSelector.
type Themes struct {
	mu        sync.RWMutex
	registry  interface{ Register(*theme.Manifest) error }
	manifests map[string]*theme.Manifest
	fallback  string
}

var _ theme.ThemeSelector = (*Themes)(nil)

// NewThemes returns an empty theme index. The first registered manifest
// becomes the default.
func NewThemes() *Themes {
	return &Themes{
		registry:  theme.NewRegistry(),
		manifests: make(map[string]*theme.Manifest),
	}
}

// Register validates manifest through go-theme and indexes it by name.
func (t *Themes) Register(manifest *theme.Manifest) error {
	if manifest == nil || strings.TrimSpace(manifest.Name) == "" {
		return fmt.Errorf("html: theme manifest name is required")
	}
	if err := t.registry.Register(manifest); err != nil {
		return fmt.Errorf("html: register theme %q: %w", manifest.Name, err)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.manifests[manifest.Name] = manifest
	if t.fallback == "" {
		t.fallback = manifest.Name
	}
	return nil
}

// Select resolves name (or the default theme when empty) and variant.
func (t *Themes) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if name == "" {
		name = t.fallback
	}
	manifest, ok := t.manifests[name]
	if !ok {
		return nil, fmt.Errorf("html: theme %q is not registered", name)
	}
	if variant != "" {
		if _, ok := manifest.Variants[variant]; !ok {
			return nil, fmt.Errorf("html: theme %q has no variant %q", name, variant)
		}
	}
	return &theme.Selection{Theme: name, Variant: variant, Manifest: manifest}, nil
}

// Config selects a theme and flattens it into a RendererConfig: variant
// tokens, templates and assets override the base manifest, and every token
// is exposed as a "--token" CSS variable.
func (t *Themes) Config(name, variant string) (*theme.RendererConfig, error) {
	selection, err := t.Select(name, variant)
	if err != nil {
		return nil, err
	}
	return RendererConfig(selection), nil
}

// RendererConfig flattens selection into renderer configuration.
func RendererConfig(selection *theme.Selection) *theme.RendererConfig {
	if selection == nil || selection.Manifest == nil {
		return nil
	}
	manifest := selection.Manifest

	tokens := mergeStrings(manifest.Tokens, nil)
	partials := mergeStrings(manifest.Templates, nil)
	files := mergeStrings(manifest.Assets.Files, nil)
	prefix := manifest.Assets.Prefix

	if v, ok := manifest.Variants[selection.Variant]; ok {
		tokens = mergeStrings(tokens, v.Tokens)
		partials = mergeStrings(partials, v.Templates)
		files = mergeStrings(files, v.Assets.Files)
		if v.Assets.Prefix != "" {
			prefix = v.Assets.Prefix
		}
	}

	cssVars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		cssVars["--"+strings.TrimPrefix(key, "--")] = value
	}

	return &theme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Partials: partials,
		Tokens:   tokens,
		CSSVars:  cssVars,
		AssetURL: func(key string) string {
			file, ok := files[key]
			if !ok || file == "" {
				return ""
			}
			if strings.Contains(file, "://") || strings.HasPrefix(file, "/") || prefix == "" {
				return file
			}
			return strings.TrimRight(prefix, "/") + "/" + path.Clean(file)
		},
	}
}

func mergeStrings(base, override map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(override))
	for key, value := range base {
		out[key] = value
	}
	for key, value := range override {
		out[key] = value
	}
	return out
}

// cssVarsStyle renders CSS variables as a sorted inline style declaration.
func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+vars[key])
	}
	return strings.Join(parts, "; ")
}
