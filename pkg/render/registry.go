package render

import (
	"errors"
	"fmt"
	"mime"
	"sort"
	"strings"
	"sync"
)

// ErrNoRenderer is returned when no registered renderer matches a lookup.
var ErrNoRenderer = errors.New("render: no matching renderer")

// Registry holds renderers by name. The first renderer registered is the
// fallback for content negotiation. Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	byName   map[string]Renderer
	fallback string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Renderer)}
}

// Register adds renderer under its Name. Names must be unique.
func (r *Registry) Register(renderer Renderer) error {
	if renderer == nil {
		return errors.New("render: renderer is required")
	}
	name := strings.TrimSpace(renderer.Name())
	if name == "" {
		return errors.New("render: renderer name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.byName[name]; dup {
		return fmt.Errorf("render: renderer %q already registered", name)
	}
	r.byName[name] = renderer
	if r.fallback == "" {
		r.fallback = name
	}
	return nil
}

// MustRegister is Register that panics, for wiring at init time.
func (r *Registry) MustRegister(renderer Renderer) {
	if err := r.Register(renderer); err != nil {
		panic(err)
	}
}

// Get returns the renderer registered as name.
func (r *Registry) Get(name string) (Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if renderer, ok := r.byName[name]; ok {
		return renderer, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNoRenderer, name)
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byName[name]
	return ok
}

// List returns the registered names sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Negotiate picks a renderer for an Accept header value. Media ranges are
// tried in order of their q parameter; "*/*" and an empty header select the
// fallback renderer.
func (r *Registry) Negotiate(accept string) (Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, media := range mediaRanges(accept) {
		if media == "*/*" {
			break
		}
		for _, name := range sortedKeys(r.byName) {
			renderer := r.byName[name]
			if matchesMedia(media, renderer.ContentType()) {
				return renderer, nil
			}
		}
	}
	if renderer, ok := r.byName[r.fallback]; ok && acceptsAny(accept) {
		return renderer, nil
	}
	return nil, fmt.Errorf("%w for %q", ErrNoRenderer, accept)
}

type mediaRange struct {
	value string
	q     float64
}

func mediaRanges(accept string) []string {
	var ranges []mediaRange
	for _, part := range strings.Split(accept, ",") {
		value, params, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		q := 1.0
		if raw, ok := params["q"]; ok {
			if _, err := fmt.Sscanf(raw, "%g", &q); err != nil {
				q = 0
			}
		}
		if q > 0 {
			ranges = append(ranges, mediaRange{value: value, q: q})
		}
	}
	sort.SliceStable(ranges, func(i, j int) bool { return ranges[i].q > ranges[j].q })

	out := make([]string, len(ranges))
	for i, rng := range ranges {
		out[i] = rng.value
	}
	return out
}

func matchesMedia(media, contentType string) bool {
	value, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	if media == value {
		return true
	}
	prefix, ok := strings.CutSuffix(media, "/*")
	return ok && strings.HasPrefix(value, prefix+"/")
}

func acceptsAny(accept string) bool {
	if strings.TrimSpace(accept) == "" {
		return true
	}
	for _, media := range mediaRanges(accept) {
		if media == "*/*" {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]Renderer) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
