package openapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// SourceKind enumerates where a document can be read from.
type SourceKind string

const (
	SourceKindFile SourceKind = "file"
	SourceKindFS   SourceKind = "fs"
	SourceKindURL  SourceKind = "url"
)

// Source identifies an OpenAPI document location.
type Source struct {
	Kind     SourceKind
	Location string
}

// SourceFromFile points at a path on disk.
func SourceFromFile(path string) Source {
	return Source{Kind: SourceKindFile, Location: filepath.Clean(path)}
}

// SourceFromFS points at a name inside the reader's fs.FS.
func SourceFromFS(name string) Source {
	return Source{Kind: SourceKindFS, Location: name}
}

// SourceFromURL parses raw and returns an HTTP source.
func SourceFromURL(raw string) (Source, error) {
	if raw == "" {
		return Source{}, errors.New("openapi: empty URL source")
	}
	if _, err := url.ParseRequestURI(raw); err != nil {
		return Source{}, fmt.Errorf("openapi: invalid URL %q: %w", raw, err)
	}
	return Source{Kind: SourceKindURL, Location: raw}, nil
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithFileSystem enables SourceKindFS lookups.
func WithFileSystem(files fs.FS) ReaderOption {
	return func(r *Reader) {
		r.fs = files
	}
}

// WithHTTPClient enables SourceKindURL lookups with client.
func WithHTTPClient(client *http.Client) ReaderOption {
	return func(r *Reader) {
		r.http = client
	}
}

// WithHTTPFallback enables SourceKindURL lookups with a default client and
// the given timeout.
func WithHTTPFallback(timeout time.Duration) ReaderOption {
	return func(r *Reader) {
		if r.http == nil {
			r.http = &http.Client{Timeout: timeout}
		}
	}
}

// Reader fetches raw documents. HTTP is disabled unless configured.
type Reader struct {
	fs   fs.FS
	http *http.Client
}

// NewReader builds a Reader from options.
func NewReader(opts ...ReaderOption) *Reader {
	r := &Reader{}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Read returns the raw bytes behind src.
func (r *Reader) Read(ctx context.Context, src Source) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if src.Location == "" {
		return nil, errors.New("openapi: source location is required")
	}

	switch src.Kind {
	case SourceKindFile:
		return os.ReadFile(src.Location)
	case SourceKindFS:
		if r.fs == nil {
			return nil, errors.New("openapi: filesystem is not configured")
		}
		return fs.ReadFile(r.fs, src.Location)
	case SourceKindURL:
		if r.http == nil {
			return nil, errors.New("openapi: http support disabled")
		}
		return r.fetch(ctx, src.Location)
	default:
		return nil, fmt.Errorf("openapi: unsupported source kind %q", src.Kind)
	}
}

func (r *Reader) fetch(ctx context.Context, location string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openapi: fetch %s: %w", location, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("openapi: fetch %s: unexpected status %d", location, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
