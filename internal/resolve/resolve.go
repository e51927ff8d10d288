// Package resolve finds which file extension, if any, makes a photo slot
// loadable.
//
// A slot is identified by an extension-less base path such as
// "assets/ch3-1". Candidate extensions are tried strictly in order, one at a
// time; the first candidate that loads and decodes wins. Exhausting every
// candidate yields no photo, which is an expected outcome for chapters with
// fewer photos than declared slots.
//
// A missing file and a transient load failure are indistinguishable here:
// both advance to the next candidate and both can end in "absent".
package resolve

import (
	"context"
	"errors"
	"time"

	"github.com/banux/memorybook/internal/album"
)

// ErrNoExtensions is returned by New when the candidate list is empty.
var ErrNoExtensions = errors.New("resolve: candidate extension list is empty")

// DefaultExtensions is the fixed candidate order for photo assets.
var DefaultExtensions = []string{"jpg", "jpeg", "png", "JPG", "JPEG", "PNG"}

// Loader attempts to load one image resource.
// On success it returns the realized URL of the resource. Any error means the
// candidate is unusable (missing, undecodable, or unreachable).
type Loader interface {
	Load(ctx context.Context, path string) (string, error)
}

// Resolver probes candidate extensions for a base path using a Loader.
type Resolver struct {
	loader     Loader
	extensions []string

	// timeout bounds each load attempt; zero means no bound.
	timeout time.Duration
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithAttemptTimeout bounds each individual load attempt.
// A value <= 0 leaves attempts unbounded.
func WithAttemptTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// New returns a Resolver trying extensions in the given order.
func New(loader Loader, extensions []string, opts ...Option) (*Resolver, error) {
	if len(extensions) == 0 {
		return nil, ErrNoExtensions
	}
	r := &Resolver{
		loader:     loader,
		extensions: append([]string(nil), extensions...),
	}
	for _, o := range opts {
		o(r)
	}
	return r, nil
}

// Extensions returns the candidate order used by r.
func (r *Resolver) Extensions() []string {
	return append([]string(nil), r.extensions...)
}

// Resolve tries basePath + "." + ext for each candidate in order and returns
// the photo for the first one that loads. ok is false when every candidate
// failed or ctx was cancelled.
func (r *Resolver) Resolve(ctx context.Context, basePath, altText string) (photo album.Photo, ok bool) {
	for _, ext := range r.extensions {
		if ctx.Err() != nil {
			return album.Photo{}, false
		}
		src, err := r.attempt(ctx, basePath+"."+ext)
		if err != nil {
			continue
		}
		return album.Photo{SourceURL: src, AltText: altText}, true
	}
	return album.Photo{}, false
}

func (r *Resolver) attempt(ctx context.Context, path string) (string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	return r.loader.Load(ctx, path)
}
