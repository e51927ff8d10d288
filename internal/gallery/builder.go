// Package gallery builds chapter galleries: it resolves every photo slot of a
// declaration concurrently, waits for all of them, and renders the bounded
// card set onto a display container.
package gallery

import (
	"context"
	"log/slog"
	"sync"

	"github.com/banux/memorybook/internal/album"
)

// Resolver finds the loadable photo for one slot.
type Resolver interface {
	Resolve(ctx context.Context, basePath, altText string) (album.Photo, bool)
}

// Container is a display target for one gallery.
type Container interface {
	// GalleryID returns the registry id the container is bound to, or "" if
	// it carries none.
	GalleryID() string

	// Append adds a rendered card.
	Append(c Card)

	// AddClass tags the container with a layout marker.
	AddClass(name string)
}

// Builder resolves and renders galleries declared in a registry.
type Builder struct {
	resolver Resolver
	registry *album.Registry
	logger   *slog.Logger
}

// NewBuilder returns a Builder. A nil logger uses slog.Default().
func NewBuilder(resolver Resolver, registry *album.Registry, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{resolver: resolver, registry: registry, logger: logger}
}

// Registry returns the registry the builder was created with.
func (b *Builder) Registry() *album.Registry { return b.registry }

// Resolve fires one resolution per slot and returns once every slot has
// settled. Missing slots are dropped; the result keeps slot order.
func (b *Builder) Resolve(ctx context.Context, decl album.Declaration) album.Result {
	slots := make([]*album.Photo, decl.Count)

	var wg sync.WaitGroup
	for i := range slots {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			n := i + 1
			photo, ok := b.resolver.Resolve(ctx, decl.BasePath(n), decl.AltText(n))
			if !ok {
				b.logger.Debug("slot empty", "gallery", decl.ID, "slot", n)
				return
			}
			slots[i] = &photo
		}(i)
	}
	wg.Wait()

	res := album.Result{Declaration: decl}
	for _, p := range slots {
		if p != nil {
			res.Photos = append(res.Photos, *p)
		}
	}
	b.logger.Info("gallery resolved", "gallery", decl.ID, "declared", decl.Count, "resolved", len(res.Photos))
	return res
}

// Build resolves the gallery with the given id and computes its layout.
func (b *Builder) Build(ctx context.Context, id string) (Layout, error) {
	decl, ok := b.registry.Lookup(id)
	if !ok {
		return Layout{}, album.ErrUnknownGallery
	}
	return NewLayout(b.Resolve(ctx, decl)), nil
}

// BuildContainer populates c with its gallery. A container whose id is not
// in the registry is left untouched and ok is false.
// Building the same container twice duplicates its cards.
func (b *Builder) BuildContainer(ctx context.Context, c Container) (l Layout, ok bool) {
	l, err := b.Build(ctx, c.GalleryID())
	if err != nil {
		b.logger.Debug("container skipped", "gallery", c.GalleryID())
		return Layout{}, false
	}
	Render(c, l)
	return l, true
}

// BuildAll resolves every container's gallery concurrently, then renders them
// one at a time in container order. The returned map is keyed by gallery id
// and omits skipped containers.
func (b *Builder) BuildAll(ctx context.Context, containers []Container) map[string]Layout {
	layouts := make([]*Layout, len(containers))

	var wg sync.WaitGroup
	for i, c := range containers {
		id := c.GalleryID()
		if _, ok := b.registry.Lookup(id); !ok {
			b.logger.Debug("container skipped", "gallery", id)
			continue
		}
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			l, err := b.Build(ctx, id)
			if err == nil {
				layouts[i] = &l
			}
		}(i, id)
	}
	wg.Wait()

	out := make(map[string]Layout, len(containers))
	for i, c := range containers {
		if layouts[i] == nil {
			continue
		}
		Render(c, *layouts[i])
		out[layouts[i].Gallery] = *layouts[i]
	}
	return out
}

// Render appends the layout's cards to c and applies its layout marker.
func Render(c Container, l Layout) {
	for _, card := range l.Cards {
		c.Append(card)
	}
	c.AddClass(string(l.Marker))
}
