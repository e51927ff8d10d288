package page

import (
	"context"
	"io"
	"strings"

	"github.com/banux/memorybook/internal/gallery"
)

// PageAttr is the body attribute carrying the id of one page load.
const PageAttr = "data-page"

// Site is a fully populated page ready to be served.
type Site struct {
	// HTML is the page markup with every known gallery rendered.
	HTML string

	// Layouts holds the built galleries keyed by id.
	Layouts map[string]gallery.Layout

	// Order lists the built gallery ids in page order.
	Order []string

	// Paws is the declared paw set of the easter-egg hunt.
	Paws []string
}

// Load parses the page from r, builds every gallery container with b and
// renders the result. It returns once every gallery has settled.
func Load(ctx context.Context, r io.Reader, b *gallery.Builder) (*Site, error) {
	doc, err := Parse(r)
	if err != nil {
		return nil, err
	}
	containers := doc.Containers()
	layouts := b.BuildAll(ctx, containers)

	site := &Site{Layouts: layouts, Paws: doc.Paws()}
	seen := make(map[string]bool, len(layouts))
	for _, c := range containers {
		id := c.GalleryID()
		if _, ok := layouts[id]; ok && !seen[id] {
			seen[id] = true
			site.Order = append(site.Order, id)
		}
	}
	if site.HTML, err = doc.HTML(); err != nil {
		return nil, err
	}
	return site, nil
}

// Stamp returns the site markup with id set as the body's PageAttr.
func (s *Site) Stamp(id string) (string, error) {
	doc, err := Parse(strings.NewReader(s.HTML))
	if err != nil {
		return "", err
	}
	doc.doc.Find("body").SetAttr(PageAttr, id)
	return doc.HTML()
}
