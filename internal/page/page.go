// Package page binds the memory-book markup to the gallery core.
//
// The page is parsed into an in-memory DOM with goquery. Every element with
// class "gallery" is a display container located by its data-gallery
// attribute; every element with class "paw" declares one paw of the easter
// egg hunt through its data-paw attribute.
package page

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"strconv"

	"github.com/PuerkitoBio/goquery"

	"github.com/banux/memorybook/internal/gallery"
)

const (
	gallerySelector = ".gallery"
	pawSelector     = ".paw"
)

var cardTmpl = template.Must(template.New("card").Parse(
	`{{if eq .Kind "photo"}}<button class="photo-card" type="button" aria-label="{{.Label}}" data-lightbox-index="{{.Index}}"><img src="{{.Src}}" alt="{{.Alt}}"></button>` +
		`{{else if eq .Kind "more"}}<button class="photo-card more" type="button" data-lightbox-index="{{.Index}}"><span>{{.Label}}</span></button>` +
		`{{else}}<div class="photo-card placeholder"><span>{{.Label}}</span></div>{{end}}`))

type cardData struct {
	Kind  string
	Label string
	Index string
	Src   string
	Alt   string
}

// Document is a parsed page.
type Document struct {
	doc *goquery.Document
}

// Parse reads page markup.
func Parse(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return &Document{doc: doc}, nil
}

// Containers returns one container per gallery element, in document order.
func (d *Document) Containers() []gallery.Container {
	var out []gallery.Container
	d.doc.Find(gallerySelector).Each(func(_ int, s *goquery.Selection) {
		out = append(out, &Container{sel: s})
	})
	return out
}

// Paws returns the paw ids declared by the page, in document order.
func (d *Document) Paws() []string {
	var out []string
	d.doc.Find(pawSelector).Each(func(_ int, s *goquery.Selection) {
		if id, ok := s.Attr("data-paw"); ok && id != "" {
			out = append(out, id)
		}
	})
	return out
}

// Populate builds every gallery container of d.
func (d *Document) Populate(ctx context.Context, b *gallery.Builder) map[string]gallery.Layout {
	return b.BuildAll(ctx, d.Containers())
}

// HTML renders the document.
func (d *Document) HTML() (string, error) {
	return d.doc.Html()
}

// Selection exposes the underlying document for inspection.
func (d *Document) Selection() *goquery.Selection {
	return d.doc.Selection
}

// Container is a gallery element of the page.
type Container struct {
	sel *goquery.Selection
}

// GalleryID returns the data-gallery attribute, or "" if absent.
func (c *Container) GalleryID() string {
	return c.sel.AttrOr("data-gallery", "")
}

// Append renders card as a child element.
func (c *Container) Append(card gallery.Card) {
	c.sel.AppendHtml(RenderCard(card))
}

// AddClass adds a class to the gallery element.
func (c *Container) AddClass(name string) {
	c.sel.AddClass(name)
}

// RenderCard returns the markup of one card.
func RenderCard(card gallery.Card) string {
	data := cardData{
		Kind:  card.Kind.String(),
		Label: card.Label,
		Index: strconv.Itoa(card.Index),
		Src:   card.Photo.SourceURL,
		Alt:   card.Photo.AltText,
	}
	var buf bytes.Buffer
	if err := cardTmpl.Execute(&buf, data); err != nil {
		// The template is static and data has only string fields.
		panic(err)
	}
	return buf.String()
}
