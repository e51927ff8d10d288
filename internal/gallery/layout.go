package gallery

import (
	"fmt"

	"github.com/banux/memorybook/internal/album"
)

// VisibleCap is the number of photo cards shown before the remainder is
// collapsed into a "+K more" card.
const VisibleCap = 3

// Marker classifies a gallery container by its rendered card count.
type Marker string

const (
	MarkerOne   Marker = "one"
	MarkerTwo   Marker = "two"
	MarkerThree Marker = "three"
)

// MarkerFor maps a rendered card count to a layout marker.
// Only 1 and 3 have their own bucket; every other count falls to "two".
func MarkerFor(rendered int) Marker {
	switch rendered {
	case 1:
		return MarkerOne
	case 3:
		return MarkerThree
	default:
		return MarkerTwo
	}
}

// CardKind distinguishes the three kinds of gallery card.
type CardKind int

const (
	KindPhoto CardKind = iota
	KindMore
	KindPlaceholder
)

func (k CardKind) String() string {
	switch k {
	case KindPhoto:
		return "photo"
	case KindMore:
		return "more"
	case KindPlaceholder:
		return "placeholder"
	default:
		return fmt.Sprintf("CardKind(%d)", int(k))
	}
}

// Card is one rendered element of a gallery.
type Card struct {
	Kind CardKind

	// Photo is set for KindPhoto cards.
	Photo album.Photo

	// Label is the aria-label of a photo card or the visible text of a more
	// or placeholder card.
	Label string

	// Index is the position in the full photo list the lightbox opens at.
	// It is -1 for the placeholder, which is not clickable.
	Index int
}

// Clickable reports whether the card opens the lightbox.
func (c Card) Clickable() bool { return c.Kind != KindPlaceholder }

// Layout is the rendered form of a gallery result.
type Layout struct {
	Gallery     string
	Declaration album.Declaration

	// Photos is the full resolved list in slot order.
	Photos []album.Photo

	// URLs is the full resolved list every card opens the lightbox with,
	// not only the visible subset.
	URLs   []string
	Cards  []Card
	Marker Marker
}

// NewLayout computes the cards for a result.
func NewLayout(res album.Result) Layout {
	l := Layout{
		Gallery:     res.Declaration.ID,
		Declaration: res.Declaration,
		Photos:      res.Photos,
		URLs:        res.URLs(),
	}
	if len(res.Photos) == 0 {
		l.Cards = []Card{{Kind: KindPlaceholder, Label: "Photo coming soon", Index: -1}}
		l.Marker = MarkerOne
		return l
	}

	visible := res.Photos
	if len(visible) > VisibleCap {
		visible = visible[:VisibleCap]
	}
	for i, p := range visible {
		l.Cards = append(l.Cards, Card{
			Kind:  KindPhoto,
			Photo: p,
			Label: fmt.Sprintf("Open photo %d", i+1),
			Index: i,
		})
	}
	if extra := len(res.Photos) - VisibleCap; extra > 0 {
		l.Cards = append(l.Cards, Card{
			Kind:  KindMore,
			Label: fmt.Sprintf("+%d more", extra),
			Index: VisibleCap,
		})
	}
	l.Marker = MarkerFor(len(l.Cards))
	return l
}

// Placeholder reports whether the gallery resolved no photos.
func (l Layout) Placeholder() bool {
	return len(l.Cards) == 1 && l.Cards[0].Kind == KindPlaceholder
}

// PhotoCards returns the number of visible photo cards.
func (l Layout) PhotoCards() int {
	n := 0
	for _, c := range l.Cards {
		if c.Kind == KindPhoto {
			n++
		}
	}
	return n
}

// More returns the "+K more" card if the gallery has hidden photos.
func (l Layout) More() (Card, bool) {
	for _, c := range l.Cards {
		if c.Kind == KindMore {
			return c, true
		}
	}
	return Card{}, false
}

// Open returns the lightbox arguments for a click on the card at position
// i of Cards.
func (l Layout) Open(i int) (urls []string, index int, err error) {
	if i < 0 || i >= len(l.Cards) {
		return nil, 0, fmt.Errorf("gallery %q: card %d out of range", l.Gallery, i)
	}
	c := l.Cards[i]
	if !c.Clickable() {
		return nil, 0, fmt.Errorf("gallery %q: card %d is not clickable", l.Gallery, i)
	}
	return append([]string(nil), l.URLs...), c.Index, nil
}
