// Package album provides the photo-gallery data model for memorybook.
// It defines gallery declarations, resolved photos and the read-only
// gallery registry that seeds gallery builds at startup.
package album

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDuplicateGallery is returned when two declarations share an id.
	ErrDuplicateGallery = errors.New("duplicate gallery id")

	// ErrInvalidCount is returned for a declaration whose count is not positive.
	ErrInvalidCount = errors.New("gallery count must be positive")

	// ErrUnknownGallery is returned by lookups for an id that was never declared.
	ErrUnknownGallery = errors.New("unknown gallery")
)

// Declaration describes one chapter gallery: the id of the display container
// it populates and the number of photo slots to attempt.
type Declaration struct {
	// ID is the stable identifier matching a page container (e.g. "ch3").
	ID string `yaml:"id" json:"id"`

	// Count is the upper bound on slots attempted; slots are numbered 1..Count.
	Count int `yaml:"count" json:"count"`
}

// Number returns the chapter number used in alt text: the id with its first
// "ch" removed ("ch10" -> "10").
func (d Declaration) Number() string {
	return strings.Replace(d.ID, "ch", "", 1)
}

// BasePath returns the extension-less asset path for a 1-based slot.
func (d Declaration) BasePath(slot int) string {
	return fmt.Sprintf("assets/%s-%d", d.ID, slot)
}

// AltText returns the alt text for a 1-based slot.
func (d Declaration) AltText(slot int) string {
	return fmt.Sprintf("Chapter %s photo %d", d.Number(), slot)
}

// Photo is an image whose source was found loadable.
type Photo struct {
	// SourceURL is the realized URL of the first extension that loaded.
	SourceURL string `json:"src"`

	// AltText is the accessible description of the photo.
	AltText string `json:"alt"`
}

// Result is the ordered, compacted list of photos found for one gallery.
// Order follows slot order; missing slots contribute nothing.
type Result struct {
	Declaration Declaration
	Photos      []Photo
}

// URLs returns the source URLs of the result in slot order.
func (r Result) URLs() []string {
	urls := make([]string, len(r.Photos))
	for i, p := range r.Photos {
		urls[i] = p.SourceURL
	}
	return urls
}

// Registry is the static, read-only list of gallery declarations.
type Registry struct {
	decls []Declaration
	byID  map[string]int
}

// NewRegistry validates decls and returns a Registry preserving their order.
func NewRegistry(decls ...Declaration) (*Registry, error) {
	r := &Registry{
		decls: make([]Declaration, 0, len(decls)),
		byID:  make(map[string]int, len(decls)),
	}
	for _, d := range decls {
		id := strings.TrimSpace(d.ID)
		if id == "" {
			return nil, fmt.Errorf("gallery id must not be empty")
		}
		if d.Count <= 0 {
			return nil, fmt.Errorf("gallery %q: %w", id, ErrInvalidCount)
		}
		if _, ok := r.byID[id]; ok {
			return nil, fmt.Errorf("gallery %q: %w", id, ErrDuplicateGallery)
		}
		d.ID = id
		r.byID[id] = len(r.decls)
		r.decls = append(r.decls, d)
	}
	return r, nil
}

// Lookup returns the declaration for id.
func (r *Registry) Lookup(id string) (Declaration, bool) {
	if r == nil {
		return Declaration{}, false
	}
	i, ok := r.byID[id]
	if !ok {
		return Declaration{}, false
	}
	return r.decls[i], true
}

// All returns a copy of every declaration in registry order.
func (r *Registry) All() []Declaration {
	if r == nil {
		return nil
	}
	out := make([]Declaration, len(r.decls))
	copy(out, r.decls)
	return out
}

// Len returns the number of declared galleries.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.decls)
}

// DefaultDeclarations returns the ten chapter galleries of the memory book.
func DefaultDeclarations() []Declaration {
	return []Declaration{
		{ID: "ch1", Count: 1},
		{ID: "ch2", Count: 2},
		{ID: "ch3", Count: 3},
		{ID: "ch4", Count: 4},
		{ID: "ch5", Count: 1},
		{ID: "ch6", Count: 3},
		{ID: "ch7", Count: 2},
		{ID: "ch8", Count: 2},
		{ID: "ch9", Count: 1},
		{ID: "ch10", Count: 13},
	}
}
