// Package pawhunt tracks the hidden-paw easter egg: once every declared paw
// has been clicked, the easter-egg modal is revealed exactly once.
package pawhunt

import (
	"errors"
	"sync"
)

// ErrUnknownPaw is returned for a paw id outside the declared set.
var ErrUnknownPaw = errors.New("pawhunt: unknown paw")

// EasterEggImage is the source shown by the modal when it opens.
const EasterEggImage = "assets/easter-egg.jpeg"

// Progress is the state after a hit.
type Progress struct {
	Found int `json:"found"`
	Total int `json:"total"`

	// Revealed is true only on the hit that completed the set.
	Revealed bool `json:"revealed"`
}

// Modal is the easter-egg modal view.
type Modal struct {
	Open       bool   `json:"open"`
	AriaHidden string `json:"ariaHidden"`
	ImageSrc   string `json:"imageSrc"`
}

// Hunt is the set of paws found so far. It grows monotonically and has no
// reset. Safe for concurrent use.
type Hunt struct {
	mu       sync.Mutex
	declared map[string]struct{}
	found    map[string]struct{}
	revealed bool
	modal    bool
}

// New returns a hunt over the given paw ids. Duplicates collapse.
func New(paws []string) *Hunt {
	h := &Hunt{
		declared: make(map[string]struct{}, len(paws)),
		found:    make(map[string]struct{}, len(paws)),
	}
	for _, p := range paws {
		h.declared[p] = struct{}{}
	}
	return h
}

// Hit records a click on paw id.
func (h *Hunt) Hit(id string) (Progress, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.declared[id]; !ok {
		return h.progress(false), ErrUnknownPaw
	}
	h.found[id] = struct{}{}

	reveal := false
	if !h.revealed && len(h.declared) > 0 && len(h.found) == len(h.declared) {
		h.revealed = true
		h.modal = true
		reveal = true
	}
	return h.progress(reveal), nil
}

// Found reports whether id has been clicked.
func (h *Hunt) Found(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.found[id]
	return ok
}

// Progress returns the current counts.
func (h *Hunt) Progress() Progress {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.progress(false)
}

// Modal returns the easter-egg modal view.
func (h *Hunt) Modal() Modal {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.modalView()
}

// CloseModal hides the modal and clears its image source.
func (h *Hunt) CloseModal() Modal {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.modal = false
	return h.modalView()
}

func (h *Hunt) progress(revealed bool) Progress {
	return Progress{Found: len(h.found), Total: len(h.declared), Revealed: revealed}
}

func (h *Hunt) modalView() Modal {
	if !h.modal {
		return Modal{AriaHidden: "true"}
	}
	return Modal{Open: true, AriaHidden: "false", ImageSrc: EasterEggImage}
}
