package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/banux/memorybook/internal/lightbox"
	"github.com/banux/memorybook/internal/pawhunt"
)

const (
	// pageHeader carries the page id on every lightbox and paw-hunt call.
	pageHeader = "X-Memorybook-Page"

	// pageIdle is how long an untouched page keeps its state.
	pageIdle = 12 * time.Hour
)

// pageState is the per-tab state of one served page: its lightbox session
// and its paw hunt.
type pageState struct {
	lightbox *lightbox.Controller
	hunt     *pawhunt.Hunt
	lastSeen time.Time
}

// pageStore holds the state of every page load in memory, keyed by page id.
// Pages idle longer than pageIdle are dropped.
type pageStore struct {
	mu    sync.Mutex
	pages map[string]*pageState
	now   func() time.Time
}

func newPageStore() *pageStore {
	return &pageStore{pages: make(map[string]*pageState), now: time.Now}
}

// create registers a fresh page with a closed lightbox and an empty hunt over
// paws, and returns its id.
func (s *pageStore) create(paws []string, newLightbox func() *lightbox.Controller) string {
	id := uuid.NewString()
	p := &pageState{lightbox: newLightbox(), hunt: pawhunt.New(paws)}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.prune(now)
	p.lastSeen = now
	s.pages[id] = p
	return id
}

// get returns the page registered under id and marks it as seen.
func (s *pageStore) get(id string) (*pageState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pages[id]
	if !ok {
		return nil, false
	}
	now := s.now()
	if now.Sub(p.lastSeen) > pageIdle {
		delete(s.pages, id)
		return nil, false
	}
	p.lastSeen = now
	return p, true
}

func (s *pageStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pages)
}

// prune drops idle pages. Callers hold s.mu.
func (s *pageStore) prune(now time.Time) {
	for id, p := range s.pages {
		if now.Sub(p.lastSeen) > pageIdle {
			delete(s.pages, id)
		}
	}
}

// pageFor resolves the page of an API request. It writes the error response
// and returns false when the id is missing or unknown.
func (s *Server) pageFor(w http.ResponseWriter, r *http.Request) (*pageState, bool) {
	id := r.Header.Get(pageHeader)
	if id == "" {
		http.Error(w, "missing "+pageHeader+" header", http.StatusBadRequest)
		return nil, false
	}
	p, ok := s.pages.get(id)
	if !ok {
		// Expired or issued by a previous process; the client reloads.
		http.Error(w, "page not found", http.StatusNotFound)
		return nil, false
	}
	return p, true
}
