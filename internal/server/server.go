// Package server implements the HTTP host and routing for memorybook.
package server

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/banux/memorybook/internal/lightbox"
	"github.com/banux/memorybook/internal/page"
)

// Options holds optional configuration for the Server.
type Options struct {
	// Password is the shared password for form-based session authentication.
	// If empty, authentication is disabled.
	Password string

	// SiteFS is the site directory; requests under /assets/ are served from
	// its assets/ folder. If nil, assets are not served.
	SiteFS fs.FS

	// Logger receives request-level diagnostics. Nil uses slog.Default().
	Logger *slog.Logger
}

// Server is the HTTP host for one memory book page.
type Server struct {
	router   *mux.Router
	site     *page.Site
	pages    *pageStore
	sessions *sessionStore
	logger   *slog.Logger
	opts     Options
}

// New creates a Server for a populated site.
// Every page load gets its own lightbox and paw hunt, addressed by the page
// id stamped into the served markup.
func New(site *page.Site, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		router:   mux.NewRouter(),
		site:     site,
		pages:    newPageStore(),
		sessions: newSessionStore(),
		logger:   logger,
		opts:     opts,
	}
	s.registerRoutes()
	return s
}

// newLightbox returns a closed lightbox for a new page.
func (s *Server) newLightbox() *lightbox.Controller {
	return lightbox.New(s.logger)
}

// ServeHTTP implements http.Handler, delegating to the mux router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// registerRoutes sets up all endpoint routes.
func (s *Server) registerRoutes() {
	r := s.router
	auth := authMiddleware(s.opts.Password, s.sessions)

	// Always-public endpoints
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/login", s.handleLoginPage).Methods(http.MethodGet)
	r.HandleFunc("/login", s.handleLoginPost).Methods(http.MethodPost)
	r.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost, http.MethodGet)

	protected := r.NewRoute().Subrouter()
	protected.Use(auth)

	// Page and static gallery data
	protected.HandleFunc("/", s.handlePage).Methods(http.MethodGet)

	protected.HandleFunc("/api/galleries", s.handleGalleries).Methods(http.MethodGet)
	protected.HandleFunc("/api/galleries/{id}", s.handleGallery).Methods(http.MethodGet)

	// Per-page state, addressed by the page id header sent by the page script
	protected.HandleFunc("/api/lightbox", s.handleLightbox).Methods(http.MethodGet)
	protected.HandleFunc("/api/lightbox/open", s.handleLightboxOpen).Methods(http.MethodPost)
	protected.HandleFunc("/api/lightbox/events", s.handleLightboxEvent).Methods(http.MethodPost)

	protected.HandleFunc("/api/paws/{id}", s.handlePawHit).Methods(http.MethodPost)
	protected.HandleFunc("/api/easter-egg", s.handleEasterEgg).Methods(http.MethodGet)
	protected.HandleFunc("/api/easter-egg/close", s.handleEasterEggClose).Methods(http.MethodPost)

	// Chapter photos. The file server maps /assets/x to assets/x in SiteFS.
	if s.opts.SiteFS != nil {
		protected.PathPrefix("/assets/").Handler(http.FileServer(http.FS(s.opts.SiteFS)))
	}
	protected.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
}
