package server

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/banux/memorybook/internal/album"
	"github.com/banux/memorybook/internal/gallery"
	"github.com/banux/memorybook/internal/lightbox"
	"github.com/banux/memorybook/internal/pawhunt"
)

// maxEventBody bounds JSON request bodies of the lightbox and paw endpoints.
const maxEventBody = 4 << 10

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON decodes a bounded request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxEventBody)
	return json.NewDecoder(r.Body).Decode(v)
}

// handleHealth serves a simple health-check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// handlePage serves the populated memory book page. Each load starts a new
// page with a closed lightbox and an empty paw hunt.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	id := s.pages.create(s.site.Paws, s.newLightbox)
	html, err := s.site.Stamp(id)
	if err != nil {
		s.logger.Error("render page", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write([]byte(html))
}

// cardJSON is the JSON representation of one rendered card.
type cardJSON struct {
	Kind  string `json:"kind"`
	Label string `json:"label"`
	Src   string `json:"src,omitempty"`
	Alt   string `json:"alt,omitempty"`
	Index *int   `json:"index,omitempty"`
}

// galleryJSON is the JSON representation of a built gallery.
type galleryJSON struct {
	ID       string        `json:"id"`
	Declared int           `json:"declared"`
	Resolved int           `json:"resolved"`
	Marker   string        `json:"marker"`
	Photos   []album.Photo `json:"photos"`
	Cards    []cardJSON    `json:"cards"`
}

func galleryToJSON(l gallery.Layout) galleryJSON {
	j := galleryJSON{
		ID:       l.Gallery,
		Declared: l.Declaration.Count,
		Resolved: len(l.Photos),
		Marker:   string(l.Marker),
		Photos:   append([]album.Photo{}, l.Photos...),
		Cards:    make([]cardJSON, 0, len(l.Cards)),
	}
	for _, c := range l.Cards {
		cj := cardJSON{Kind: c.Kind.String(), Label: c.Label}
		if c.Kind == gallery.KindPhoto {
			cj.Src = c.Photo.SourceURL
			cj.Alt = c.Photo.AltText
		}
		if c.Clickable() {
			idx := c.Index
			cj.Index = &idx
		}
		j.Cards = append(j.Cards, cj)
	}
	return j
}

// handleGalleries lists every built gallery in page order.
func (s *Server) handleGalleries(w http.ResponseWriter, r *http.Request) {
	out := make([]galleryJSON, 0, len(s.site.Order))
	for _, id := range s.site.Order {
		out = append(out, galleryToJSON(s.site.Layouts[id]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"galleries": out})
}

// handleGallery serves one built gallery.
func (s *Server) handleGallery(w http.ResponseWriter, r *http.Request) {
	l, ok := s.site.Layouts[mux.Vars(r)["id"]]
	if !ok {
		http.Error(w, "gallery not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, galleryToJSON(l))
}

// handleLightbox serves the current lightbox view.
func (s *Server) handleLightbox(w http.ResponseWriter, r *http.Request) {
	p, ok := s.pageFor(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, p.lightbox.View())
}

// openRequest is the body of POST /api/lightbox/open: a card click.
type openRequest struct {
	Gallery string `json:"gallery"`
	Index   int    `json:"index"`
}

// handleLightboxOpen opens the lightbox with a gallery's full photo list.
func (s *Server) handleLightboxOpen(w http.ResponseWriter, r *http.Request) {
	p, ok := s.pageFor(w, r)
	if !ok {
		return
	}
	var req openRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	l, ok := s.site.Layouts[req.Gallery]
	if !ok {
		http.Error(w, "gallery not found", http.StatusNotFound)
		return
	}
	v, err := p.lightbox.Open(l.URLs, req.Index)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.logger.Debug("lightbox open", "gallery", req.Gallery, "index", req.Index)
	writeJSON(w, http.StatusOK, v)
}

// eventRequest is the body of POST /api/lightbox/events.
type eventRequest struct {
	Type   string `json:"type"`
	Key    string `json:"key"`
	Target string `json:"target"`
}

func (e eventRequest) event() (lightbox.Event, error) {
	switch e.Type {
	case "key":
		return lightbox.KeyEvent{Key: e.Key}, nil
	case "click":
		return lightbox.ClickEvent{Target: e.Target}, nil
	case "prev":
		return lightbox.PrevEvent{}, nil
	case "next":
		return lightbox.NextEvent{}, nil
	case "close":
		return lightbox.CloseEvent{}, nil
	default:
		return nil, errors.New("unknown event type")
	}
}

// handleLightboxEvent feeds one input event to the lightbox.
func (s *Server) handleLightboxEvent(w http.ResponseWriter, r *http.Request) {
	p, ok := s.pageFor(w, r)
	if !ok {
		return
	}
	var req eventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	ev, err := req.event()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	v, err := p.lightbox.Handle(ev)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// pawResponse is returned by POST /api/paws/{id}.
type pawResponse struct {
	pawhunt.Progress
	Modal *pawhunt.Modal `json:"modal,omitempty"`
}

// handlePawHit records a paw click and reveals the easter egg when complete.
func (s *Server) handlePawHit(w http.ResponseWriter, r *http.Request) {
	pg, ok := s.pageFor(w, r)
	if !ok {
		return
	}
	p, err := pg.hunt.Hit(mux.Vars(r)["id"])
	if errors.Is(err, pawhunt.ErrUnknownPaw) {
		http.Error(w, "paw not found", http.StatusNotFound)
		return
	}
	resp := pawResponse{Progress: p}
	if p.Revealed {
		m := pg.hunt.Modal()
		resp.Modal = &m
		s.logger.Info("easter egg revealed", "page", r.Header.Get(pageHeader), "paws", p.Total)
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleEasterEgg serves the easter-egg modal view.
func (s *Server) handleEasterEgg(w http.ResponseWriter, r *http.Request) {
	p, ok := s.pageFor(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, p.hunt.Modal())
}

// handleEasterEggClose closes the easter-egg modal.
func (s *Server) handleEasterEggClose(w http.ResponseWriter, r *http.Request) {
	p, ok := s.pageFor(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, p.hunt.CloseModal())
}

// loginPageHTML is the template for the login form.
const loginPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Our Chapters – Sign in</title>
</head>
<body>
  <main class="login">
    <h1>Our Chapters</h1>
    {{if .Error}}<p class="login-error">{{.Error}}</p>{{end}}
    <form method="POST" action="/login">
      <input type="hidden" name="redirect" value="{{.Redirect}}">
      <label for="password">Password</label>
      <input id="password" name="password" type="password" autocomplete="current-password" autofocus required>
      <button type="submit">Open the book</button>
    </form>
  </main>
</body>
</html>`

var loginTmpl = template.Must(template.New("login").Parse(loginPageHTML))

// handleLoginPage serves the GET /login HTML form.
func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if s.opts.Password == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if c, err := r.Cookie(sessionCookieName); err == nil && s.sessions.valid(c.Value) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	redirect := r.URL.Query().Get("redirect")
	if redirect == "" {
		redirect = "/"
	}
	s.renderLoginPage(w, redirect, "")
}

// handleLoginPost processes the POST /login form submission.
func (s *Server) handleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	password := r.FormValue("password")
	redirect := r.FormValue("redirect")
	if redirect == "" || redirect[0] != '/' || strings.HasPrefix(redirect, "//") {
		redirect = "/"
	}

	passwordOK := s.opts.Password == "" ||
		(subtle.ConstantTimeCompare([]byte(password), []byte(s.opts.Password)) == 1)
	if !passwordOK {
		s.renderLoginPage(w, redirect, "That's not it. Try again.")
		return
	}

	token, err := s.sessions.create()
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(sessionDuration.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, redirect, http.StatusSeeOther)
}

// handleLogout clears the session cookie and redirects to /login.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookieName); err == nil {
		s.sessions.delete(c.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:    sessionCookieName,
		Value:   "",
		Path:    "/",
		MaxAge:  -1,
		Expires: time.Unix(0, 0),
	})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// renderLoginPage writes the login HTML page with the given error message.
func (s *Server) renderLoginPage(w http.ResponseWriter, redirect, errMsg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if errMsg != "" {
		w.WriteHeader(http.StatusUnauthorized)
	}
	_ = loginTmpl.Execute(w, struct {
		Error    string
		Redirect string
	}{Error: errMsg, Redirect: redirect})
}
