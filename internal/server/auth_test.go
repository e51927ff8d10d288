package server

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/banux/memorybook/internal/album"
	"github.com/banux/memorybook/internal/gallery"
	"github.com/banux/memorybook/internal/page"
	"github.com/banux/memorybook/internal/resolve"
	"github.com/banux/memorybook/internal/resolve/resolvetest"
)

const testPage = `<html><body>
<div class="gallery" data-gallery="ch1"></div>
<div class="gallery" data-gallery="ch3"></div>
<div class="gallery" data-gallery="ch5"></div>
<div class="gallery" data-gallery="ch10"></div>
<button class="paw" data-paw="1"></button>
<button class="paw" data-paw="2"></button>
<div id="lightbox" aria-hidden="true"><img id="lightboxImage" src=""></div>
</body></html>`

// newTestServer builds a server over an in-memory site where ch1 has one
// photo, ch3 has slots 1 and 3, ch5 has none and ch10 has all 13.
func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	files := []string{"assets/ch1-1.jpg", "assets/ch3-1.jpg", "assets/ch3-3.png"}
	for i := 1; i <= 13; i++ {
		files = append(files, fmt.Sprintf("assets/ch10-%d.jpg", i))
	}
	fsys := resolvetest.Assets(files...)

	r, err := resolve.New(resolve.FSLoader{FS: fsys}, resolve.DefaultExtensions)
	if err != nil {
		t.Fatalf("resolve.New: %v", err)
	}
	reg, err := album.NewRegistry(album.DefaultDeclarations()...)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	site, err := page.Load(context.Background(), strings.NewReader(testPage), gallery.NewBuilder(r, reg, nil))
	if err != nil {
		t.Fatalf("page.Load: %v", err)
	}
	if opts.SiteFS == nil {
		opts.SiteFS = fsys
	}
	return New(site, opts)
}

func TestAuth_Disabled(t *testing.T) {
	srv := newTestServer(t, Options{Password: ""})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rr.Code)
	}
}

func TestAuth_MissingCredentials_API(t *testing.T) {
	// API calls without credentials get 401, not a redirect.
	srv := newTestServer(t, Options{Password: "secret"})

	req := httptest.NewRequest(http.MethodGet, "/api/galleries", nil)
	req.Header.Set("Accept", "text/html")
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rr.Code)
	}
	if rr.Header().Get("WWW-Authenticate") == "" {
		t.Error("expected WWW-Authenticate header, got none")
	}
}

func TestAuth_MissingCredentials_Browser(t *testing.T) {
	srv := newTestServer(t, Options{Password: "secret"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	if rr.Code != http.StatusSeeOther {
		t.Errorf("expected 303 redirect to /login, got %d", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/login" {
		t.Errorf("expected Location: /login, got %q", loc)
	}
}

func TestAuth_AssetsProtected(t *testing.T) {
	srv := newTestServer(t, Options{Password: "secret"})

	req := httptest.NewRequest(http.MethodGet, "/assets/ch1-1.jpg", nil)
	req.Header.Set("Accept", "image/avif,image/webp")
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for asset without auth, got %d", rr.Code)
	}
}

func TestAuth_BasicAuth(t *testing.T) {
	srv := newTestServer(t, Options{Password: "secret"})

	for pass, want := range map[string]int{"wrong": http.StatusUnauthorized, "secret": http.StatusOK} {
		req := httptest.NewRequest(http.MethodGet, "/api/galleries", nil)
		req.SetBasicAuth("anyone", pass)
		rr := httptest.NewRecorder()
		srv.ServeHTTP(rr, req)
		if rr.Code != want {
			t.Errorf("password %q: expected %d, got %d", pass, want, rr.Code)
		}
	}
}

func TestAuth_HealthAlwaysPublic(t *testing.T) {
	srv := newTestServer(t, Options{Password: "secret"})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected 200 for /health without auth, got %d", rr.Code)
	}
}

func TestAuth_LoginPage(t *testing.T) {
	srv := newTestServer(t, Options{Password: "secret"})

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected 200 for GET /login, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("expected text/html content type, got %q", ct)
	}
}

func TestAuth_LoginPage_DisabledRedirectsHome(t *testing.T) {
	srv := newTestServer(t, Options{})

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/" {
		t.Errorf("expected 303 to /, got %d %q", rr.Code, rr.Header().Get("Location"))
	}
}

func TestAuth_LoginPost_WrongPassword(t *testing.T) {
	srv := newTestServer(t, Options{Password: "secret"})

	form := url.Values{"password": {"wrong"}, "redirect": {"/"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 on wrong password, got %d", rr.Code)
	}
}

func TestAuth_LoginPost_CorrectPassword(t *testing.T) {
	srv := newTestServer(t, Options{Password: "secret"})

	form := url.Values{"password": {"secret"}, "redirect": {"//evil.example"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 redirect after login, got %d", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/" {
		t.Errorf("protocol-relative redirect not rejected: Location %q", loc)
	}

	var session *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == sessionCookieName {
			session = c
		}
	}
	if session == nil || session.Value == "" {
		t.Fatal("expected session cookie to be set")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/galleries", nil)
	req.AddCookie(session)
	rr = httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("expected 200 with session cookie, got %d", rr.Code)
	}
}

func TestAuth_Logout_ClearsSession(t *testing.T) {
	srv := newTestServer(t, Options{Password: "secret"})

	token, err := srv.sessions.create()
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if !srv.sessions.valid(token) {
		t.Fatal("token should be valid before logout")
	}

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: token})
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	if rr.Code != http.StatusSeeOther {
		t.Errorf("expected 303 redirect after logout, got %d", rr.Code)
	}
	if srv.sessions.valid(token) {
		t.Error("session token should be invalid after logout")
	}
}

func TestAcceptsHTML(t *testing.T) {
	cases := map[string]bool{
		"text/html":                     true,
		"application/json, */*;q=0.1":   true,
		"application/json":              false,
		" text/* ;q=0.5":                true,
		"image/avif,image/webp,image/*": false,
	}
	for accept, want := range cases {
		if got := acceptsHTML(accept); got != want {
			t.Errorf("acceptsHTML(%q): got %v, want %v", accept, got, want)
		}
	}
}
