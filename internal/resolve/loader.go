package resolve

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // register decoders for the candidate formats
	_ "image/png"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"strings"
)

// FSLoader loads images from a filesystem rooted at the site directory.
// The realized URL is the path itself, relative to the page.
type FSLoader struct {
	FS fs.FS
}

// Load opens path and decodes the image header.
func (l FSLoader) Load(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f, err := l.FS.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := decodeHeader(f); err != nil {
		return "", fmt.Errorf("decode %q: %w", path, err)
	}
	return path, nil
}

// HTTPLoader loads images from a remote asset store.
// The realized URL is the absolute URL that was fetched.
type HTTPLoader struct {
	// BaseURL is the URL paths are resolved against (e.g. "https://cdn.example/book/").
	BaseURL string

	// Client is the HTTP client; nil means http.DefaultClient.
	Client *http.Client
}

// Load fetches path relative to BaseURL and decodes the image header.
func (l HTTPLoader) Load(ctx context.Context, path string) (string, error) {
	u, err := l.resolveURL(path)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("GET %s: HTTP %d", u, resp.StatusCode)
	}
	if err := decodeHeader(resp.Body); err != nil {
		return "", fmt.Errorf("decode %s: %w", u, err)
	}
	return u, nil
}

func (l HTTPLoader) resolveURL(path string) (string, error) {
	base := l.BaseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base url %q: %w", l.BaseURL, err)
	}
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("parse asset path %q: %w", path, err)
	}
	return b.ResolveReference(ref).String(), nil
}

// decodeHeader reports whether r starts with a decodable image.
func decodeHeader(r io.Reader) error {
	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("invalid image dimensions %dx%d", cfg.Width, cfg.Height)
	}
	return nil
}
