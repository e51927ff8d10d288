package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/banux/memorybook/internal/album"
	"github.com/banux/memorybook/internal/config"
	"github.com/banux/memorybook/internal/resolve"
)

// clearEnv makes sure host environment does not leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"LISTEN_ADDR", "SITE_DIR", "ASSET_BASE_URL", "AUTH_PASSWORD", "PROBE_TIMEOUT"} {
		t.Setenv(k, "")
	}
}

func TestDefault_Values(t *testing.T) {
	cfg := config.Default()
	if cfg.ListenAddr != ":8080" {
		t.Errorf("ListenAddr: got %q, want :8080", cfg.ListenAddr)
	}
	if cfg.SiteDir != "./site" {
		t.Errorf("SiteDir: got %q, want ./site", cfg.SiteDir)
	}
	if len(cfg.Galleries) != 10 {
		t.Errorf("Galleries: got %d, want 10", len(cfg.Galleries))
	}
	if len(cfg.Extensions) != 6 || cfg.Extensions[0] != "jpg" || cfg.Extensions[5] != "PNG" {
		t.Errorf("Extensions: got %v", cfg.Extensions)
	}
}

func TestLoad_EmptyPath_UsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if cfg.ListenAddr != ":8080" || cfg.SiteDir != "./site" {
		t.Errorf("got %q %q", cfg.ListenAddr, cfg.SiteDir)
	}
	if cfg.ProbeTimeout != 0 {
		t.Errorf("ProbeTimeout: got %v, want 0", cfg.ProbeTimeout)
	}
}

func TestLoad_FromYAMLFile(t *testing.T) {
	yaml := `
listen_addr: ":9090"
site_dir: "/srv/book"
auth_password: "topsecret"
probe_timeout: "3s"
extensions: [webp, jpg]
galleries:
  - id: ch1
    count: 2
  - id: epilogue
    count: 5
`
	path := writeTemp(t, "config.yaml", yaml)
	clearEnv(t)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.ListenAddr != ":9090" || cfg.SiteDir != "/srv/book" || cfg.Password != "topsecret" {
		t.Errorf("unexpected cfg: %+v", cfg)
	}
	if cfg.ProbeTimeout != 3*time.Second {
		t.Errorf("ProbeTimeout: got %v, want 3s", cfg.ProbeTimeout)
	}
	if len(cfg.Extensions) != 2 || cfg.Extensions[0] != "webp" {
		t.Errorf("Extensions: got %v", cfg.Extensions)
	}
	if len(cfg.Galleries) != 2 || cfg.Galleries[1] != (album.Declaration{ID: "epilogue", Count: 5}) {
		t.Errorf("Galleries: got %+v", cfg.Galleries)
	}
}

func TestLoad_PartialYAML_UsesDefaults(t *testing.T) {
	path := writeTemp(t, "partial.yaml", `listen_addr: ":7777"`)
	clearEnv(t)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.ListenAddr != ":7777" {
		t.Errorf("ListenAddr: got %q, want :7777", cfg.ListenAddr)
	}
	if len(cfg.Galleries) != 10 {
		t.Errorf("Galleries: got %d, want 10 (default)", len(cfg.Galleries))
	}
}

func TestLoad_EnvVarsOverrideFile(t *testing.T) {
	yaml := `
listen_addr: ":9090"
site_dir: "/file/site"
auth_password: "filepass"
`
	path := writeTemp(t, "config.yaml", yaml)

	t.Setenv("LISTEN_ADDR", ":5555")
	t.Setenv("SITE_DIR", "/env/site")
	t.Setenv("AUTH_PASSWORD", "envpass")
	t.Setenv("ASSET_BASE_URL", "https://cdn.example/book/")
	t.Setenv("PROBE_TIMEOUT", "250ms")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.ListenAddr != ":5555" || cfg.SiteDir != "/env/site" || cfg.Password != "envpass" {
		t.Errorf("env did not win: %+v", cfg)
	}
	if cfg.AssetBaseURL != "https://cdn.example/book/" {
		t.Errorf("AssetBaseURL: got %q", cfg.AssetBaseURL)
	}
	if cfg.ProbeTimeout != 250*time.Millisecond {
		t.Errorf("ProbeTimeout: got %v", cfg.ProbeTimeout)
	}
}

func TestLoad_InvalidProbeTimeout_Unbounded(t *testing.T) {
	clearEnv(t)
	t.Setenv("PROBE_TIMEOUT", "soon")
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.ProbeTimeout != 0 {
		t.Errorf("ProbeTimeout: got %v, want 0", cfg.ProbeTimeout)
	}
}

func TestLoad_NonexistentFile_ReturnsError(t *testing.T) {
	if _, err := config.Load("/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error for nonexistent config file, got nil")
	}
}

func TestLoad_InvalidYAML_ReturnsError(t *testing.T) {
	path := writeTemp(t, "bad.yaml", "{ invalid yaml: [")
	if _, err := config.Load(path); err == nil {
		t.Error("expected error for invalid YAML, got nil")
	}
}

func TestLoad_DuplicateGallery_ReturnsError(t *testing.T) {
	clearEnv(t)
	yaml := `
galleries:
  - id: ch1
    count: 1
  - id: ch1
    count: 2
`
	path := writeTemp(t, "dup.yaml", yaml)
	if _, err := config.Load(path); !errors.Is(err, album.ErrDuplicateGallery) {
		t.Errorf("expected ErrDuplicateGallery, got %v", err)
	}
}

func TestLoad_ZeroCount_ReturnsError(t *testing.T) {
	clearEnv(t)
	path := writeTemp(t, "zero.yaml", "galleries:\n  - id: ch1\n    count: 0\n")
	if _, err := config.Load(path); !errors.Is(err, album.ErrInvalidCount) {
		t.Errorf("expected ErrInvalidCount, got %v", err)
	}
}

func TestLoad_EmptyExtensions_ReturnsError(t *testing.T) {
	clearEnv(t)
	path := writeTemp(t, "ext.yaml", "extensions: []\n")
	if _, err := config.Load(path); !errors.Is(err, resolve.ErrNoExtensions) {
		t.Errorf("expected ErrNoExtensions, got %v", err)
	}
}

func TestValidate_DottedExtension(t *testing.T) {
	cfg := config.Default()
	cfg.Extensions = []string{".jpg"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for dotted extension")
	}
}

func TestFindConfigFile_EnvVar(t *testing.T) {
	path := writeTemp(t, "explicit.yaml", "listen_addr: \":1234\"")
	t.Setenv("MEMORYBOOK_CONFIG", path)

	if found := config.FindConfigFile(); found != path {
		t.Errorf("FindConfigFile: got %q, want %q", found, path)
	}
}

func TestFindConfigFile_LocalFile(t *testing.T) {
	t.Setenv("MEMORYBOOK_CONFIG", "")
	orig, _ := os.Getwd()
	dir := t.TempDir()
	_ = os.Chdir(dir)
	defer func() { _ = os.Chdir(orig) }()

	if err := os.WriteFile("memorybook.yaml", []byte("listen_addr: \":1\"\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if found := config.FindConfigFile(); found != "memorybook.yaml" {
		t.Errorf("FindConfigFile: got %q, want memorybook.yaml", found)
	}
}

// writeTemp creates a temporary file with the given content and returns its path.
func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writeTemp: %v", err)
	}
	return path
}
