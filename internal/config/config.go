// Package config handles loading memorybook configuration from a YAML file
// with environment variable overrides.
//
// Config file format (memorybook.yaml):
//
//	listen_addr: ":8080"
//	site_dir: "./site"
//	asset_base_url: ""
//	auth_password: ""
//	probe_timeout: "0"
//	extensions: [jpg, jpeg, png, JPG, JPEG, PNG]
//	galleries:
//	  - id: ch1
//	    count: 1
//	  - id: ch10
//	    count: 13
//
// Configuration sources, in increasing priority order:
//  1. Built-in defaults
//  2. YAML config file (located by FindConfigFile or explicit path)
//  3. Environment variables (LISTEN_ADDR, SITE_DIR, ASSET_BASE_URL,
//     AUTH_PASSWORD, PROBE_TIMEOUT)
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/banux/memorybook/internal/album"
	"github.com/banux/memorybook/internal/resolve"
)

// Config holds all application configuration.
type Config struct {
	// ListenAddr is the TCP address for the HTTP server (e.g. ":8080").
	ListenAddr string `yaml:"listen_addr"`

	// SiteDir is the directory holding the assets/ folder with chapter photos.
	SiteDir string `yaml:"site_dir"`

	// AssetBaseURL, when set, makes photo probing go over HTTP against a
	// remote asset store instead of reading SiteDir.
	AssetBaseURL string `yaml:"asset_base_url"`

	// Password is the shared password protecting the page.
	// Leave empty to disable authentication.
	Password string `yaml:"auth_password"`

	// ProbeTimeoutStr bounds each image load attempt, as a duration string
	// ("2s", "500ms"). "0" or empty leaves loads unbounded.
	ProbeTimeoutStr string `yaml:"probe_timeout"`

	// ProbeTimeout is the parsed form of ProbeTimeoutStr.
	ProbeTimeout time.Duration `yaml:"-"`

	// Extensions is the ordered candidate list tried for every photo slot.
	Extensions []string `yaml:"extensions"`

	// Galleries is the gallery registry, one entry per chapter.
	Galleries []album.Declaration `yaml:"galleries"`
}

// Default returns a Config populated with sensible defaults.
func Default() Config {
	return Config{
		ListenAddr:      ":8080",
		SiteDir:         "./site",
		ProbeTimeoutStr: "0",
		Extensions:      append([]string(nil), resolve.DefaultExtensions...),
		Galleries:       album.DefaultDeclarations(),
	}
}

// Load reads configuration from the YAML file at path (if non-empty), then
// applies environment variable overrides on top, and validates the result.
// If path is empty, only defaults and environment variables are applied.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %q: %w", path, err)
		}
	}

	// Environment variables always override file values so a container or
	// systemd unit can adjust a deployment without editing the file.
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("SITE_DIR"); v != "" {
		cfg.SiteDir = v
	}
	if v := os.Getenv("ASSET_BASE_URL"); v != "" {
		cfg.AssetBaseURL = v
	}
	if v := os.Getenv("AUTH_PASSWORD"); v != "" {
		cfg.Password = v
	}
	if v := os.Getenv("PROBE_TIMEOUT"); v != "" {
		cfg.ProbeTimeoutStr = v
	}

	// Parse the probe timeout string into a Duration.
	// An empty string or "0" leaves every load attempt unbounded.
	// Invalid strings are ignored the same way rather than failing startup.
	cfg.ProbeTimeout = 0
	if s := cfg.ProbeTimeoutStr; s != "" && s != "0" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 {
			cfg.ProbeTimeout = d
		}
	}

	// The registry and extension list are checked last, once every source has
	// had its say.
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the extension list and gallery registry.
func (c Config) Validate() error {
	if len(c.Extensions) == 0 {
		return resolve.ErrNoExtensions
	}
	for _, ext := range c.Extensions {
		if strings.TrimSpace(ext) == "" || strings.HasPrefix(ext, ".") {
			return fmt.Errorf("invalid extension %q", ext)
		}
	}
	if len(c.Galleries) == 0 {
		return errors.New("no galleries configured")
	}
	if _, err := c.Registry(); err != nil {
		return fmt.Errorf("galleries: %w", err)
	}
	return nil
}

// Registry builds the gallery registry from the configured galleries.
func (c Config) Registry() (*album.Registry, error) {
	return album.NewRegistry(c.Galleries...)
}

// FindConfigFile returns the path to the first config file found in the
// standard search order, or "" if none is found.
//
// Search order:
//  1. MEMORYBOOK_CONFIG environment variable (explicit override)
//  2. ./memorybook.yaml (current working directory)
//  3. ~/.config/memorybook/config.yaml (XDG user config)
func FindConfigFile() string {
	if p := os.Getenv("MEMORYBOOK_CONFIG"); p != "" {
		return p
	}

	if _, err := os.Stat("memorybook.yaml"); err == nil {
		return "memorybook.yaml"
	}

	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, ".config", "memorybook", "config.yaml")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
