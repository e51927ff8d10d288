package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/banux/memorybook/internal/album"
	"github.com/banux/memorybook/internal/config"
	"github.com/banux/memorybook/internal/gallery"
	"github.com/banux/memorybook/internal/page"
	"github.com/banux/memorybook/internal/resolve"
	"github.com/banux/memorybook/internal/server"
	"github.com/banux/memorybook/web"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	root := &cobra.Command{
		Use:   "memorybook",
		Short: "Serve a chapter-by-chapter photo memory book",
		Long: `memorybook discovers the photos of every chapter gallery in a site
directory (or a remote asset store), renders the galleries into the page
and serves it together with the shared lightbox viewer.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (default: search MEMORYBOOK_CONFIG, ./memorybook.yaml, ~/.config/memorybook/config.yaml)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	root.AddCommand(serveCmd(), probeCmd())

	if err := root.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	path := cfgFile
	if path == "" {
		path = config.FindConfigFile()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if path != "" {
		log.Printf("config loaded from %q", path)
	}
	return cfg, nil
}

// newResolver builds the photo resolver described by cfg: the site
// directory, or the remote asset store when asset_base_url is set.
func newResolver(cfg config.Config, siteFS fs.FS) (*resolve.Resolver, error) {
	var loader resolve.Loader = resolve.FSLoader{FS: siteFS}
	if cfg.AssetBaseURL != "" {
		loader = resolve.HTTPLoader{
			BaseURL: cfg.AssetBaseURL,
			Client:  &http.Client{Transport: http.DefaultTransport},
		}
	}
	return resolve.New(loader, cfg.Extensions, resolve.WithAttemptTimeout(cfg.ProbeTimeout))
}

// newBuilder wires r to the registry described by cfg.
func newBuilder(cfg config.Config, r *resolve.Resolver) (*gallery.Builder, error) {
	reg, err := cfg.Registry()
	if err != nil {
		return nil, err
	}
	return gallery.NewBuilder(r, reg, nil), nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Resolve every gallery and serve the page",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := loadConfig()
			if err != nil {
				log.Fatalf("config error: %v", err)
			}
			if cfg.Password == "" {
				log.Printf("WARNING: AUTH_PASSWORD is not set, the page is public")
			}

			if _, err := os.Stat(cfg.SiteDir); err != nil {
				log.Fatalf("site directory %q: %v", cfg.SiteDir, err)
			}
			siteFS := os.DirFS(cfg.SiteDir)

			r, err := newResolver(cfg, siteFS)
			if err != nil {
				log.Fatalf("resolver setup: %v", err)
			}
			b, err := newBuilder(cfg, r)
			if err != nil {
				log.Fatalf("gallery setup: %v", err)
			}
			markup, err := fs.ReadFile(web.FS, web.IndexPath)
			if err != nil {
				log.Fatalf("read page: %v", err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			start := time.Now()
			site, err := page.Load(ctx, bytes.NewReader(markup), b)
			if err != nil {
				log.Fatalf("build page: %v", err)
			}
			log.Printf("%d galleries built in %s", len(site.Order), time.Since(start).Round(time.Millisecond))

			srv := &http.Server{
				Addr:    cfg.ListenAddr,
				Handler: server.New(site, server.Options{Password: cfg.Password, SiteFS: siteFS}),
			}
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()

			log.Printf("memorybook starting on %s", cfg.ListenAddr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("server error: %v", err)
			}
		},
	}
}

func probeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe [gallery ids...]",
		Short: "Resolve galleries and print what was found",
		Long: `probe resolves the given galleries (all configured galleries when no id
is given). It prints the extension order tried for every slot, then the
declared and resolved counts, the layout marker and the resolved photo URLs
of each gallery. Unknown ids are reported and skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			r, err := newResolver(cfg, os.DirFS(cfg.SiteDir))
			if err != nil {
				return err
			}
			b, err := newBuilder(cfg, r)
			if err != nil {
				return err
			}
			return runProbe(cmd.Context(), r, b, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

// runProbe prints the candidate extension order, then one row per gallery
// followed by its photo URLs.
func runProbe(ctx context.Context, r *resolve.Resolver, b *gallery.Builder, ids []string, out, errOut io.Writer) error {
	if len(ids) == 0 {
		for _, d := range b.Registry().All() {
			ids = append(ids, d.ID)
		}
	}

	fmt.Fprintf(out, "extensions: %s\n\n", strings.Join(r.Extensions(), " "))

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "GALLERY\tDECLARED\tRESOLVED\tMARKER\tPHOTOS")
	for _, id := range ids {
		l, err := b.Build(ctx, id)
		if errors.Is(err, album.ErrUnknownGallery) {
			fmt.Fprintf(errOut, "unknown gallery %q, skipped\n", id)
			continue
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\n", l.Gallery, l.Declaration.Count, len(l.Photos), l.Marker, strings.Join(l.URLs, " "))
	}
	return tw.Flush()
}
