package main

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/pthm/txui"
	"github.com/pthm/txui/widgets"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the demo HTTP server",
		Long: `Serves the demo page, the static assets under the configured prefix and
Prometheus metrics on /metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
				cfg.Listen = listen
			}

			app, err := txui.NewAppFromConfig(cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			srv := &http.Server{
				Addr:              cfg.Listen,
				Handler:           newServer(app, cfg),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, app, srv)
		},
	}
	cmd.Flags().StringP("listen", "l", "", "Listen address, overrides the configuration")
	return cmd
}

// newServer wires the demo pages, static files and metrics.
func newServer(app *txui.App, cfg *txui.Config) http.Handler {
	widgets.Register(app, widgets.NewSampleTodos())
	app.Add(widgets.DemoPage("demo", "/"))

	static := unionFS{txui.RuntimeFS(), widgets.Static()}
	if cfg.StaticDir != "" {
		static = append(unionFS{os.DirFS(cfg.StaticDir)}, static...)
	}
	prefix := cfg.StaticPrefix
	if prefix == "" {
		prefix = "/static"
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Handle("/metrics", app.MetricsHandler())
	r.Handle(prefix+"/*", http.StripPrefix(prefix+"/", http.FileServer(http.FS(static))))
	r.Mount("/", app.Handler())
	return r
}

func run(ctx context.Context, app *txui.App, srv *http.Server) error {
	log := app.Logger()
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("graceful shutdown did not complete", "error", err)
			return srv.Close()
		}
		return nil
	}
}

// unionFS serves a file from the first member that has it.
type unionFS []fs.FS

func (u unionFS) Open(name string) (fs.File, error) {
	for _, f := range u {
		file, err := f.Open(name)
		if err == nil {
			return file, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}
