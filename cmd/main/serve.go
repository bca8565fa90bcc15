package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the generated site for local preview",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = a.config.Site.ServeAddr
			}
			srv := &http.Server{
				Addr:              addr,
				Handler:           newSiteHandler(a.config.Site.DestDir, a.config.Templates.BaseURL, a.logger),
				ReadHeaderTimeout: 10 * time.Second,
			}
			return runServer(cmd.Context(), srv, a.logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "address to listen on")
	return cmd
}

// newSiteHandler serves dir under baseURL the way a static host would.
func newSiteHandler(dir, baseURL string, logger *slog.Logger) http.Handler {
	var prefix string
	if u, err := url.Parse(baseURL); err == nil {
		prefix = strings.TrimSuffix(u.Path, "/")
	}
	files := http.FileServer(http.Dir(dir))

	mux := http.NewServeMux()
	mux.HandleFunc("/favicon.ico", handleFavicon)
	mux.Handle("/", http.StripPrefix(prefix, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("Serving", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
		w.Header().Set("Cache-Control", "no-cache")
		if path.Ext(r.URL.Path) == ".txt" {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		}
		files.ServeHTTP(w, r)
	})))
	return mux
}

// runServer serves until ctx is done, then shuts down within 10 seconds.
func runServer(ctx context.Context, srv *http.Server, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting preview server", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("preview server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Stopping preview server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("preview server shutdown failed: %w", err)
	}
	logger.Info("Preview server stopped.")
	return nil
}

// handleFavicon answers favicon requests with no content; the site has no icon.
func handleFavicon(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
