package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleanplots/cleanplots/internal/api"
	"github.com/cleanplots/cleanplots/internal/cache"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd(g *globalOpts) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the render API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), g, port)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides server.port)")
	return cmd
}

func runServe(ctx context.Context, g *globalOpts, port int) error {
	logger := logFrom(ctx)

	cfg, err := g.loadConfig(ctx)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if port != 0 {
		cfg.Server.Port = port
	}

	cacheManager, err := cache.NewManager(cache.Config{
		FigureCacheSizeMB: cfg.Cache.FigureSizeMB,
		FigureTTL:         time.Duration(cfg.Cache.FigureTTLMinutes) * time.Minute,
		QueryCacheSize:    cfg.Cache.QueryCacheSize,
	})
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}
	defer cacheManager.Close()

	svc, err := newService(ctx, cfg, cacheManager)
	if err != nil {
		return err
	}

	router := api.NewRouter(api.RouterConfig{
		Service:     svc,
		Cache:       cacheManager,
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	logger.Info("render defaults",
		"size", fmt.Sprintf("%dx%d", cfg.Render.Width, cfg.Render.Height),
		"phase", cfg.Render.PhaseColormap,
		"amplitude", cfg.Render.AmplitudeColormap,
		"presets", cfg.PresetNames())

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Server listening on http://localhost:%d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Server forced to shutdown", "err", err)
	}
	logger.Info("Server stopped")
	return nil
}
