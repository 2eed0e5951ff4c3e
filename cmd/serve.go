package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KaramelBytes/vehdash/internal/dashboard"
)

var (
	srvAddr    string
	srvPreload bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interactive dashboard over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("addr") && srvAddr != "" {
			c.ListenAddr = srvAddr
		}
		logger, err := newLogger(c.LogLevel)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		cache, err := openCache(c, logger)
		if err != nil {
			return err
		}
		if srvPreload {
			// a missing file is reported per request as 503
			if _, err := cache.Table(); err != nil {
				logger.Warn("Listings not available yet", zap.Error(err))
			}
		}

		if !debug && c.LogLevel != "debug" {
			gin.SetMode(gin.ReleaseMode)
		}
		router, err := dashboard.NewRouter(cache, dashboard.ServerOptions{
			Page:        dashboard.OptionsFromConfig(c),
			CORSOrigins: c.CORSOrigins,
		}, logger)
		if err != nil {
			return err
		}

		server := &http.Server{
			Addr:              c.ListenAddr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			logger.Info("Dashboard listening", zap.String("address", c.ListenAddr), zap.String("data_path", c.DataPath))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("listen: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		logger.Info("Shutting down dashboard...")
		timeout := time.Duration(c.ShutdownTimeoutSec) * time.Second
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		logger.Info("Dashboard stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&srvAddr, "addr", "", "listen address (overrides config listen_addr)")
	serveCmd.Flags().BoolVar(&srvPreload, "preload", true, "load the listings before accepting requests")
}
