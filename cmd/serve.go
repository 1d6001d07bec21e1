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

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/devnullvoid/pvetui-stats/internal/metrics"
	"github.com/devnullvoid/pvetui-stats/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the statistics over HTTP for the website",
	Long: `Starts an HTTP server exposing /api/stats, /api/stats/refresh, /healthz and
/metrics. The first resolution starts immediately; until it finishes /api/stats
reports the built-in defaults with loading=true.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		registry := prom.NewRegistry()
		cfg, svc, st, logger := mustSetup(cmd, metrics.NewPrometheusRecorder(registry))
		defer st.Close()

		if cmd.Flags().Changed("listen") {
			cfg.Server.Listen, _ = cmd.Flags().GetString("listen")
		}
		if cmd.Flags().Changed("allowed-origin") {
			cfg.Server.AllowedOrigin, _ = cmd.Flags().GetString("allowed-origin")
		}

		handler := server.NewHandler(ctx, svc, registry, cfg.Server.AllowedOrigin, logger)
		srv := &http.Server{
			Addr:              cfg.Server.Listen,
			Handler:           handler.Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Printf("Listening on %s", cfg.Server.Listen)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				fmt.Fprintf(os.Stderr, "Server failed: %v\n", err)
				os.Exit(1)
			}
		case <-ctx.Done():
			logger.Println("Shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				fmt.Fprintf(os.Stderr, "Graceful shutdown failed: %v\n", err)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen", "", "Address to listen on (default :8080)")
	serveCmd.Flags().String("allowed-origin", "", "Value of the Access-Control-Allow-Origin header")
}
