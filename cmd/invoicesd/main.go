// Command invoicesd serves the invoice HTTP API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/invoices-tracker/internal/app"
	"github.com/joseph-ayodele/invoices-tracker/internal/server"
)

var (
	configPath string
	envFile    string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "invoicesd",
	Short:        "Invoice upload, extraction and storage API",
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "optional YAML config file")
	rootCmd.Flags().StringVar(&envFile, "env-file", "", "extra .env file loaded after ./.env")
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := app.LoadConfig(configPath, envFile)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open database", zap.Error(err))
		return err
	}
	defer a.Close()

	srv, err := a.NewServer()
	if err != nil {
		return err
	}

	var hs *server.HealthServer
	if cfg.Server.GRPCHealthAddr != "" {
		hs, err = server.NewHealthServer(cfg.Server.GRPCHealthAddr, logger)
		if err != nil {
			return err
		}
		go func() {
			if err := hs.Serve(); err != nil {
				logger.Error("grpc health serve error", zap.Error(err))
			}
		}()
		defer hs.Stop()
	}

	logger.Info("invoicesd starting",
		zap.String("api", cfg.Server.PublicURL+"/api"),
		zap.String("health", cfg.Server.PublicURL+"/health"),
		zap.Bool("gemini_configured", cfg.Gemini.APIKey != ""),
		zap.Bool("groq_configured", cfg.Groq.APIKey != ""),
		zap.String("db_driver", cfg.Database.Driver),
	)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()
	if hs != nil {
		hs.SetServing(true)
	}

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	}

	if hs != nil {
		hs.SetServing(false)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout(cfg.Server.ShutdownTimeout))
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	return nil
}

func shutdownTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return 10 * time.Second
	}
	return d
}
