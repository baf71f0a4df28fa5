package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openvisage/facegate/internal/audit"
	"github.com/openvisage/facegate/internal/config"
	"github.com/openvisage/facegate/internal/face"
	"github.com/openvisage/facegate/internal/logging"
	"github.com/openvisage/facegate/internal/matcher"
	"github.com/openvisage/facegate/internal/store"
	"github.com/openvisage/facegate/internal/web"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the FaceGate web server. It exposes the registration,
recognition, user administration and diagnostics endpoints.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "Port to listen on (overrides WEB_PORT)")
	serveCmd.Flags().String("host", "", "Host to bind to (overrides WEB_HOST)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		cfg.Web.Port = port
	}
	if host, _ := cmd.Flags().GetString("host"); host != "" {
		cfg.Web.Host = host
	}

	_, closeLog, err := logging.Setup(cfg.Log.Path, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx := context.Background()
	db, err := store.Open(ctx, cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	users := store.NewUsers(db)
	history := audit.NewLog(cfg.Audit.Path)
	extractor := face.NewClient(cfg.Extractor.URL)
	engine := matcher.NewEngine(users, extractor, history, cfg.Tuning.Recognition.DistanceThreshold)

	server := web.NewServer(cfg, engine, users, history)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("error during shutdown", "error", err)
		}
	}()

	slog.Info("facegate starting",
		"database", cfg.Database.Path,
		"extractor", cfg.Extractor.URL,
		"threshold", cfg.Tuning.Recognition.DistanceThreshold,
	)
	return server.Start()
}
