package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/card-reconciler/pkg/api"
	"github.com/shunichi-ikebuchi/card-reconciler/pkg/db"
	"github.com/shunichi-ikebuchi/card-reconciler/pkg/exportfile"
)

var serveAddr string

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve reconciliation sessions over HTTP",
	Long: `Start the HTTP API. Each card/competency session is opened with a PUT of
the extracted documents and kept in memory until the server stops; ignore
toggles are persisted, export tracking is not.

Routes:
  PUT    /api/v1/sessions/{card}/{competency}
  GET    /api/v1/sessions/{card}/{competency}
  POST   /api/v1/sessions/{card}/{competency}/ignore/{id}
  POST   /api/v1/sessions/{card}/{competency}/export
  DELETE /api/v1/sessions/{card}/{competency}/exports
  GET    /api/v1/sessions/{card}/{competency}/report?format=text|xlsx

Example:
  card-reconciler serve --addr :8080`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default RECON_HTTP_ADDR or :8080)")
}

func runServe(cmd *cobra.Command, args []string) {
	// Setup structured JSON logging.
	logLevel := slog.LevelInfo
	if debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	env := openEnvironment()
	defer env.Close()

	addr := serveAddr
	if addr == "" {
		addr = env.cfg.HTTP.Addr
	}

	manager := api.NewManager(api.ManagerConfig{
		Store:        env.ignore,
		Parameters:   db.NewParameterStore(env.conn),
		Keywords:     env.keywords,
		NarrativeMax: env.cfg.Output.NarrativeMax,
		PageSize:     env.cfg.Output.ReportPageSize,
		Logger:       logger,
	})
	defer manager.Close()

	recorder := api.NewFileRecorder(
		exportfile.NewFileSystemRepository(env.paths),
		db.NewExportHistory(env.conn),
		logger,
	)

	server := &http.Server{
		Addr:         addr,
		Handler:      api.NewRouter(api.NewSessionsHandler(manager, recorder)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 75 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		slog.Info("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("starting card-reconciler API", "addr", addr, "ignore_backend", env.cfg.Storage.IgnoreBackend)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		exitOnError(err, "server error")
	}

	slog.Info("server stopped")
}
