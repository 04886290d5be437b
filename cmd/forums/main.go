package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ShepherdDev/rock-labs-forums/internal/adapter/driven/authz"
	"github.com/ShepherdDev/rock-labs-forums/internal/adapter/driven/notify"
	sqliteadapter "github.com/ShepherdDev/rock-labs-forums/internal/adapter/driven/sqlite"
	httphandler "github.com/ShepherdDev/rock-labs-forums/internal/adapter/driving/http"
	"github.com/ShepherdDev/rock-labs-forums/internal/application"
	"github.com/ShepherdDev/rock-labs-forums/internal/config"
	"github.com/ShepherdDev/rock-labs-forums/internal/domain/model"
	"github.com/ShepherdDev/rock-labs-forums/internal/render"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on invalid env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"base_route", cfg.BaseRoute,
		"auto_follow", cfg.AutoFollow,
		"admins", len(cfg.AdminPersonIDs),
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	// 4. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 5. Wire driven adapters.
	noteStore := sqliteadapter.NewNoteRepo(db)
	followStore := sqliteadapter.NewFollowRepo(db)
	attachmentStore := sqliteadapter.NewAttachmentRepo(db)
	topicStore := sqliteadapter.NewTopicRepo(db)
	personStore := sqliteadapter.NewPersonRepo(db)
	txRunner := sqliteadapter.NewTxRunner(db)

	oracle := authz.NewOracle(cfg.AdminPersonIDs)
	dispatcher := notify.NewWebhookDispatcher(cfg.NotifyWebhookURL, slog.Default())
	if cfg.NotifyWebhookURL == "" {
		slog.Info("no notify webhook configured, follower notifications disabled")
	}

	// 6. Wire the rendering pipeline and application services.
	itemTypes := model.DefaultItemTypes()
	renderer := render.New()
	resolveItem := render.ItemURLResolver(cfg.PublicRoot, cfg.BaseRoute)

	followSvc := application.NewFollowService(followStore, personStore, itemTypes, slog.Default())
	commentSvc := application.NewCommentService(
		noteStore, followSvc, attachmentStore, txRunner, oracle, dispatcher,
		renderer, resolveItem, itemTypes, cfg.AutoFollow, slog.Default(),
	)
	topicSvc := application.NewTopicService(
		topicStore, followSvc, txRunner, oracle, renderer, resolveItem, slog.Default(),
	)

	// 7. Create HTTP handler and server.
	apiHandler := httphandler.NewHandler(commentSvc, topicSvc, followSvc, attachmentStore, personStore, slog.Default())
	handler := httphandler.NewServeMux(apiHandler, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	// 8. Log startup complete.
	slog.Info("forums started", "listen_addr", cfg.ListenAddr)

	// 9. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 10. Graceful shutdown with 10s timeout for HTTP server drain.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
