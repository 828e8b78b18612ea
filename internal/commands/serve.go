package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"
	"github.com/yukikurage/forum/internal/database"
	"github.com/yukikurage/forum/internal/events"
	"github.com/yukikurage/forum/internal/server"
)

const (
	addrFlag = "addr"

	shutdownTimeout = 10 * time.Second
)

var serveFlags = map[string]cobraflags.Flag{
	addrFlag: &cobraflags.StringFlag{
		Name:  addrFlag,
		Value: "",
		Usage: "Listen address (defaults to ADDR)",
	},
}

func newServeCommand() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE:  serveCommand,
	}

	cobraflags.RegisterMap(serveCmd, serveFlags)
	return serveCmd
}

func serveCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	addr := serveFlags[addrFlag].GetString()
	if addr == "" {
		addr = cfg.Addr
	}

	gin.SetMode(cfg.GinMode)

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.NATSURL != "" {
		natsPublisher, err := events.NewNATSPublisher(cfg.NATSURL, cfg.NATSSubjectPrefix)
		if err != nil {
			return err
		}
		publisher = natsPublisher
	}
	defer publisher.Close()

	router, err := server.NewRouter(cfg, db, server.Options{
		Publisher: publisher,
		Logger:    slog.Default(),
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", addr, "google_login", cfg.GoogleEnabled(), "events", cfg.NATSURL != "")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
