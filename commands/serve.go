package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"budget/api"
	"budget/config"
	"budget/database"
	"budget/events"
	"budget/logger"
	"budget/middleware"
	"budget/router"
	"budget/service"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts.configPath, port)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port, overrides server.port")

	return cmd
}

func listenAddr(port string) string {
	port = strings.TrimPrefix(port, ":")
	if port == "" {
		port = "8080"
	}
	return ":" + port
}

func runServe(ctx context.Context, configPath, port string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if port != "" {
		cfg.Server.Port = port
	}

	log := logger.New(cfg.Log, os.Stdout)
	slog.SetDefault(log)
	appLog := logger.WithComponent(log, logger.ComponentApp)
	config.PrintConfig(appLog)

	if cfg.Database.MigrateOnStart {
		if err := database.Migrate(cfg.Database, database.Up); err != nil {
			return err
		}
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			appLog.Warn("close database", logger.FieldError, err)
		}
	}()

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.AMQP.Enabled {
		p, err := events.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, logger.WithComponent(log, logger.ComponentAMQP))
		if err != nil {
			return err
		}
		publisher = p
	}
	defer publisher.Close()

	deps := api.Deps{
		DB:              db,
		Logger:          log,
		Events:          publisher,
		Auth:            middleware.NewAuthenticator(cfg.JWT),
		AutoRecalculate: cfg.Balance.AutoRecalculate,
	}
	// Mailer stays a nil interface when mail is off so the report handler answers 503.
	if cfg.Email.Enabled {
		deps.Mailer = service.NewEmailService(&cfg.Email)
	}

	g, ctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    listenAddr(cfg.Server.Port),
		Handler: router.SetupRouter(ctx, cfg, deps),
	}

	g.Go(func() error {
		appLog.Info("server listening", "addr", srv.Addr, "swagger", cfg.Server.BaseURL+"/swagger/index.html")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		appLog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
