package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wichananm65/fakturera/internal/auth"
	"github.com/wichananm65/fakturera/internal/database"
	"github.com/wichananm65/fakturera/internal/example"
	"github.com/wichananm65/fakturera/internal/migrations"
	"github.com/wichananm65/fakturera/internal/product"
	"github.com/wichananm65/fakturera/internal/server"
	"github.com/wichananm65/fakturera/internal/terms"
)

func newServeCmd(a *app) *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations before serving")
	return cmd
}

func (a *app) serve(ctx context.Context, migrate bool) error {
	if a.cfg.InsecureSecret() {
		a.log.Warn("JWT_SECRET is not set, using the development default")
	}

	db, err := database.Open(a.cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	// The API still starts without a database; /api/db/test reports it.
	if err := database.Ping(ctx, db, a.cfg.Database.PingTimeout); err != nil {
		a.log.Warn("database is not reachable", zap.Error(err))
	}
	if migrate {
		applied, err := migrations.NewService(db, a.log).Apply(ctx)
		if err != nil {
			return err
		}
		a.log.Info("migrations applied", zap.Strings("files", applied))
	}

	users := auth.NewCredentials()
	if err := users.Add(a.cfg.Auth.UserID, a.cfg.Auth.Username, a.cfg.Auth.Password); err != nil {
		return err
	}

	issuer := auth.NewIssuer(a.cfg.Auth.Secret, a.cfg.Auth.ExpiresIn)
	api, err := server.NewApp(server.Deps{
		Port:     a.cfg.Port,
		Log:      a.log,
		Issuer:   issuer,
		Users:    users,
		Products: product.NewPostgresRepository(db),
		Terms:    terms.NewPostgresRepository(db),
		Clock:    example.NewDBClock(db),
	})
	if err != nil {
		return err
	}
	a.log.Info("starting server",
		zap.String("public_url", a.cfg.PublicURL),
		zap.Duration("token_ttl", issuer.TTL()),
	)
	return server.Run(ctx, api, a.cfg.Addr(), a.log)
}
