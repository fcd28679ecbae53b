// Package server assembles the fiber application: middleware, the route
// table and the listen/shutdown lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wichananm65/fakturera/internal/auth"
	"github.com/wichananm65/fakturera/internal/docs"
	"github.com/wichananm65/fakturera/internal/example"
	"github.com/wichananm65/fakturera/internal/product"
	"github.com/wichananm65/fakturera/internal/router"
	"github.com/wichananm65/fakturera/internal/terms"
)

const shutdownTimeout = 10 * time.Second

// Deps are the collaborators the routes need. Clock may be nil when no
// database is configured.
type Deps struct {
	Port     string
	Log      *zap.Logger
	Issuer   *auth.Issuer
	Users    auth.Authenticator
	Products product.Repository
	Terms    terms.Repository
	Clock    example.Clock
}

func (d Deps) validate() error {
	switch {
	case d.Log == nil:
		return errors.New("logger is required")
	case d.Issuer == nil:
		return errors.New("token issuer is required")
	case d.Users == nil:
		return errors.New("credential store is required")
	case d.Products == nil:
		return errors.New("product repository is required")
	case d.Terms == nil:
		return errors.New("terms repository is required")
	}
	return nil
}

// NewApp builds the application with every route mounted.
func NewApp(d Deps) (*fiber.App, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}
	docsHandler, err := docs.NewHandler(d.Port)
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		AppName:               "Fakturera API",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(d.Log),
	})

	app.Use(requestid.New())
	app.Use(requestLogger(d.Log))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Content-Type, Authorization",
	}))
	app.Use(preflight)
	app.Use(requireJSON)

	table := router.Builtin()
	table = append(table, docsHandler.Routes()...)
	table = append(table, example.NewHandler(d.Clock, d.Log).Routes()...)
	table = append(table, auth.NewHandler(d.Issuer, d.Users, d.Log).Routes()...)
	table = append(table, terms.NewHandler(terms.NewService(d.Terms), d.Log).Routes()...)
	table = append(table, product.NewHandler(product.NewService(d.Products), d.Log).Routes()...)
	router.Mount(app, table, auth.Gate(d.Issuer))

	return app, nil
}

// Run listens on addr and serves until ctx is done.
func Run(ctx context.Context, app *fiber.App, addr string, log *zap.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return Serve(ctx, app, ln, log)
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
func Serve(ctx context.Context, app *fiber.App, ln net.Listener, log *zap.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("server listening", zap.String("addr", ln.Addr().String()))
		if err := app.Listener(ln); err != nil && gctx.Err() == nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("server shutting down")
		err := app.ShutdownWithTimeout(shutdownTimeout)
		_ = ln.Close()
		return err
	})

	return g.Wait()
}
