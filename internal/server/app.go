// Package server wires and runs the development auth server: refresh token
// storage (memory or PostgreSQL), the HTTP token API and the gRPC health
// endpoint, with graceful shutdown and periodic cleanup of expired tokens.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophgate/internal/logging"
	"github.com/dmitrijs2005/gophgate/internal/server/config"
	"github.com/dmitrijs2005/gophgate/internal/server/httpapi"
	"github.com/dmitrijs2005/gophgate/internal/server/refreshtokens"
	"github.com/dmitrijs2005/gophgate/internal/server/users"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/gophgate/internal/server/grpc"
)

const (
	shutdownTimeout = 5 * time.Second
	purgeInterval   = time.Minute
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	userService *users.Service
	db          *sql.DB
}

func NewApp(ctx context.Context, c *config.Config, l logging.Logger) (*App, error) {
	var (
		tokens refreshtokens.Repository
		db     *sql.DB
	)

	if c.DatabaseDSN != "" {
		var err error
		db, err = refreshtokens.OpenPostgres(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		tokens = refreshtokens.NewPostgresRepository(db)
	} else {
		tokens = refreshtokens.NewMemoryRepository()
	}

	repo := users.NewMemoryRepository()
	if _, err := repo.Create(ctx, users.NewUser(c.DemoUsername, []byte(c.DemoPassword))); err != nil {
		return nil, fmt.Errorf("seed user: %w", err)
	}

	us := users.NewService(repo, tokens, c)

	return &App{config: c, logger: l, userService: us, db: db}, nil
}

// Handler returns the HTTP API handler.
func (app *App) Handler() http.Handler {
	return httpapi.NewHandler(app.userService, app.logger)
}

func (app *App) runHTTPServer(ctx context.Context, lis net.Listener) error {
	srv := &http.Server{Handler: app.Handler(), ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (app *App) purgeExpired(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := app.userService.PurgeExpired(ctx)
			if err != nil {
				app.logger.Warn(ctx, "purge expired refresh tokens failed", "error", err)
				continue
			}
			if n > 0 {
				app.logger.Debug(ctx, "purged expired refresh tokens", "count", n)
			}
		}
	}
}

// Run serves HTTP and gRPC until ctx is cancelled or one of them fails.
func (app *App) Run(ctx context.Context) error {
	app.logger.Info(ctx, "Starting app...")

	lis, err := net.Listen("tcp", app.config.EndpointAddr)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return app.runHTTPServer(ctx, lis)
	})

	g.Go(func() error {
		return gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.userService).Run(ctx)
	})

	g.Go(func() error {
		app.purgeExpired(ctx, purgeInterval)
		return nil
	})

	return g.Wait()
}

func (app *App) Close() error {
	if app.db != nil {
		return app.db.Close()
	}
	return nil
}
