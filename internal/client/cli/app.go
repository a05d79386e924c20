package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/dmitrijs2005/gophgate/internal/client/client"
	"github.com/dmitrijs2005/gophgate/internal/client/config"
	"github.com/dmitrijs2005/gophgate/internal/client/credentials"
	"github.com/dmitrijs2005/gophgate/internal/client/refresh"
	"github.com/dmitrijs2005/gophgate/internal/client/services"
	"github.com/dmitrijs2005/gophgate/internal/client/session"
	"github.com/dmitrijs2005/gophgate/internal/client/transport"
	"github.com/dmitrijs2005/gophgate/internal/filex"
	"github.com/dmitrijs2005/gophgate/internal/logging"
)

const (
	dataDir           = ".gophgate"
	defaultSQLiteFile = "credentials.db"
)

type App struct {
	config      *config.Config
	store       credentials.Store
	closeStore  func() error
	coordinator *refresh.Coordinator
	dispatcher  client.Dispatcher
	authService services.AuthService
	logger      logging.Logger
	out         io.Writer
}

// NewApp opens the configured credential store and wires the gateway
// components on top of a net/http transport.
func NewApp(ctx context.Context, c *config.Config, l logging.Logger) (*App, error) {
	store, closeStore, err := openStore(ctx, c)
	if err != nil {
		l.Error(ctx, "error initializing credential store", "kind", c.StoreKind, "error", err)
		return nil, err
	}

	tr := transport.NewHTTPTransport(&http.Client{Timeout: c.RequestTimeout})
	a := newApp(c, store, tr, session.LogRedirector{Logger: l}, l)
	a.closeStore = closeStore
	return a, nil
}

func newApp(c *config.Config, store credentials.Store, tr transport.Transport, r session.Redirector, l logging.Logger) *App {
	term := session.NewTerminator(store, r, c.LogoutURL(), l)
	coord := refresh.NewCoordinator(store, tr, term, refresh.Options{
		AuthURI:        c.AuthURI,
		TokenPath:      c.TokenPath,
		ClientID:       c.AuthClientID,
		RefreshTimeout: c.RefreshTimeout,
		WaitTimeout:    c.WaitTimeout,
	}, l)
	d := client.NewHTTPClient(c.BaseURI, store, tr, coord, l)
	as := services.NewAuthService(d, store, term, services.AuthOptions{
		LoginURL:  c.LoginURL(),
		LogoutURL: c.LogoutURL(),
		ClientID:  c.AuthClientID,
	}, l)

	return &App{
		config:      c,
		store:       store,
		coordinator: coord,
		dispatcher:  d,
		authService: as,
		logger:      l,
		out:         os.Stdout,
	}
}

func openStore(ctx context.Context, c *config.Config) (credentials.Store, func() error, error) {
	var (
		store     credentials.Store
		closeFunc = func() error { return nil }
	)

	switch c.StoreKind {
	case "", config.StoreMemory:
		store = credentials.NewMemoryStore()
	case config.StoreSQLite:
		dsn := c.StoreDSN
		if dsn == "" {
			path, err := filex.DataFile(dataDir, defaultSQLiteFile)
			if err != nil {
				return nil, nil, err
			}
			dsn = path
		}
		s, err := credentials.OpenSQLite(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		store, closeFunc = s, s.Close
	case config.StoreRedis:
		s, err := credentials.OpenRedis(ctx, c.StoreDSN, "")
		if err != nil {
			return nil, nil, err
		}
		store, closeFunc = s, s.Close
	default:
		return nil, nil, fmt.Errorf("unknown credential store %q", c.StoreKind)
	}

	if c.StorePassphrase != "" {
		sealed, err := credentials.NewSealedStore(ctx, store, []byte(c.StorePassphrase))
		if err != nil {
			_ = closeFunc()
			return nil, nil, err
		}
		store = sealed
	}

	return store, closeFunc, nil
}

func (a *App) Close() error {
	if a.closeStore == nil {
		return nil
	}
	return a.closeStore()
}

func (a *App) isLoggedIn(ctx context.Context) bool {
	ok, err := a.authService.IsLoggedIn(ctx)
	if err != nil {
		a.logger.Warn(ctx, "failed to read session state", "error", err)
	}
	return ok
}

func (a *App) getStatus(ctx context.Context) string {
	if a.isLoggedIn(ctx) {
		return "(logged in)"
	}
	return "(logged out)"
}
