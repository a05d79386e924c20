// Package session ends a client session: it drops the stored credentials
// and sends the client to the auth server's logout endpoint.
package session

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophgate/internal/client/credentials"
	"github.com/dmitrijs2005/gophgate/internal/client/transport"
	"github.com/dmitrijs2005/gophgate/internal/logging"
)

// Redirector moves the client to a logged-out state at url.
type Redirector interface {
	Redirect(ctx context.Context, url string) error
}

// RedirectorFunc adapts a function to Redirector.
type RedirectorFunc func(ctx context.Context, url string) error

func (f RedirectorFunc) Redirect(ctx context.Context, url string) error {
	return f(ctx, url)
}

// LogRedirector reports the logout URL to the user through the logger. It
// is the redirect used by the interactive CLI.
type LogRedirector struct {
	Logger logging.Logger
}

func (r LogRedirector) Redirect(ctx context.Context, url string) error {
	r.Logger.Info(ctx, "Session ended, continue at logout page", "url", url)
	return nil
}

// HTTPRedirector follows the logout URL with a plain GET so the auth server
// can drop its side of the session. No credentials are attached.
type HTTPRedirector struct {
	Transport transport.Transport
}

func (r HTTPRedirector) Redirect(ctx context.Context, url string) error {
	_, err := r.Transport.Call(ctx, transport.Request{Method: http.MethodGet, URL: url})
	return err
}

// Terminator clears both credentials and redirects to LogoutURL.
type Terminator struct {
	store      credentials.Store
	redirector Redirector
	logoutURL  string
	logger     logging.Logger
}

func NewTerminator(store credentials.Store, r Redirector, logoutURL string, l logging.Logger) *Terminator {
	return &Terminator{
		store:      store,
		redirector: r,
		logoutURL:  logoutURL,
		logger:     l.With("module", "session"),
	}
}

// LogoutURL is the redirect target.
func (t *Terminator) LogoutURL() string {
	return t.logoutURL
}

// Terminate removes the access and refresh credentials and then redirects.
// It is safe to call when nothing is stored. Store failures do not prevent
// the redirect; all failures are joined into the returned error.
func (t *Terminator) Terminate(ctx context.Context) error {
	var errs []error

	for _, key := range []string{credentials.AccessTokenKey, credentials.RefreshTokenKey} {
		if err := t.store.Remove(ctx, key); err != nil {
			t.logger.Error(ctx, "failed to remove credential", "key", key, "error", err)
			errs = append(errs, err)
		}
	}

	t.logger.Info(ctx, "Logging out", "url", t.logoutURL)

	if t.redirector != nil {
		if err := t.redirector.Redirect(ctx, t.logoutURL); err != nil {
			t.logger.Warn(ctx, "logout redirect failed", "error", err)
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
