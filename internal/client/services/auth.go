// Package services contains application services for the gophgate client.
// This file defines the authentication service: login against the auth
// server, logout and a local session check.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/gophgate/internal/client/client"
	"github.com/dmitrijs2005/gophgate/internal/client/credentials"
	"github.com/dmitrijs2005/gophgate/internal/common"
	"github.com/dmitrijs2005/gophgate/internal/logging"
)

var (
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrInvalidLoginResponse = errors.New("login response is missing credentials")
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login: authenticate against the auth server and persist both credentials.
//   - Logout: revoke the refresh credential on the server (best effort) and
//     terminate the session.
//   - IsLoggedIn: report whether a refresh credential is stored.
type AuthService interface {
	Login(ctx context.Context, username string, password []byte) error
	Logout(ctx context.Context) error
	IsLoggedIn(ctx context.Context) (bool, error)
}

// Terminator ends the local session.
type Terminator interface {
	Terminate(ctx context.Context) error
}

type authService struct {
	dispatcher client.Dispatcher
	store      credentials.Store
	terminator Terminator
	loginURL   string
	logoutURL  string
	clientID   string
	logger     logging.Logger
}

type AuthOptions struct {
	LoginURL  string
	LogoutURL string
	ClientID  string
}

// NewAuthService constructs an AuthService bound to a dispatcher and store.
func NewAuthService(d client.Dispatcher, store credentials.Store, term Terminator, opts AuthOptions, l logging.Logger) AuthService {
	return &authService{
		dispatcher: d,
		store:      store,
		terminator: term,
		loginURL:   opts.LoginURL,
		logoutURL:  opts.LogoutURL,
		clientID:   opts.ClientID,
		logger:     l.With("module", "auth"),
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	ClientID string `json:"clientId"`
}

type loginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Login posts the user's credentials without an access credential and
// stores the returned pair. password is wiped before returning.
func (a *authService) Login(ctx context.Context, username string, password []byte) error {
	defer common.WipeByteArray(password)

	resp, err := a.dispatcher.Post(ctx, a.loginURL,
		client.WithBody(loginRequest{Username: username, Password: string(password), ClientID: a.clientID}),
		client.WithoutAccessToken(),
	)
	if err != nil {
		var re *client.RequestError
		if errors.As(err, &re) && re.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
		}
		return fmt.Errorf("login error: %w", err)
	}

	var lr loginResponse
	if err := resp.JSON(&lr); err != nil {
		return fmt.Errorf("login error: %w", err)
	}
	if lr.AccessToken == "" || lr.RefreshToken == "" {
		return ErrInvalidLoginResponse
	}

	if err := credentials.Persist(ctx, a.store, credentials.Pair{AccessToken: lr.AccessToken, RefreshToken: lr.RefreshToken}); err != nil {
		return fmt.Errorf("failed to store credentials: %w", err)
	}

	a.logger.Info(ctx, "Logged in", "username", username)
	return nil
}

func (a *authService) Logout(ctx context.Context) error {
	refresh, err := a.store.Get(ctx, credentials.RefreshTokenKey)
	if err != nil {
		a.logger.Warn(ctx, "failed to read refresh credential", "error", err)
	}

	if refresh != "" && a.logoutURL != "" {
		_, err := a.dispatcher.Get(ctx, a.logoutURL,
			client.WithParams(url.Values{"refreshToken": {refresh}}),
			client.WithoutAccessToken(),
		)
		if err != nil {
			a.logger.Warn(ctx, "server side logout failed", "error", err)
		}
	}

	return a.terminator.Terminate(ctx)
}

func (a *authService) IsLoggedIn(ctx context.Context) (bool, error) {
	refresh, err := a.store.Get(ctx, credentials.RefreshTokenKey)
	if err != nil {
		return false, err
	}
	return refresh != "", nil
}
