// Package httpapi serves the development auth server's HTTP endpoints:
// login, token refresh, logout, and a small bearer-protected /api tree the
// gateway client can be exercised against.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/gophgate/internal/common"
	"github.com/dmitrijs2005/gophgate/internal/logging"
	"github.com/dmitrijs2005/gophgate/internal/server/users"
)

const maxBodySize = 1 << 20

// UserService is the subset of users.Service the handlers depend on.
type UserService interface {
	Login(ctx context.Context, userName string, password []byte, clientID string) (*users.TokenPair, error)
	Refresh(ctx context.Context, refreshToken, clientID string) (string, error)
	Logout(ctx context.Context, refreshToken string) error
	Authenticate(accessToken string) (string, error)
}

type Handler struct {
	users  UserService
	logger logging.Logger
	mux    *http.ServeMux
}

func NewHandler(u UserService, l logging.Logger) *Handler {
	h := &Handler{users: u, logger: l.With("module", "http_api"), mux: http.NewServeMux()}

	h.mux.HandleFunc("POST /login", h.login)
	h.mux.HandleFunc("POST /token", h.token)
	h.mux.HandleFunc("GET /logout", h.logout)
	h.mux.Handle("GET /api/whoami", h.requireAccessToken(http.HandlerFunc(h.whoami)))
	h.mux.Handle("/api/", h.requireAccessToken(http.HandlerFunc(h.echo)))

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug(r.Context(), "request", "method", r.Method, "path", r.URL.Path)
	h.mux.ServeHTTP(w, r)
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

type tokenRequest struct {
	RefreshToken string `json:"refreshToken"`
	ClientID     string `json:"clientId"`
}

type tokenResponse struct {
	AccessToken string `json:"accessToken"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	pair, err := h.users.Login(r.Context(), req.Username, []byte(req.Password), req.ClientID)
	if err != nil {
		h.logger.Info(r.Context(), "login rejected", "username", req.Username, "error", err)
		h.writeServiceError(w, r, err)
		return
	}

	h.logger.Info(r.Context(), "logged in", "username", req.Username, "client_id", req.ClientID)
	writeJSON(w, http.StatusOK, loginResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (h *Handler) token(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.RefreshToken == "" {
		writeError(w, http.StatusUnauthorized, common.ErrInvalidToken.Error())
		return
	}

	access, err := h.users.Refresh(r.Context(), req.RefreshToken, req.ClientID)
	if err != nil {
		h.logger.Info(r.Context(), "refresh rejected", "client_id", req.ClientID, "error", err)
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: access})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Logout(r.Context(), r.URL.Query().Get("refreshToken")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (h *Handler) whoami(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"userId": userIDFromContext(r.Context())})
}

type echoResponse struct {
	Method string `json:"method"`
	Path   string `json:"path"`
	Query  string `json:"query,omitempty"`
	UserID string `json:"userId"`
	Body   string `json:"body,omitempty"`
}

func (h *Handler) echo(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	writeJSON(w, http.StatusOK, echoResponse{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		UserID: userIDFromContext(r.Context()),
		Body:   string(body),
	})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrRefreshTokenExpired),
		errors.Is(err, common.ErrUnknownClient):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		h.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, common.ErrorInternal.Error())
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(common.ContentTypeHeader, common.ContentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func bearerToken(r *http.Request) string {
	v := r.Header.Get(common.AuthorizationHeader)
	if len(v) < len(common.BearerPrefix) || !strings.EqualFold(v[:len(common.BearerPrefix)], common.BearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(common.BearerPrefix):])
}
