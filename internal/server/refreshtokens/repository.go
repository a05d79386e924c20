// Package refreshtokens stores the dev auth server's refresh tokens.
package refreshtokens

import (
	"context"
	"time"
)

type RefreshToken struct {
	ID        string
	UserID    string
	ClientID  string
	Token     string
	Expires   time.Time
	CreatedAt time.Time
}

// Expired reports whether the token is no longer usable at now.
func (t *RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.Expires)
}

// Repository persists refresh tokens. Find returns common.ErrorNotFound for
// an unknown token. Delete of an unknown token is not an error.
type Repository interface {
	Create(ctx context.Context, rt *RefreshToken) error
	Find(ctx context.Context, token string) (*RefreshToken, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
