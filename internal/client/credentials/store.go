// Package credentials holds the client's credential pair behind a small
// key/value Store interface. The gateway core only ever talks to Store;
// the memory, SQLite, Redis and sealing implementations are interchangeable.
package credentials

import (
	"context"
	"errors"
)

const (
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
)

var ErrEmptyKey = errors.New("empty credential key")

// Store persists opaque credential values.
//
// Get returns ("", nil) for an absent key. Remove of an absent key is not an
// error. Implementations must be safe for concurrent use.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Remove(ctx context.Context, key string) error
}

// Pair is the access/refresh credential pair issued at login.
type Pair struct {
	AccessToken  string
	RefreshToken string
}

// PairWriter is implemented by stores that can write both credentials
// atomically.
type PairWriter interface {
	SetPair(ctx context.Context, p Pair) error
}

// Persist writes both credentials of p, atomically when s supports it.
func Persist(ctx context.Context, s Store, p Pair) error {
	if pw, ok := s.(PairWriter); ok {
		return pw.SetPair(ctx, p)
	}
	if err := s.Set(ctx, AccessTokenKey, p.AccessToken); err != nil {
		return err
	}
	return s.Set(ctx, RefreshTokenKey, p.RefreshToken)
}

// Load reads both credentials. Absent values come back empty.
func Load(ctx context.Context, s Store) (Pair, error) {
	access, err := s.Get(ctx, AccessTokenKey)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := s.Get(ctx, RefreshTokenKey)
	if err != nil {
		return Pair{}, err
	}
	return Pair{AccessToken: access, RefreshToken: refresh}, nil
}
