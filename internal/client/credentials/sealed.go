package credentials

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/dmitrijs2005/gophgate/internal/cryptox"
)

const saltKey = "seal_salt"

// SealedStore encrypts values before handing them to the wrapped store. The
// argon2 salt is kept unencrypted in the wrapped store under "seal_salt".
type SealedStore struct {
	inner Store
	key   []byte
}

// NewSealedStore derives the sealing key from passphrase, creating and saving
// a salt on first use.
func NewSealedStore(ctx context.Context, inner Store, passphrase []byte) (*SealedStore, error) {
	encoded, err := inner.Get(ctx, saltKey)
	if err != nil {
		return nil, err
	}

	var salt []byte
	if encoded == "" {
		salt = cryptox.GenerateSalt()
		if err := inner.Set(ctx, saltKey, base64.StdEncoding.EncodeToString(salt)); err != nil {
			return nil, err
		}
	} else {
		salt, err = base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("corrupt seal salt: %w", err)
		}
	}

	return &SealedStore{inner: inner, key: cryptox.DeriveKey(passphrase, salt)}, nil
}

func (s *SealedStore) Get(ctx context.Context, key string) (string, error) {
	encoded, err := s.inner.Get(ctx, key)
	if err != nil || encoded == "" {
		return "", err
	}

	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("corrupt sealed credential[%s]: %w", key, err)
	}
	plain, err := cryptox.Open(s.key, sealed)
	if err != nil {
		return "", fmt.Errorf("failed to open credential[%s]: %w", key, err)
	}
	return string(plain), nil
}

func (s *SealedStore) Set(ctx context.Context, key string, value string) error {
	sealed, err := cryptox.Seal(s.key, []byte(value))
	if err != nil {
		return err
	}
	return s.inner.Set(ctx, key, base64.StdEncoding.EncodeToString(sealed))
}

func (s *SealedStore) Remove(ctx context.Context, key string) error {
	return s.inner.Remove(ctx, key)
}
