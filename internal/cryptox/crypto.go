// Package cryptox seals small secrets (stored credentials) with AES-256-GCM
// under a key derived from a passphrase with argon2id.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"

	"github.com/dmitrijs2005/gophgate/internal/common"
	"golang.org/x/crypto/argon2"
)

// KeySize is the length of keys returned by DeriveKey (AES-256).
const KeySize = 32

// SaltSize is the recommended salt length for DeriveKey.
const SaltSize = 16

var ErrSealedTooShort = errors.New("sealed value too short")

// DeriveKey stretches passphrase into a KeySize key. Same inputs always give
// the same key.
func DeriveKey(passphrase []byte, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, KeySize)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Seal encrypts plaintext and returns nonce||ciphertext. A fresh random nonce
// is used on every call.
func Seal(key, plaintext []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := common.GenerateRandByteArray(aesgcm.NonceSize())
	return aesgcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Open reverses Seal. It fails if the value was tampered with or sealed under
// another key.
func Open(key, sealed []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	n := aesgcm.NonceSize()
	if len(sealed) < n {
		return nil, ErrSealedTooShort
	}

	return aesgcm.Open(nil, sealed[:n], sealed[n:], nil)
}

// GenerateSalt returns SaltSize random bytes for DeriveKey.
func GenerateSalt() []byte {
	return common.GenerateRandByteArray(SaltSize)
}
