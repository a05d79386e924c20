package users

import (
	"time"

	"github.com/dmitrijs2005/gophgate/internal/cryptox"
	"github.com/google/uuid"
)

type User struct {
	ID        string
	UserName  string
	Salt      []byte
	Verifier  []byte
	CreatedAt time.Time
}

// NewUser derives the password verifier with a fresh salt.
func NewUser(username string, password []byte) *User {
	salt := cryptox.GenerateSalt()
	return &User{
		ID:        uuid.NewString(),
		UserName:  username,
		Salt:      salt,
		Verifier:  cryptox.DeriveKey(password, salt),
		CreatedAt: time.Now(),
	}
}
