package users

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/gophgate/internal/common"
)

// Repository looks users up by login. Unknown logins give common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetUserByLogin(ctx context.Context, login string) (*User, error)
}

type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]*User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]*User)}
}

func (r *MemoryRepository) Create(ctx context.Context, user *User) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.UserName] = user
	return user, nil
}

func (r *MemoryRepository) GetUserByLogin(ctx context.Context, login string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[login]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}
