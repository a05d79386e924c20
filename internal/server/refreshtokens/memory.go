package refreshtokens

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophgate/internal/common"
)

type MemoryRepository struct {
	mu     sync.Mutex
	tokens map[string]RefreshToken
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{tokens: make(map[string]RefreshToken)}
}

func (r *MemoryRepository) Create(ctx context.Context, rt *RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *rt
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	r.tokens[rt.Token] = c
	return nil
}

func (r *MemoryRepository) Find(ctx context.Context, token string) (*RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rt, ok := r.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &rt, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, token)
	return nil
}

func (r *MemoryRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for k, rt := range r.tokens {
		if rt.Expired(now) {
			delete(r.tokens, k)
			n++
		}
	}
	return n, nil
}
