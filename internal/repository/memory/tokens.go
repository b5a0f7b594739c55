package memory

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/restaurant-pos/internal/repository"
)

type refreshToken struct {
	userID    uint64
	expiresAt time.Time
	revoked   bool
}

// TokenStore mirrors repository.TokenRepo.
type TokenStore struct {
	mu     sync.Mutex
	tokens map[string]*refreshToken
}

func NewTokenStore() *TokenStore {
	return &TokenStore{tokens: map[string]*refreshToken{}}
}

func (s *TokenStore) StoreRefresh(_ context.Context, userID uint64, tokenHash string, exp time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[tokenHash] = &refreshToken{userID: userID, expiresAt: exp}
	return nil
}

func (s *TokenStore) ValidateRefresh(_ context.Context, tokenHash string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[tokenHash]
	if !ok || t.revoked || time.Now().UTC().After(t.expiresAt) {
		return 0, repository.ErrNotFound
	}
	return t.userID, nil
}

func (s *TokenStore) RevokeByHash(_ context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tokens[tokenHash]; ok {
		t.revoked = true
	}
	return nil
}

func (s *TokenStore) RevokeAllForUser(_ context.Context, userID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tokens {
		if t.userID == userID {
			t.revoked = true
		}
	}
	return nil
}
