package memory

import (
	"context"
	"strings"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/repository"
	"github.com/iliyamo/restaurant-pos/internal/utils"
)

func (q *Queries) CreateUser(_ context.Context, email, password string, role model.Role, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range q.st.users {
		if u.Email == email {
			return 0, repository.ErrEmailExists
		}
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	now := q.now()
	u := model.User{
		ID:           q.st.next("users"),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	q.st.users[u.ID] = u
	return u.ID, nil
}

func (q *Queries) GetUser(_ context.Context, id uint64) (model.User, error) {
	u, ok := q.st.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (q *Queries) GetUserByEmail(_ context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range q.st.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (q *Queries) ListActiveUsersByRole(_ context.Context, role model.Role) ([]model.User, error) {
	var out []model.User
	for _, id := range sortedKeys(q.st.users) {
		if u := q.st.users[id]; u.Role == role && u.IsActive {
			out = append(out, u)
		}
	}
	return out, nil
}

// SetUserActive is a test helper; the HTTP surface has no deactivate route.
func (s *Store) SetUserActive(id uint64, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.st.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.IsActive = active
	s.st.users[id] = u
	return nil
}
