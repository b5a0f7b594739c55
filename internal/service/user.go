package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/repository"
	"github.com/iliyamo/restaurant-pos/internal/utils"
)

// UserService manages staff and table accounts. Accounts are created by an
// administrator; there is no self-registration.
type UserService struct {
	base
	bcryptCost int
}

func NewUserService(d Deps, bcryptCost int) *UserService {
	return &UserService{base: newBase(d), bcryptCost: bcryptCost}
}

// Create validates and stores a new active account. A taken email is
// repository.ErrEmailExists.
func (s *UserService) Create(ctx context.Context, email, password string, role model.Role) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return model.User{}, validation("invalid email")
	}
	if len(password) < utils.MinPasswordLen {
		return model.User{}, validation(fmt.Sprintf("password must be at least %d characters", utils.MinPasswordLen))
	}
	r, ok := model.ParseRole(string(role))
	if !ok {
		return model.User{}, validation(fmt.Sprintf("unknown role %q", role))
	}

	var u model.User
	err := s.store.WithinTx(ctx, func(q repository.Querier) error {
		id, err := q.CreateUser(ctx, email, password, r, s.bcryptCost)
		if err != nil {
			return err
		}
		u, err = q.GetUser(ctx, id)
		return err
	})
	if err != nil {
		return model.User{}, err
	}
	s.log.Info("user_created", map[string]any{"user_id": u.ID, "role": u.Role})
	return u, nil
}

// EnsureAdmin creates an ADMIN account for email unless one already
// exists. It reports whether an account was created.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	if strings.TrimSpace(email) == "" {
		return false, nil
	}
	if _, err := s.ByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return false, err
	}
	_, err := s.Create(ctx, email, password, model.RoleAdmin)
	if errors.Is(err, repository.ErrEmailExists) {
		return false, nil
	}
	return err == nil, err
}

func (s *UserService) ByEmail(ctx context.Context, email string) (model.User, error) {
	var u model.User
	err := s.store.WithinTx(ctx, func(q repository.Querier) error {
		var err error
		u, err = q.GetUserByEmail(ctx, email)
		return err
	})
	return u, err
}

func (s *UserService) ByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := s.store.WithinTx(ctx, func(q repository.Querier) error {
		var err error
		u, err = q.GetUser(ctx, id)
		return err
	})
	return u, err
}
