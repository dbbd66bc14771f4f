package repository

import (
	"context"
	"errors"
	"strings"

	"pos-till/internal/domain"
	"pos-till/internal/kvstore"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user with this email already exists")
)

// UserRepository defines the interface for staff account data access
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) []domain.User
}

type userRepository struct {
	store *kvstore.Store
}

// NewUserRepository creates a new instance of UserRepository
func NewUserRepository(store *kvstore.Store) UserRepository {
	return &userRepository{store: store}
}

func userID(u domain.User) string { return u.ID }

// Create stores a new user; emails are unique, case-insensitively
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if _, err := r.FindByEmail(ctx, user.Email); err == nil {
		return ErrUserAlreadyExists
	}
	kvstore.Upsert(ctx, r.store, keyUsers, *user, userID)
	return nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range r.List(ctx) {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	for _, u := range r.List(ctx) {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *userRepository) List(ctx context.Context) []domain.User {
	return kvstore.LoadList[domain.User](ctx, r.store, keyUsers)
}
