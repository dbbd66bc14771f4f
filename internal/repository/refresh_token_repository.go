package repository

import (
	"context"
	"errors"

	"pos-till/internal/domain"
	"pos-till/internal/kvstore"
)

var (
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrRefreshTokenRevoked  = errors.New("refresh token has been revoked")
)

// RefreshTokenRepository defines the interface for refresh token data access
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *domain.RefreshToken) error
	FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error)
	Revoke(ctx context.Context, token string) error
}

type refreshTokenRepository struct {
	store *kvstore.Store
}

// NewRefreshTokenRepository creates a new instance of RefreshTokenRepository
func NewRefreshTokenRepository(store *kvstore.Store) RefreshTokenRepository {
	return &refreshTokenRepository{store: store}
}

func tokenValue(t domain.RefreshToken) string { return t.Token }

func (r *refreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	kvstore.Upsert(ctx, r.store, keyRefreshTokens, *token, tokenValue)
	return nil
}

func (r *refreshTokenRepository) find(ctx context.Context, token string) (*domain.RefreshToken, error) {
	for _, t := range kvstore.LoadList[domain.RefreshToken](ctx, r.store, keyRefreshTokens) {
		if t.Token == token {
			return &t, nil
		}
	}
	return nil, ErrRefreshTokenNotFound
}

// FindByToken retrieves a non-revoked refresh token
func (r *refreshTokenRepository) FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	t, err := r.find(ctx, token)
	if err != nil {
		return nil, err
	}
	if t.Revoked {
		return nil, ErrRefreshTokenRevoked
	}
	return t, nil
}

// Revoke marks a refresh token as revoked
func (r *refreshTokenRepository) Revoke(ctx context.Context, token string) error {
	t, err := r.find(ctx, token)
	if err != nil {
		return err
	}
	t.Revoked = true
	kvstore.Upsert(ctx, r.store, keyRefreshTokens, *t, tokenValue)
	return nil
}
