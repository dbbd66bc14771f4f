package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pos-till/internal/apperror"
	"pos-till/internal/clock"
	"pos-till/internal/domain"
	"pos-till/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost is the cost factor for bcrypt hashing
	BcryptCost = 10

	// Default token lifetimes when none are configured
	AccessTokenExpiration  = 15 * time.Minute
	RefreshTokenExpiration = 7 * 24 * time.Hour

	minPasswordLength = 6
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token has expired")
)

// UserService defines the interface for staff accounts and authentication
type UserService interface {
	Register(ctx context.Context, email, password, displayName string, role domain.Role) (*domain.User, error)
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, user *domain.User, err error)
	Logout(ctx context.Context, refreshToken string) error
	RefreshToken(ctx context.Context, refreshToken string) (newAccessToken string, err error)
	ValidateToken(tokenString string) (*Claims, error)
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
	ListUsers(ctx context.Context) []domain.User
	SeedDefaults(ctx context.Context) error
}

// Claims represents the JWT claims
type Claims struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
	Name   string      `json:"name"`
	jwt.RegisteredClaims
}

// Operator converts the claims into the acting staff member.
func (c *Claims) Operator() Operator {
	return Operator{ID: c.UserID, Name: c.Name, Role: c.Role}
}

// TokenTTL configures token lifetimes.
type TokenTTL struct {
	Access  time.Duration
	Refresh time.Duration
}

type userService struct {
	userRepo         repository.UserRepository
	refreshTokenRepo repository.RefreshTokenRepository
	jwtSecret        string
	ttl              TokenTTL
	clock            clock.Clock
	logger           *zap.Logger
}

// NewUserService creates a new instance of UserService
func NewUserService(
	userRepo repository.UserRepository,
	refreshTokenRepo repository.RefreshTokenRepository,
	jwtSecret string,
	ttl TokenTTL,
	clk clock.Clock,
	logger *zap.Logger,
) UserService {
	if ttl.Access <= 0 {
		ttl.Access = AccessTokenExpiration
	}
	if ttl.Refresh <= 0 {
		ttl.Refresh = RefreshTokenExpiration
	}
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &userService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		jwtSecret:        jwtSecret,
		ttl:              ttl,
		clock:            clk,
		logger:           logger,
	}
}

// Register creates a staff account with a hashed password
func (s *userService) Register(ctx context.Context, email, password, displayName string, role domain.Role) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperror.NewFieldValidation("email", "email is required")
	}
	if len(password) < minPasswordLength {
		return nil, apperror.NewFieldValidation("password", fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if !role.Valid() {
		return nil, apperror.NewFieldValidation("role", "role must be cashier, manager or admin")
	}

	hashedPassword, err := s.hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.clock.Now()
	user := &domain.User{
		V:            domain.SchemaVersion,
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hashedPassword,
		DisplayName:  strings.TrimSpace(displayName),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserAlreadyExists) {
			return nil, apperror.Wrap(apperror.KindConflict, "user with this email already exists", err)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login authenticates a user and returns JWT tokens
func (s *userService) Login(ctx context.Context, email, password string) (accessToken, refreshToken string, user *domain.User, err error) {
	user, err = s.userRepo.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", "", nil, ErrInvalidCredentials
		}
		return "", "", nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := s.verifyPassword(user.PasswordHash, password); err != nil {
		return "", "", nil, ErrInvalidCredentials
	}

	accessToken, err = s.generateAccessToken(user)
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err = s.generateRefreshToken(ctx, user)
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return accessToken, refreshToken, user, nil
}

// Logout invalidates the refresh token
func (s *userService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.refreshTokenRepo.Revoke(ctx, refreshToken); err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			// already gone
			return nil
		}
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// RefreshToken issues a new access token for a valid refresh token
func (s *userService) RefreshToken(ctx context.Context, refreshTokenString string) (newAccessToken string, err error) {
	refreshToken, err := s.refreshTokenRepo.FindByToken(ctx, refreshTokenString)
	if err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) || errors.Is(err, repository.ErrRefreshTokenRevoked) {
			return "", ErrInvalidToken
		}
		return "", fmt.Errorf("failed to find refresh token: %w", err)
	}

	if s.clock.Now().After(refreshToken.ExpiresAt) {
		return "", ErrTokenExpired
	}

	user, err := s.userRepo.FindByID(ctx, refreshToken.UserID)
	if err != nil {
		return "", fmt.Errorf("failed to find user: %w", err)
	}

	newAccessToken, err = s.generateAccessToken(user)
	if err != nil {
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}

	return newAccessToken, nil
}

// ValidateToken validates a JWT token and returns the claims
func (s *userService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithTimeFunc(s.clock.Now))

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.Wrap(apperror.KindNotFound, "user not found", err)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context) []domain.User {
	return s.userRepo.List(ctx)
}

type seedAccount struct {
	email, password, name string
	role                  domain.Role
}

var defaultAccounts = []seedAccount{
	{"admin@pos.com", "admin123", "Administrador", domain.RoleAdmin},
	{"manager@pos.com", "manager123", "Gerente", domain.RoleManager},
	{"cashier@pos.com", "cashier123", "Cajero", domain.RoleCashier},
}

// SeedDefaults creates the demo staff accounts that do not exist yet.
func (s *userService) SeedDefaults(ctx context.Context) error {
	for _, acc := range defaultAccounts {
		if _, err := s.userRepo.FindByEmail(ctx, acc.email); err == nil {
			continue
		}
		if _, err := s.Register(ctx, acc.email, acc.password, acc.name, acc.role); err != nil {
			if errors.Is(err, apperror.ErrConflict) {
				continue
			}
			return fmt.Errorf("failed to seed %s: %w", acc.email, err)
		}
		s.logger.Info("Seeded staff account", zap.String("email", acc.email), zap.String("role", string(acc.role)))
	}
	return nil
}

func (s *userService) hashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

func (s *userService) verifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// generateAccessToken signs a JWT carrying the user's id, role and name
func (s *userService) generateAccessToken(user *domain.User) (string, error) {
	now := s.clock.Now()
	claims := &Claims{
		UserID: user.ID,
		Role:   user.Role,
		Name:   user.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl.Access)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// generateRefreshToken creates and stores an opaque refresh token
func (s *userService) generateRefreshToken(ctx context.Context, user *domain.User) (string, error) {
	now := s.clock.Now()
	refreshToken := &domain.RefreshToken{
		V:         domain.SchemaVersion,
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: now.Add(s.ttl.Refresh),
		CreatedAt: now,
	}

	if err := s.refreshTokenRepo.Create(ctx, refreshToken); err != nil {
		return "", err
	}

	return refreshToken.Token, nil
}
