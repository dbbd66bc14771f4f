package transport

import (
	"errors"
	"net/http"

	"pos-till/internal/domain"
	"pos-till/internal/middleware"
	"pos-till/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RegisterRequest creates a staff account
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	DisplayName string `json:"display_name" validate:"required"`
	Role        string `json:"role" validate:"required,oneof=cashier manager admin"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest represents the token refresh request payload
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	User         UserProfile `json:"user"`
}

// RefreshResponse represents the token refresh response
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
}

// UserProfile is the public view of a staff account
type UserProfile struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

func profileOf(u *domain.User) UserProfile {
	return UserProfile{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        string(u.Role),
	}
}

// UserHandler handles HTTP requests for staff accounts and sessions
type UserHandler struct {
	userService service.UserService
	logger      *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// RegisterRoutes registers all user routes. loginLimit throttles the
// credential endpoints.
func (h *UserHandler) RegisterRoutes(r chi.Router, authMiddleware, loginLimit func(http.Handler) http.Handler) {
	r.Route("/api/users", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(loginLimit)
			r.Post("/login", h.Login)
			r.Post("/refresh", h.RefreshToken)
		})

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/logout", h.Logout)
			r.Get("/profile", h.GetProfile)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(h.logger))
				r.Get("/", h.List)
				r.Post("/", h.Register)
			})
		})
	})
}

// Register creates a staff account; admin only
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	user, err := h.userService.Register(r.Context(), req.Email, req.Password, req.DisplayName, domain.Role(req.Role))
	if err != nil {
		h.logger.Warn("Registration failed", zap.Error(err))
		middleware.RespondWithAppError(w, err, h.logger)
		return
	}

	h.logger.Info("User registered successfully", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	middleware.RespondWithJSON(w, http.StatusCreated, profileOf(user))
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users := h.userService.ListUsers(r.Context())
	out := make([]UserProfile, 0, len(users))
	for i := range users {
		out = append(out, profileOf(&users[i]))
	}
	middleware.RespondWithJSON(w, http.StatusOK, out)
}

// Login handles user authentication
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	accessToken, refreshToken, user, err := h.userService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Debug("Login failed", zap.Error(err))
		if errors.Is(err, service.ErrInvalidCredentials) {
			middleware.RespondWithError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to login")
		return
	}

	h.logger.Info("User logged in successfully", zap.String("user_id", user.ID))
	middleware.RespondWithJSON(w, http.StatusOK, LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         profileOf(user),
	})
}

// Logout revokes the refresh token
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	if err := h.userService.Logout(r.Context(), req.RefreshToken); err != nil {
		h.logger.Error("Logout failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to logout")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "logged out successfully"})
}

// RefreshToken handles token refresh
func (h *UserHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	newAccessToken, err := h.userService.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		h.logger.Debug("Token refresh failed", zap.Error(err))
		switch {
		case errors.Is(err, service.ErrInvalidToken):
			middleware.RespondWithError(w, http.StatusUnauthorized, "invalid refresh token")
		case errors.Is(err, service.ErrTokenExpired):
			middleware.RespondWithError(w, http.StatusUnauthorized, "refresh token expired")
		default:
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to refresh token")
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, RefreshResponse{AccessToken: newAccessToken})
}

// GetProfile returns the authenticated user's profile
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	op, ok := requireOperator(w, r, h.logger)
	if !ok {
		return
	}

	user, err := h.userService.GetUserByID(r.Context(), op.ID)
	if err != nil {
		middleware.RespondWithAppError(w, err, h.logger)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, profileOf(user))
}
