package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/weilandt/circ-api/internal/api/shared"
	"github.com/weilandt/circ-api/internal/service"
	"github.com/weilandt/circ-api/internal/service/auth"
	"github.com/weilandt/circ-api/internal/store"
)

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	membership    service.MembershipService
	circulation   service.CirculationService
	tokenService  auth.TokenService
	tokenLifetime time.Duration
	validator     *validator.Validate
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	membership service.MembershipService,
	circulation service.CirculationService,
	tokenService auth.TokenService,
	tokenLifetime time.Duration,
) *AuthHandler {
	return &AuthHandler{
		membership:    membership,
		circulation:   circulation,
		tokenService:  tokenService,
		tokenLifetime: tokenLifetime,
		validator:     validator.New(),
	}
}

// Register handles the /auth/register endpoint.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest

	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	user, err := h.membership.Register(r.Context(), req.Name, req.Password, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrUsernameExists) {
			shared.RespondWithError(w, r, http.StatusConflict, "Name already taken")
			return
		}
		HandleAPIError(w, r, err, "")
		return
	}

	h.respondWithTokenPair(w, r, user.Name, auth.RoleMember, http.StatusCreated)
}

// Login handles the /auth/login endpoint. Member names are tried first;
// a name registered as an admin logs in with the admin role.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	user, err := h.membership.Authenticate(r.Context(), req.Name, req.Password)
	if err == nil {
		// freshen the fine balance so the member sees current state
		if _, err := h.circulation.CheckOverdue(r.Context(), user.Name); err != nil {
			slog.Error("overdue scan on login failed", "error", err, "user", user.Name)
		}
		h.respondWithTokenPair(w, r, user.Name, auth.RoleMember, http.StatusOK)
		return
	}
	if !errors.Is(err, service.ErrInvalidCredentials) {
		HandleAPIError(w, r, err, "Failed to authenticate user")
		return
	}

	admin, err := h.membership.AuthenticateAdmin(r.Context(), req.Name, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		HandleAPIError(w, r, err, "Failed to authenticate user")
		return
	}

	h.respondWithTokenPair(w, r, admin.Name, auth.RoleAdmin, http.StatusOK)
}

// RefreshToken handles the /auth/refresh endpoint, exchanging a valid
// refresh token for a new token pair.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest

	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	claims, err := h.tokenService.ValidateRefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		HandleAPIError(w, r, err, "Invalid refresh token")
		return
	}

	accessToken, err := h.tokenService.GenerateToken(r.Context(), claims.Username, claims.Role)
	if err != nil {
		slog.Error("failed to generate token", "error", err, "user", claims.Username)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to generate authentication token")
		return
	}

	refreshToken, err := h.tokenService.GenerateRefreshToken(r.Context(), claims.Username, claims.Role)
	if err != nil {
		slog.Error("failed to generate refresh token", "error", err, "user", claims.Username)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to generate authentication token")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, RefreshTokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().UTC().Add(h.tokenLifetime).Format(time.RFC3339),
	})
}

func (h *AuthHandler) respondWithTokenPair(
	w http.ResponseWriter,
	r *http.Request,
	username string,
	role auth.Role,
	status int,
) {
	accessToken, err := h.tokenService.GenerateToken(r.Context(), username, role)
	if err != nil {
		slog.Error("failed to generate token", "error", err, "user", username)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to generate authentication token")
		return
	}

	refreshToken, err := h.tokenService.GenerateRefreshToken(r.Context(), username, role)
	if err != nil {
		slog.Error("failed to generate refresh token", "error", err, "user", username)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to generate authentication token")
		return
	}

	shared.RespondWithJSON(w, r, status, AuthResponse{
		Username:     username,
		Role:         string(role),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().UTC().Add(h.tokenLifetime).Format(time.RFC3339),
	})
}
