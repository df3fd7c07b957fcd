package handler

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/jeevithdev/spotq/internal/auth"
	"github.com/jeevithdev/spotq/internal/model"
	"github.com/jeevithdev/spotq/internal/repository"
	"github.com/jeevithdev/spotq/internal/response"
)

// UserStore is the user persistence used for login.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
}

// AuthHandler handles /auth/login and /auth/me.
type AuthHandler struct {
	Users      UserStore
	Secret     string
	TokenTTL   time.Duration
	BcryptCost int
	Log        zerolog.Logger
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string             `json:"token"`
	User  model.UserResponse `json:"user"`
}

// Login checks credentials and issues a token (POST /auth/login).
// Legacy plaintext and low-cost hashes are upgraded on success.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := decodeBody(c.Request().Body, &req); err != nil {
		return response.BadRequest(c, err.Error())
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return response.BadRequest(c, "username and password are required")
	}

	ctx := c.Request().Context()
	u, err := h.Users.GetByUsername(ctx, req.Username)
	if errors.Is(err, repository.ErrNotFound) {
		return response.Error(c, http.StatusUnauthorized, "Invalid credentials")
	}
	if err != nil {
		h.Log.Error().Err(err).Msg("login lookup failed")
		return response.InternalError(c)
	}
	if !passwordMatches(req.Password, u.PasswordHash) {
		h.Log.Info().Str("username", u.Username).Msg("login rejected")
		return response.Error(c, http.StatusUnauthorized, "Invalid credentials")
	}

	if auth.NeedsRehash(u.PasswordHash, h.BcryptCost) {
		h.rehash(ctx, u, req.Password)
	}

	token, err := auth.GenerateToken(h.Secret, h.TokenTTL, u)
	if err != nil {
		h.Log.Error().Err(err).Msg("sign token")
		return response.InternalError(c)
	}
	return response.OK(c, loginResponse{Token: token, User: u.ToResponse()}, "Login successful")
}

// Me returns the authenticated user (GET /auth/me).
func (h *AuthHandler) Me(c echo.Context) error {
	claims := auth.GetClaims(c)
	if claims == nil {
		return response.Error(c, http.StatusUnauthorized, "unauthorized")
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return response.Error(c, http.StatusUnauthorized, "invalid token subject")
	}
	u, err := h.Users.GetByID(c.Request().Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return response.NotFound(c, "User not found")
	}
	if err != nil {
		h.Log.Error().Err(err).Msg("load current user")
		return response.InternalError(c)
	}
	return response.OK(c, u.ToResponse(), "")
}

func (h *AuthHandler) rehash(ctx context.Context, u *model.User, password string) {
	hash, err := auth.HashPassword(password, h.BcryptCost)
	if err == nil {
		err = h.Users.UpdatePasswordHash(ctx, u.ID, hash)
	}
	if err != nil {
		h.Log.Warn().Err(err).Str("username", u.Username).Msg("password rehash failed")
		return
	}
	u.PasswordHash = hash
	h.Log.Info().Str("username", u.Username).Msg("password rehashed")
}

func passwordMatches(password, stored string) bool {
	if auth.IsHashed(stored) {
		return auth.CheckPassword(password, stored)
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(stored)) == 1
}
