package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jeevithdev/spotq/internal/auth"
	"github.com/jeevithdev/spotq/internal/model"
	"github.com/jeevithdev/spotq/internal/repository"
)

const testSecret = "handler-test-secret-0123"

type fakeUsers struct {
	byName map[string]*model.User
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	if u, ok := f.byName[username]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	for _, u := range f.byName {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) UpdatePasswordHash(_ context.Context, id uuid.UUID, hash string) error {
	for _, u := range f.byName {
		if u.ID == id {
			u.PasswordHash = hash
			return nil
		}
	}
	return repository.ErrNotFound
}

func authServer(t *testing.T, cost int) (*echo.Echo, *fakeUsers) {
	t.Helper()
	hash, err := auth.HashPassword("pour-1420", bcrypt.MinCost)
	require.NoError(t, err)
	users := &fakeUsers{byName: map[string]*model.User{
		"qa":     {ID: uuid.New(), Username: "qa", Name: "QA Lead", Role: model.RoleAdmin, PasswordHash: hash},
		"legacy": {ID: uuid.New(), Username: "legacy", Role: model.RoleViewer, PasswordHash: "melt"},
	}}
	h := &AuthHandler{Users: users, Secret: testSecret, TokenTTL: time.Hour, BcryptCost: cost, Log: zerolog.Nop()}

	e := echo.New()
	g := e.Group("/api/v1/auth")
	g.POST("/login", h.Login)
	g.GET("/me", h.Me, auth.Middleware(testSecret))
	return e, users
}

type loginData struct {
	Token string             `json:"token"`
	User  model.UserResponse `json:"user"`
}

func TestAuthHandler_Login(t *testing.T) {
	e, users := authServer(t, bcrypt.MinCost)

	code, env := serve(t, e, http.MethodPost, "/api/v1/auth/login", `{"username":"qa","password":"pour-1420"}`)
	require.Equal(t, http.StatusOK, code)
	data := decodeData[loginData](t, env)
	assert.Equal(t, "qa", data.User.Username)
	assert.Equal(t, model.RoleAdmin, data.User.Role)

	claims, err := auth.ValidateToken(testSecret, data.Token)
	require.NoError(t, err)
	assert.Equal(t, users.byName["qa"].ID.String(), claims.UserID)

	code, env = serve(t, e, http.MethodPost, "/api/v1/auth/login", `{"username":"qa","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid credentials", env.Message)

	code, _ = serve(t, e, http.MethodPost, "/api/v1/auth/login", `{"username":"nobody","password":"x"}`)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = serve(t, e, http.MethodPost, "/api/v1/auth/login", `{"username":"qa"}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestAuthHandler_LoginUpgradesPasswords(t *testing.T) {
	e, users := authServer(t, bcrypt.MinCost+1)

	code, _ := serve(t, e, http.MethodPost, "/api/v1/auth/login", `{"username":"legacy","password":"melt"}`)
	require.Equal(t, http.StatusOK, code)
	stored := users.byName["legacy"].PasswordHash
	assert.True(t, auth.IsHashed(stored))
	assert.True(t, auth.CheckPassword("melt", stored))

	code, _ = serve(t, e, http.MethodPost, "/api/v1/auth/login", `{"username":"qa","password":"pour-1420"}`)
	require.Equal(t, http.StatusOK, code)
	cost, err := bcrypt.Cost([]byte(users.byName["qa"].PasswordHash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost+1, cost)

	code, _ = serve(t, e, http.MethodPost, "/api/v1/auth/login", `{"username":"legacy","password":"melt"}`)
	assert.Equal(t, http.StatusOK, code)
}

func TestAuthHandler_Me(t *testing.T) {
	e, _ := authServer(t, bcrypt.MinCost)
	_, env := serve(t, e, http.MethodPost, "/api/v1/auth/login", `{"username":"qa","password":"pour-1420"}`)
	token := decodeData[loginData](t, env).Token

	req, rec := newRequest(http.MethodGet, "/api/v1/auth/me")
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"qa"`)

	req, rec = newRequest(http.MethodGet, "/api/v1/auth/me")
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
