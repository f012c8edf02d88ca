package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/user-service/internal/api/http/handlers"
	"github.com/spec-kit/user-service/internal/auth"
	"github.com/spec-kit/user-service/internal/config"
	"github.com/spec-kit/user-service/internal/domain"
	"github.com/spec-kit/user-service/internal/observability"
	"github.com/spec-kit/user-service/internal/service"
)

type memUserRepo struct {
	users map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*domain.User)}
}

func (m *memUserRepo) Create(_ context.Context, user *domain.User) error {
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	m.users[user.ID] = &clone
	return nil
}

func (m *memUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *user
	m.users[user.ID] = &clone
	return nil
}

func (m *memUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.users, id)
	return nil
}

func (m *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (m *memUserRepo) GetByName(_ context.Context, name string) (*domain.User, error) {
	for _, user := range m.users {
		if user.Name == name {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memUserRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	_, err := m.GetByName(ctx, name)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

func (m *memUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := m.GetByEmail(ctx, email)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

func (m *memUserRepo) List(_ context.Context) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(m.users))
	for _, user := range m.users {
		clone := *user
		out = append(out, &clone)
	}
	return out, nil
}

type memBlacklistStore struct {
	entries map[string]struct{}
}

func newMemBlacklistStore() *memBlacklistStore {
	return &memBlacklistStore{entries: make(map[string]struct{})}
}

func (m *memBlacklistStore) Put(_ context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	m.entries[token] = struct{}{}
	return nil
}

func (m *memBlacklistStore) Contains(_ context.Context, token string) (bool, error) {
	_, ok := m.entries[token]
	return ok, nil
}

func (m *memBlacklistStore) Remove(_ context.Context, token string) error {
	delete(m.entries, token)
	return nil
}

func (m *memBlacklistStore) Count(_ context.Context) (int64, error) {
	return int64(len(m.entries)), nil
}

func (m *memBlacklistStore) Clear(_ context.Context) error {
	m.entries = make(map[string]struct{})
	return nil
}

func newUsersApp(t *testing.T) (*fiber.App, *service.UserService) {
	t.Helper()

	tokens := auth.NewTokenManager("handler-test-secret", time.Hour)
	blacklist := service.NewTokenBlacklistService(newMemBlacklistStore(), tokens, time.Hour, true, zap.NewNop())

	cfg := config.Config{}
	cfg.Auth.BcryptCost = 4

	userService := service.NewUserService(cfg, service.UserDependencies{
		UserRepo:  newMemUserRepo(),
		Blacklist: blacklist,
		TokenMgr:  tokens,
	})

	validator := auth.NewValidator(tokens, blacklist)
	middleware := auth.NewMiddleware(validator, zap.NewNop(), observability.NewMetrics())
	usersHandler := handlers.NewUsersHandler(userService)

	app := fiber.New()
	app.Use(middleware.Handle)
	app.Get("/users/me", auth.RequireAuthenticated(), usersHandler.Me)
	app.Get("/users/:id", auth.RequireAuthenticated(), usersHandler.GetByID)
	return app, userService
}

func TestMeReturnsOwnRecord(t *testing.T) {
	app, userService := newUsersApp(t)

	user, token, err := userService.SignUp(context.Background(), "alice", "alice@example.com", "password123", domain.RoleUser)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token.Value)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Data struct {
			ID    string `json:"id"`
			Name  string `json:"name"`
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, user.ID, body.Data.ID)
	require.Equal(t, "alice", body.Data.Name)
	require.Equal(t, "alice@example.com", body.Data.Email)
	require.Equal(t, "user", body.Data.Role)
}

func TestMeRequiresAuthentication(t *testing.T) {
	app, _ := newUsersApp(t)

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMeNotCapturedByIDRoute(t *testing.T) {
	app, userService := newUsersApp(t)

	_, token, err := userService.SignUp(context.Background(), "bob", "bob@example.com", "password123", domain.RoleUser)
	require.NoError(t, err)

	// "me" must resolve to the caller's record, not be treated as an ID.
	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token.Value)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Data struct {
			Name string `json:"name"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "bob", body.Data.Name)
}
