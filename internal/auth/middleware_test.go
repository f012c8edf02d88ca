package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/user-service/internal/auth"
	"github.com/spec-kit/user-service/internal/domain"
	"github.com/spec-kit/user-service/internal/observability"
)

type probeResponse struct {
	Authenticated bool   `json:"authenticated"`
	UserID        string `json:"user_id"`
	Name          string `json:"name"`
	Role          string `json:"role"`
}

func newTestApp(tm *auth.TokenManager, blacklist auth.BlacklistChecker) (*fiber.App, *observability.Metrics) {
	validator := auth.NewValidator(tm, blacklist)
	metrics := observability.NewMetrics()
	middleware := auth.NewMiddleware(validator, zap.NewNop(), metrics)

	app := fiber.New()
	app.Use(middleware.Handle)
	app.Get("/probe", func(c *fiber.Ctx) error {
		principal, ok := auth.PrincipalFromContext(c)
		if !ok {
			return c.JSON(probeResponse{Authenticated: false})
		}
		return c.JSON(probeResponse{
			Authenticated: true,
			UserID:        principal.UserID,
			Name:          principal.Name,
			Role:          string(principal.Role),
		})
	})
	app.Get("/protected", auth.RequireAuthenticated(), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusNoContent)
	})
	app.Get("/admin", auth.RequireRole(domain.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusNoContent)
	})
	return app, metrics
}

func probe(t *testing.T, app *fiber.App, authorization string) probeResponse {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out probeResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestMiddlewareAnonymousPassThrough(t *testing.T) {
	tm := auth.NewTokenManager(testSecret, time.Hour)
	app, _ := newTestApp(tm, newFakeBlacklist())

	out := probe(t, app, "")
	require.False(t, out.Authenticated)
}

func TestMiddlewareAttachesPrincipal(t *testing.T) {
	tm := auth.NewTokenManager(testSecret, time.Hour)
	token, _, err := tm.Generate("u1", "alice", domain.RoleAdmin)
	require.NoError(t, err)

	app, metrics := newTestApp(tm, newFakeBlacklist())

	out := probe(t, app, "Bearer "+token)
	require.True(t, out.Authenticated)
	require.Equal(t, "u1", out.UserID)
	require.Equal(t, "alice", out.Name)
	require.Equal(t, "admin", out.Role)
	require.EqualValues(t, 1, metrics.AuthEventCount("accepted"))
}

func TestMiddlewareRevokedProceedsAnonymous(t *testing.T) {
	tm := auth.NewTokenManager(testSecret, time.Hour)
	token, _, err := tm.Generate("u1", "alice", domain.RoleUser)
	require.NoError(t, err)

	blacklist := newFakeBlacklist()
	blacklist.revoked[token] = true
	app, metrics := newTestApp(tm, blacklist)

	out := probe(t, app, "Bearer "+token)
	require.False(t, out.Authenticated)
	require.EqualValues(t, 1, metrics.AuthEventCount("rejected_revoked"))
}

func TestMiddlewareInvalidTokenProceedsAnonymous(t *testing.T) {
	tm := auth.NewTokenManager(testSecret, time.Hour)
	app, metrics := newTestApp(tm, newFakeBlacklist())

	require.False(t, probe(t, app, "Bearer garbage").Authenticated)
	require.False(t, probe(t, app, "Basic dXNlcjpwYXNz").Authenticated)
	require.EqualValues(t, 1, metrics.AuthEventCount("rejected_invalid"))
}

func TestAuthorizationGates(t *testing.T) {
	tm := auth.NewTokenManager(testSecret, time.Hour)
	app, _ := newTestApp(tm, newFakeBlacklist())

	userToken, _, err := tm.Generate("u1", "alice", domain.RoleUser)
	require.NoError(t, err)
	adminToken, _, err := tm.Generate("u2", "root", domain.RoleAdmin)
	require.NoError(t, err)

	cases := []struct {
		name   string
		path   string
		token  string
		status int
	}{
		{"protected without identity", "/protected", "", http.StatusUnauthorized},
		{"protected with identity", "/protected", userToken, http.StatusNoContent},
		{"admin as user", "/admin", userToken, http.StatusForbidden},
		{"admin as admin", "/admin", adminToken, http.StatusNoContent},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			resp.Body.Close()
			require.Equal(t, tc.status, resp.StatusCode)
		})
	}
}
