package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/user-service/internal/domain"
	"github.com/spec-kit/user-service/internal/observability"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller. RawToken retains the
// presented credential so logout and similar flows can revoke exactly the
// token that authenticated the request.
type Principal struct {
	UserID   string
	Name     string
	Role     domain.UserRole
	RawToken string
}

// Middleware extracts and validates bearer tokens. It never rejects a request
// itself: on any failure the request proceeds anonymously and a separate
// authorization gate decides whether an identity is required.
type Middleware struct {
	validator *Validator
	logger    *zap.Logger
	metrics   *observability.Metrics
}

// NewMiddleware constructs the authentication middleware.
func NewMiddleware(validator *Validator, logger *zap.Logger, metrics *observability.Metrics) *Middleware {
	return &Middleware{validator: validator, logger: logger, metrics: metrics}
}

// Handle attaches a Principal to the request context when a usable bearer
// token is presented.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	tokenStr, ok := BearerToken(c)
	if !ok {
		return c.Next()
	}

	identity, err := m.validator.Validate(c.UserContext(), tokenStr, "")
	if err != nil {
		if errors.Is(err, ErrTokenRevoked) {
			m.logger.Warn("attempted use of revoked token")
			m.metrics.RecordAuthEvent("rejected_revoked")
		} else {
			m.logger.Debug("token rejected", zap.Error(err))
			m.metrics.RecordAuthEvent("rejected_invalid")
		}
		return c.Next()
	}

	c.Locals(principalKey, &Principal{
		UserID:   identity.UserID,
		Name:     identity.Username,
		Role:     identity.Role,
		RawToken: tokenStr,
	})
	m.metrics.RecordAuthEvent("accepted")
	return c.Next()
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
