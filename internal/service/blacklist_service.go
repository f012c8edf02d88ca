package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/user-service/internal/auth"
	"github.com/spec-kit/user-service/internal/repository"
)

// TokenBlacklistService wraps the revocation store with the TTL policy:
// blacklist entries live exactly as long as the token they suppress, so the
// store never accumulates entries for naturally expired tokens.
type TokenBlacklistService struct {
	repo       repository.TokenBlacklistRepository
	tokens     *auth.TokenManager
	defaultTTL time.Duration
	failOpen   bool
	logger     *zap.Logger
}

// NewTokenBlacklistService builds the service. defaultTTL bounds entries for
// tokens whose remaining lifetime cannot be computed; failOpen selects the
// policy applied when the store is unreachable.
func NewTokenBlacklistService(repo repository.TokenBlacklistRepository, tokens *auth.TokenManager, defaultTTL time.Duration, failOpen bool, logger *zap.Logger) *TokenBlacklistService {
	if defaultTTL <= 0 {
		defaultTTL = 24 * time.Hour
	}
	return &TokenBlacklistService{
		repo:       repo,
		tokens:     tokens,
		defaultTTL: defaultTTL,
		failOpen:   failOpen,
		logger:     logger,
	}
}

// Blacklist revokes the token for its remaining natural lifetime. An already
// expired token is a safe no-op; a token whose expiry cannot be read is still
// revoked, bounded by the default TTL.
func (s *TokenBlacklistService) Blacklist(ctx context.Context, token string) error {
	// RemainingLifetime skips claims validation, so an expired token comes
	// back as a negative duration rather than an error.
	remaining, err := s.tokens.RemainingLifetime(token)
	if err != nil {
		s.logger.Warn("cannot read token expiry, blacklisting with default TTL", zap.Error(err))
		return s.repo.Put(ctx, token, s.defaultTTL)
	}

	if remaining <= 0 {
		s.logger.Debug("token already expired, skipping blacklist")
		return nil
	}

	s.logger.Debug("token blacklisted", zap.Duration("ttl", remaining))
	return s.repo.Put(ctx, token, remaining)
}

// IsBlacklisted reports whether the token has been revoked. On store failure
// it applies the configured fail-open or fail-closed policy instead of
// propagating the error into the request path.
func (s *TokenBlacklistService) IsBlacklisted(ctx context.Context, token string) bool {
	found, err := s.repo.Contains(ctx, token)
	if err != nil {
		s.logger.Error("blacklist store unavailable", zap.Error(err), zap.Bool("fail_open", s.failOpen))
		return !s.failOpen
	}
	return found
}

// Remove reinstates a token early. Intended for tests and administration.
func (s *TokenBlacklistService) Remove(ctx context.Context, token string) error {
	return s.repo.Remove(ctx, token)
}

// Size reports the number of live blacklist entries, for monitoring.
func (s *TokenBlacklistService) Size(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// Clear drops every blacklist entry.
func (s *TokenBlacklistService) Clear(ctx context.Context) error {
	return s.repo.Clear(ctx)
}
