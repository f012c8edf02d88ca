package auth

import (
	"context"
	"errors"

	"github.com/spec-kit/user-service/internal/domain"
)

// Validation failures beyond the codec's own taxonomy.
var (
	ErrTokenRevoked    = errors.New("token revoked")
	ErrSubjectMismatch = errors.New("token subject mismatch")
)

// Identity is the authenticated principal extracted from a valid token.
type Identity struct {
	UserID   string
	Username string
	Role     domain.UserRole
}

// BlacklistChecker answers whether a token has been revoked. The store error
// policy (fail open or closed) is applied behind this interface.
type BlacklistChecker interface {
	IsBlacklisted(ctx context.Context, token string) bool
}

// Validator decides whether a presented token is currently usable.
type Validator struct {
	tokens    *TokenManager
	blacklist BlacklistChecker
}

// NewValidator builds a validator over the codec and the revocation store.
func NewValidator(tokens *TokenManager, blacklist BlacklistChecker) *Validator {
	return &Validator{tokens: tokens, blacklist: blacklist}
}

// Validate checks revocation before decoding so a revoked token is rejected
// without paying for signature verification. When expectedName is non-empty
// the decoded subject must match it.
func (v *Validator) Validate(ctx context.Context, tokenStr, expectedName string) (*Identity, error) {
	if v.blacklist.IsBlacklisted(ctx, tokenStr) {
		return nil, ErrTokenRevoked
	}

	claims, err := v.tokens.Parse(tokenStr)
	if err != nil {
		return nil, err
	}

	if expectedName != "" && claims.Username != expectedName {
		return nil, ErrSubjectMismatch
	}

	return &Identity{
		UserID:   claims.UserID,
		Username: claims.Username,
		Role:     claims.Role,
	}, nil
}
