package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/user-service/internal/auth"
	"github.com/spec-kit/user-service/internal/domain"
)

type fakeBlacklist struct {
	revoked map[string]bool
}

func newFakeBlacklist() *fakeBlacklist {
	return &fakeBlacklist{revoked: make(map[string]bool)}
}

func (f *fakeBlacklist) IsBlacklisted(_ context.Context, token string) bool {
	return f.revoked[token]
}

func TestValidateSuccess(t *testing.T) {
	tm := auth.NewTokenManager(testSecret, time.Hour)
	token, _, err := tm.Generate("u1", "alice", domain.RoleUser)
	require.NoError(t, err)

	validator := auth.NewValidator(tm, newFakeBlacklist())

	identity, err := validator.Validate(context.Background(), token, "alice")
	require.NoError(t, err)
	require.Equal(t, "u1", identity.UserID)
	require.Equal(t, "alice", identity.Username)
	require.Equal(t, domain.RoleUser, identity.Role)
}

func TestValidateWithoutExpectedName(t *testing.T) {
	tm := auth.NewTokenManager(testSecret, time.Hour)
	token, _, err := tm.Generate("u1", "alice", domain.RoleUser)
	require.NoError(t, err)

	validator := auth.NewValidator(tm, newFakeBlacklist())

	identity, err := validator.Validate(context.Background(), token, "")
	require.NoError(t, err)
	require.Equal(t, "alice", identity.Username)
}

func TestValidateRevokedBeforeDecode(t *testing.T) {
	tm := auth.NewTokenManager(testSecret, time.Hour)
	token, _, err := tm.Generate("u1", "alice", domain.RoleUser)
	require.NoError(t, err)

	blacklist := newFakeBlacklist()
	blacklist.revoked[token] = true
	validator := auth.NewValidator(tm, blacklist)

	_, err = validator.Validate(context.Background(), token, "alice")
	require.ErrorIs(t, err, auth.ErrTokenRevoked)

	// A revoked token that would not even decode is still reported as
	// revoked: the store check comes first.
	blacklist.revoked["garbage"] = true
	_, err = validator.Validate(context.Background(), "garbage", "")
	require.ErrorIs(t, err, auth.ErrTokenRevoked)
}

func TestValidateSubjectMismatch(t *testing.T) {
	tm := auth.NewTokenManager(testSecret, time.Hour)
	token, _, err := tm.Generate("u1", "alice", domain.RoleUser)
	require.NoError(t, err)

	validator := auth.NewValidator(tm, newFakeBlacklist())

	_, err = validator.Validate(context.Background(), token, "mallory")
	require.ErrorIs(t, err, auth.ErrSubjectMismatch)
}

func TestValidatePropagatesCodecErrors(t *testing.T) {
	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	issuer := auth.NewTokenManager(testSecret, time.Hour, auth.WithClock(fixedClock(issuedAt)))
	token, _, err := issuer.Generate("u1", "alice", domain.RoleUser)
	require.NoError(t, err)

	expired := auth.NewTokenManager(testSecret, time.Hour, auth.WithClock(fixedClock(issuedAt.Add(2*time.Hour))))
	validator := auth.NewValidator(expired, newFakeBlacklist())
	_, err = validator.Validate(context.Background(), token, "alice")
	require.ErrorIs(t, err, auth.ErrTokenExpired)

	_, err = validator.Validate(context.Background(), "garbage", "")
	require.ErrorIs(t, err, auth.ErrTokenMalformed)
}
