package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/user-service/internal/auth"
	"github.com/spec-kit/user-service/internal/config"
	"github.com/spec-kit/user-service/internal/domain"
	"github.com/spec-kit/user-service/internal/events"
	"github.com/spec-kit/user-service/internal/repository"
	apperrors "github.com/spec-kit/user-service/pkg/util"
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

const minPasswordLength = 8

// UserService coordinates account and authentication flows.
type UserService struct {
	users      repository.UserRepository
	blacklist  *TokenBlacklistService
	tokenMgr   *auth.TokenManager
	dispatcher events.Dispatcher
	bcryptCost int
}

// UserDependencies encapsulates collaborator requirements for the service.
type UserDependencies struct {
	UserRepo   repository.UserRepository
	Blacklist  *TokenBlacklistService
	TokenMgr   *auth.TokenManager
	Dispatcher events.Dispatcher
}

// NewUserService builds the service.
func NewUserService(cfg config.Config, deps UserDependencies) *UserService {
	return &UserService{
		users:      deps.UserRepo,
		blacklist:  deps.Blacklist,
		tokenMgr:   deps.TokenMgr,
		dispatcher: deps.Dispatcher,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// SignUp registers a new account and issues its first token.
func (s *UserService) SignUp(ctx context.Context, name, email, password string, role domain.UserRole) (*domain.User, *domain.Token, error) {
	if err := validateEmail(email); err != nil {
		return nil, nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, nil, err
	}
	if role == "" {
		role = domain.RoleUser
	}
	if !role.Valid() {
		return nil, nil, apperrors.NewValidationError("unknown role", map[string]any{"role": role})
	}

	if exists, err := s.users.ExistsByEmail(ctx, email); err != nil {
		return nil, nil, err
	} else if exists {
		return nil, nil, apperrors.NewConflict("email already registered", nil)
	}
	if exists, err := s.users.ExistsByName(ctx, name); err != nil {
		return nil, nil, err
	} else if exists {
		return nil, nil, apperrors.NewConflict("name already taken", map[string]any{"name": name})
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, nil, err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, nil, err
	}

	s.publish(ctx, events.EventUserRegistered, user.ID, events.UserRegisteredPayload{
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	})
	return user, token, nil
}

// Login authenticates by name and password and issues a fresh token.
func (s *UserService) Login(ctx context.Context, name, password string) (*domain.User, *domain.Token, error) {
	user, err := s.users.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewNotFound("user", map[string]any{"name": name})
		}
		return nil, nil, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, nil, apperrors.NewUnauthorized("invalid username or password")
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, nil, err
	}

	s.publish(ctx, events.EventUserLoggedIn, user.ID, nil)
	return user, token, nil
}

// Logout revokes the presented token for its remaining lifetime.
func (s *UserService) Logout(ctx context.Context, userID, token string) error {
	if err := s.blacklist.Blacklist(ctx, token); err != nil {
		return err
	}
	s.publish(ctx, events.EventUserLoggedOut, userID, nil)
	s.publish(ctx, events.EventTokenRevoked, userID, events.TokenRevokedPayload{Reason: "logout"})
	return nil
}

// ChangePassword verifies the current password, stores the new hash and
// revokes the caller's token so the old credential stops working immediately.
func (s *UserService) ChangePassword(ctx context.Context, userID, token, oldPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", nil)
		}
		return err
	}

	if err := auth.ComparePassword(user.PasswordHash, oldPassword); err != nil {
		return apperrors.NewUnauthorized("current password is incorrect")
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	if auth.ComparePassword(user.PasswordHash, newPassword) == nil {
		return apperrors.NewValidationError("new password must be different from current password", nil)
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	if err := s.blacklist.Blacklist(ctx, token); err != nil {
		return err
	}
	s.publish(ctx, events.EventUserPasswordChanged, user.ID, nil)
	s.publish(ctx, events.EventTokenRevoked, user.ID, events.TokenRevokedPayload{Reason: "password_change"})
	return nil
}

// ChangeName renames the account and issues a fresh token carrying the new
// name. Claims are immutable, so the old token keeps the stale name until it
// expires naturally.
func (s *UserService) ChangeName(ctx context.Context, userID, newName string) (*domain.User, *domain.Token, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewNotFound("user", nil)
		}
		return nil, nil, err
	}

	if user.Name == newName {
		return nil, nil, apperrors.NewValidationError("new name is the same as current name", nil)
	}
	if exists, err := s.users.ExistsByName(ctx, newName); err != nil {
		return nil, nil, err
	} else if exists {
		return nil, nil, apperrors.NewConflict("name already taken", map[string]any{"name": newName})
	}

	oldName := user.Name
	user.Name = newName
	if err := s.users.Update(ctx, user); err != nil {
		return nil, nil, err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, nil, err
	}

	s.publish(ctx, events.EventUserNameChanged, user.ID, events.NameChangedPayload{
		OldName: oldName,
		NewName: newName,
	})
	return user, token, nil
}

// DeleteUser revokes the caller's token and removes the account.
func (s *UserService) DeleteUser(ctx context.Context, userID, token string) error {
	if err := s.blacklist.Blacklist(ctx, token); err != nil {
		return err
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", nil)
		}
		return err
	}

	s.publish(ctx, events.EventUserDeleted, userID, nil)
	s.publish(ctx, events.EventTokenRevoked, userID, events.TokenRevokedPayload{Reason: "account_deletion"})
	return nil
}

// GetUserRole returns the role recorded for the named account.
func (s *UserService) GetUserRole(ctx context.Context, name string) (domain.UserRole, error) {
	user, err := s.users.GetByName(ctx, strings.TrimSpace(name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.NewNotFound("user", map[string]any{"name": name})
		}
		return "", err
	}
	return user.Role, nil
}

// GetUserByID fetches an account by its identifier.
func (s *UserService) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return nil, err
	}
	return user, nil
}

// ListUsers returns every account.
func (s *UserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.users.List(ctx)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *UserService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *UserService) issueToken(user *domain.User) (*domain.Token, error) {
	value, expiresAt, err := s.tokenMgr.Generate(user.ID, user.Name, user.Role)
	if err != nil {
		return nil, err
	}
	return &domain.Token{
		Value:     value,
		SubjectID: user.ID,
		Subject:   user.Name,
		Role:      user.Role,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *UserService) publish(ctx context.Context, eventType events.EventType, userID string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}

func validateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return apperrors.NewValidationError("email is required", nil)
	}
	if !emailPattern.MatchString(email) {
		return apperrors.NewValidationError("invalid email format", nil)
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return apperrors.NewValidationError("password must be at least 8 characters long", nil)
	}
	return nil
}
