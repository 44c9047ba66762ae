package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-tracker/internal/auth"
	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/events"
	"github.com/spec-kit/ticket-tracker/internal/repository"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util/errorutil"
)

const invalidCredentialsMessage = "invalid username or password"

// AuthService coordinates accounts, login and logout.
type AuthService struct {
	store      repository.Store
	tokens     *auth.TokenManager
	revoked    auth.RevocationList
	dispatcher events.Dispatcher
	passwords  auth.PasswordHasher
	logger     *zap.Logger
	now        func() time.Time
}

// AuthDependencies bundles collaborators for the auth service.
type AuthDependencies struct {
	Store       repository.Store
	Tokens      *auth.TokenManager
	Revocations auth.RevocationList
	Dispatcher  events.Dispatcher
	BcryptCost  int
	Logger      *zap.Logger
}

// CreateUserInput describes a new account.
type CreateUserInput struct {
	Username string
	Password string
	Role     domain.Role
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		store:      deps.Store,
		tokens:     deps.Tokens,
		revoked:    deps.Revocations,
		dispatcher: deps.Dispatcher,
		passwords:  auth.NewPasswordHasher(deps.BcryptCost),
		logger:     logger,
		now:        time.Now,
	}
}

// Authenticate verifies credentials. Unknown users and wrong passwords fail
// with the same error.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.store.Repositories().Users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorized(invalidCredentialsMessage)
		}
		return nil, apperrors.NewInternalError(err)
	}
	ok, err := s.passwords.Matches(user.PasswordHash, password)
	if err != nil {
		s.logger.Warn("stored password hash unreadable", zap.Int64("user_id", user.ID), zap.Error(err))
	}
	if !ok {
		return nil, apperrors.NewUnauthorized(invalidCredentialsMessage)
	}
	return user, nil
}

// Login authenticates and issues an access token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, auth.IssuedToken, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, auth.IssuedToken{}, err
	}
	issued, err := s.tokens.GenerateToken(*user)
	if err != nil {
		return nil, auth.IssuedToken{}, apperrors.NewInternalError(err)
	}
	s.logger.Info("user logged in", zap.Int64("user_id", user.ID))
	return user, issued, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return apperrors.NewUnauthorized("logout requires a bearer token")
	}
	if s.revoked == nil {
		return nil
	}
	if err := s.revoked.Revoke(ctx, tokenID, expiresAt); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

// CreateUser registers an account. Role defaults to EMPLOYEE.
func (s *AuthService) CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	username := strings.TrimSpace(input.Username)
	role := domain.Role(strings.ToUpper(strings.TrimSpace(string(input.Role))))
	if role == "" {
		role = domain.RoleEmployee
	}

	var invalid []string
	if username == "" {
		invalid = append(invalid, "username")
	}
	if input.Password == "" || len(input.Password) > auth.MaxPasswordBytes {
		invalid = append(invalid, "password")
	}
	if !role.Valid() {
		invalid = append(invalid, "role")
	}
	if len(invalid) > 0 {
		return nil, apperrors.NewValidationError("invalid user data", map[string]any{"fields": invalid})
	}

	users := s.store.Repositories().Users
	if _, err := users.GetByUsername(ctx, username); err == nil {
		return nil, usernameTaken(username)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewInternalError(err)
	}

	hash, err := s.passwords.Hash(input.Password)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    s.now().UTC(),
	}
	if err := users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, usernameTaken(username)
		}
		return nil, apperrors.NewInternalError(err)
	}

	s.logger.Info("user created", zap.Int64("user_id", user.ID), zap.String("role", string(user.Role)))
	s.publishEvent(ctx, events.Event{
		Type:    events.EventUserCreated,
		Actor:   events.ActorFrom(*user),
		Payload: events.UserPayload{UserID: user.ID, Username: user.Username, Role: user.Role},
	})
	return user, nil
}

// DeleteUser removes an account. Users still referenced by tickets,
// comments or audit entries cannot be deleted.
func (s *AuthService) DeleteUser(ctx context.Context, id int64) error {
	users := s.store.Repositories().Users
	user, err := users.GetByID(ctx, id)
	if err != nil {
		return userLookupError(err, id)
	}
	if err := users.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return userLookupError(err, id)
		case errors.Is(err, repository.ErrReferenced):
			return apperrors.NewConflict("user is still referenced by tickets", map[string]any{"id": id})
		default:
			return apperrors.NewInternalError(err)
		}
	}

	s.logger.Info("user deleted", zap.Int64("user_id", id))
	s.publishEvent(ctx, events.Event{
		Type:    events.EventUserDeleted,
		Actor:   events.ActorFrom(*user),
		Payload: events.UserPayload{UserID: user.ID, Username: user.Username},
	})
	return nil
}

// GetUser fetches a user by id.
func (s *AuthService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.store.Repositories().Users.GetByID(ctx, id)
	if err != nil {
		return nil, userLookupError(err, id)
	}
	return user, nil
}

// ListUsers returns every account ordered by id.
func (s *AuthService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.store.Repositories().Users.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return users, nil
}

func (s *AuthService) publishEvent(ctx context.Context, event events.Event) {
	publish(ctx, s.dispatcher, s.logger, s.now, event)
}

func usernameTaken(username string) error {
	return apperrors.NewConflict("username already exists", map[string]any{"username": username})
}

func userLookupError(err error, id int64) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound("user", map[string]any{"id": id})
	}
	return apperrors.NewInternalError(err)
}

// publish stamps and dispatches an event. Handler failures are logged and
// never fail the operation that already committed.
func publish(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, now func() time.Time, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = now().UTC()
	}
	if err := dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("event handlers failed",
			zap.String("event_type", string(event.Type)),
			zap.String("event_id", event.ID),
			zap.Error(err))
	}
}
