// Package bootstrap creates the configured default accounts.
package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-tracker/internal/config"
	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/service"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util/errorutil"
)

// UserCreator is the part of the auth service seeding needs.
type UserCreator interface {
	CreateUser(ctx context.Context, input service.CreateUserInput) (*domain.User, error)
}

// SeedUsers creates every seed account that does not exist yet. Existing
// usernames are left untouched, so running it twice is harmless. It
// returns the number of accounts created.
func SeedUsers(ctx context.Context, users UserCreator, seeds []config.SeedUser, logger *zap.Logger) (int, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	created := 0
	for _, seed := range seeds {
		user, err := users.CreateUser(ctx, service.CreateUserInput{
			Username: seed.Username,
			Password: seed.Password,
			Role:     domain.Role(seed.Role),
		})
		if err != nil {
			if apperrors.HasCode(err, apperrors.CodeConflict) {
				logger.Debug("seed user exists", zap.String("username", seed.Username))
				continue
			}
			return created, fmt.Errorf("seed user %s: %w", seed.Username, err)
		}
		created++
		logger.Info("seed user created", zap.String("username", user.Username), zap.String("role", string(user.Role)))
	}
	return created, nil
}
