package auth

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-tracker/internal/authz"
	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/repository"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util/errorutil"
)

// UserLookup resolves actors by id.
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// RequireOperation loads the caller and rejects the request unless the
// policy allows op. Must run after AuthMiddleware.Handle.
func RequireOperation(op authz.Operation, users UserLookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		actor, err := users.GetByID(c.UserContext(), principal.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.NewNotFound("user", map[string]any{"id": principal.UserID})
			}
			return apperrors.NewInternalError(err)
		}
		if decision := authz.Decide(*actor, op, nil); !decision.Allowed {
			return apperrors.NewForbidden(decision.Reason)
		}
		return c.Next()
	}
}
