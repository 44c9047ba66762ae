package auth

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/ticket-tracker/pkg/util/errorutil"
)

const (
	principalKey = "auth_principal"
	// UserIDHeader carries the actor id when header identity is enabled.
	UserIDHeader = "User-Id"
)

// Principal represents the authenticated caller. TokenID is empty when the
// caller was identified by the User-Id header.
type Principal struct {
	UserID    int64
	TokenID   string
	ExpiresAt time.Time
}

// AuthMiddleware validates bearer tokens and resolves the actor id.
type AuthMiddleware struct {
	tokens            *TokenManager
	revoked           RevocationList
	allowUserIDHeader bool
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, revoked RevocationList, allowUserIDHeader bool) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, revoked: revoked, allowUserIDHeader: allowUserIDHeader}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		if m.allowUserIDHeader && c.Get(UserIDHeader) != "" {
			return m.handleUserIDHeader(c)
		}
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(strings.TrimSpace(parts[1]))
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	if m.revoked != nil {
		revoked, err := m.revoked.IsRevoked(c.UserContext(), claims.ID)
		if err != nil {
			return apperrors.NewInternalError(err)
		}
		if revoked {
			return apperrors.NewUnauthorized("token revoked")
		}
	}

	principal := &Principal{UserID: claims.UserID, TokenID: claims.ID}
	if claims.ExpiresAt != nil {
		principal.ExpiresAt = claims.ExpiresAt.Time
	}
	c.Locals(principalKey, principal)
	return c.Next()
}

func (m *AuthMiddleware) handleUserIDHeader(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Get(UserIDHeader)), 10, 64)
	if err != nil || id <= 0 {
		return apperrors.NewUnauthorized("invalid User-Id header")
	}
	c.Locals(principalKey, &Principal{UserID: id})
	return c.Next()
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
