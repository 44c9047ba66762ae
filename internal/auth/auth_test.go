package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-tracker/internal/auth"
	"github.com/spec-kit/ticket-tracker/internal/authz"
	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/repository"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util/errorutil"
)

const testSecret = "test-secret-key-for-unit-tests"

type stubUsers map[int64]domain.User

func (s stubUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := s[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func errorStatus(c *fiber.Ctx, err error) error {
	de := apperrors.ToDomainError(err)
	return c.Status(de.HTTPStatus).JSON(fiber.Map{"code": de.Code})
}

func buildApp(mw *auth.AuthMiddleware, extra ...fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: errorStatus})
	handlers := append([]fiber.Handler{mw.Handle}, extra...)
	handlers = append(handlers, func(c *fiber.Ctx) error {
		p, _ := auth.PrincipalFromContext(c)
		return c.SendString(strconv.FormatInt(p.UserID, 10))
	})
	app.Get("/protected", handlers...)
	return app
}

func get(t *testing.T, app *fiber.App, headers map[string]string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := auth.NewTokenManager(testSecret, time.Hour)
	issued, err := tm.GenerateToken(domain.User{ID: 7, Role: domain.RoleITSupport})
	require.NoError(t, err)
	assert.NotEmpty(t, issued.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), issued.ExpiresAt, time.Minute)

	claims, err := tm.ParseToken(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, domain.RoleITSupport, claims.Role)
	assert.Equal(t, issued.ID, claims.ID)
}

func TestTokenManager_RejectsForeignSignature(t *testing.T) {
	issued, err := auth.NewTokenManager("other-secret", time.Hour).GenerateToken(domain.User{ID: 1})
	require.NoError(t, err)

	_, err = auth.NewTokenManager(testSecret, time.Hour).ParseToken(issued.Token)
	require.Error(t, err)
}

func TestPasswordHasher_HashAndMatch(t *testing.T) {
	hasher := auth.NewPasswordHasher(4)
	hash, err := hasher.Hash("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	ok, err := hasher.Matches(hash, "s3cret")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = hasher.Matches(hash, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = hasher.Matches("not-a-hash", "s3cret")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestMiddleware_BearerToken(t *testing.T) {
	tm := auth.NewTokenManager(testSecret, time.Hour)
	app := buildApp(auth.NewAuthMiddleware(tm, auth.NewMemoryRevocationList(), false))
	issued, err := tm.GenerateToken(domain.User{ID: 5})
	require.NoError(t, err)

	resp := get(t, app, map[string]string{"Authorization": "Bearer " + issued.Token})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = get(t, app, map[string]string{"Authorization": "Bearer garbage"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = get(t, app, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMiddleware_RevokedTokenRejected(t *testing.T) {
	tm := auth.NewTokenManager(testSecret, time.Hour)
	revoked := auth.NewMemoryRevocationList()
	app := buildApp(auth.NewAuthMiddleware(tm, revoked, false))
	issued, err := tm.GenerateToken(domain.User{ID: 5})
	require.NoError(t, err)

	require.NoError(t, revoked.Revoke(context.Background(), issued.ID, issued.ExpiresAt))

	resp := get(t, app, map[string]string{"Authorization": "Bearer " + issued.Token})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMiddleware_UserIDHeaderOnlyWhenEnabled(t *testing.T) {
	tm := auth.NewTokenManager(testSecret, time.Hour)

	disabled := buildApp(auth.NewAuthMiddleware(tm, nil, false))
	resp := get(t, disabled, map[string]string{auth.UserIDHeader: "3"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	enabled := buildApp(auth.NewAuthMiddleware(tm, nil, true))
	resp = get(t, enabled, map[string]string{auth.UserIDHeader: "3"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = get(t, enabled, map[string]string{auth.UserIDHeader: "abc"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRequireOperation(t *testing.T) {
	tm := auth.NewTokenManager(testSecret, time.Hour)
	users := stubUsers{
		1: {ID: 1, Role: domain.RoleEmployee},
		2: {ID: 2, Role: domain.RoleITSupport},
	}
	app := buildApp(auth.NewAuthMiddleware(tm, nil, true), auth.RequireOperation(authz.OpManageUsers, users))

	assert.Equal(t, http.StatusOK, get(t, app, map[string]string{auth.UserIDHeader: "2"}).StatusCode)
	assert.Equal(t, http.StatusForbidden, get(t, app, map[string]string{auth.UserIDHeader: "1"}).StatusCode)
	assert.Equal(t, http.StatusNotFound, get(t, app, map[string]string{auth.UserIDHeader: "9"}).StatusCode)
}

func TestMemoryRevocationList_IgnoresExpired(t *testing.T) {
	list := auth.NewMemoryRevocationList()
	ctx := context.Background()
	require.NoError(t, list.Revoke(ctx, "old", time.Now().Add(-time.Minute)))
	require.NoError(t, list.Revoke(ctx, "live", time.Now().Add(time.Minute)))

	revoked, err := list.IsRevoked(ctx, "old")
	require.NoError(t, err)
	assert.False(t, revoked)

	revoked, err = list.IsRevoked(ctx, "live")
	require.NoError(t, err)
	assert.True(t, revoked)
}
