package middleware

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret, subject, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

type adminSet map[uuid.UUID]bool

func (s adminSet) IsAdmin(_ context.Context, userID uuid.UUID) (bool, error) {
	if s == nil {
		return false, errors.New("database is down")
	}
	return s[userID], nil
}

func newApp(admins AdminChecker) *fiber.App {
	app := fiber.New()
	app.Get("/me", JWTAuth(testSecret), func(c *fiber.Ctx) error {
		return c.SendString(GetUserID(c).String())
	})
	app.Get("/admin", JWTAuth(testSecret), AdminAuth(admins), func(c *fiber.Ctx) error {
		return c.SendString(GetAdminID(c).String())
	})
	app.Post("/hook", WebhookSecret("hook-secret"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func get(t *testing.T, app *fiber.App, path, token string) int {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodGet, path, nil)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestJWTAuth(t *testing.T) {
	app := newApp(adminSet{})
	userID := uuid.New()

	require.Equal(t, fiber.StatusOK, get(t, app, "/me", signToken(t, testSecret, userID.String(), "")))
	require.Equal(t, fiber.StatusUnauthorized, get(t, app, "/me", ""))
	require.Equal(t, fiber.StatusUnauthorized, get(t, app, "/me", signToken(t, "other-secret", userID.String(), "")))
	require.Equal(t, fiber.StatusUnauthorized, get(t, app, "/me", signToken(t, testSecret, "not-a-uuid", "")))

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: userID.String()})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, get(t, app, "/me", unsigned))
}

func TestAdminAuth(t *testing.T) {
	listed := uuid.New()
	app := newApp(adminSet{listed: true})

	require.Equal(t, fiber.StatusOK, get(t, app, "/admin", signToken(t, testSecret, uuid.NewString(), RoleAdmin)))
	require.Equal(t, fiber.StatusOK, get(t, app, "/admin", signToken(t, testSecret, listed.String(), "")))
	require.Equal(t, fiber.StatusForbidden, get(t, app, "/admin", signToken(t, testSecret, uuid.NewString(), "")))

	broken := newApp(adminSet(nil))
	require.Equal(t, fiber.StatusInternalServerError, get(t, broken, "/admin", signToken(t, testSecret, uuid.NewString(), "")))
}

func TestWebhookSecret(t *testing.T) {
	app := newApp(adminSet{})

	post := func(secret string) int {
		req := httptest.NewRequest(fiber.MethodPost, "/hook", nil)
		if secret != "" {
			req.Header.Set(WebhookSecretHeader, secret)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	require.Equal(t, fiber.StatusNoContent, post("hook-secret"))
	require.Equal(t, fiber.StatusUnauthorized, post("wrong"))
	require.Equal(t, fiber.StatusUnauthorized, post(""))

	open := fiber.New()
	open.Post("/hook", WebhookSecret(""), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	resp, err := open.Test(httptest.NewRequest(fiber.MethodPost, "/hook", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}
