package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

const WebhookSecretHeader = "X-Webhook-Secret"

// WebhookSecret rejects requests whose shared secret header does not match.
// An empty secret disables the check for local development.
func WebhookSecret(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if secret == "" {
			return c.Next()
		}
		got := c.Get(WebhookSecretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid webhook secret",
			})
		}
		return c.Next()
	}
}
