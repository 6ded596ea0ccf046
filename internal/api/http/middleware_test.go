package http

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestTimeoutReachesHandlerContext(t *testing.T) {
	app := fiber.New()
	app.Use(requestTimeoutMiddleware(30 * time.Millisecond))

	app.Get("/slow", func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		if _, ok := ctx.Deadline(); !ok {
			return c.Status(fiber.StatusInternalServerError).SendString("no deadline")
		}
		select {
		case <-ctx.Done():
			return c.SendString("cancelled")
		case <-time.After(2 * time.Second):
			return c.Status(fiber.StatusInternalServerError).SendString("context never expired")
		}
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/slow", nil), 1000)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, "cancelled", string(body))
}
