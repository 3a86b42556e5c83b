package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader carries the request id on the wire, in both directions.
	RequestIDHeader = "X-Request-ID"
	// RequestIDLocalKey is where the id is stored in Fiber's context locals
	// for downstream handlers and the logger.
	RequestIDLocalKey = "request_id"
)

// RequestID makes sure every request has an id: an incoming X-Request-ID is
// propagated unchanged, otherwise a fresh UUID is assigned. The id is stored
// in the context locals and echoed on the response header, so one id
// correlates the client, server and log views of a single call.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Locals(RequestIDLocalKey, id)
		c.Set(RequestIDHeader, id)

		return c.Next()
	}
}
