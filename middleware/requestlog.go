package middleware

import (
	"github.com/gofiber/fiber/v2"

	"lab-booking/logger"
	"lab-booking/utils"
)

// RequestLogger snapshots every request/response pair into the async
// logger after the handler chain has run.
func RequestLogger(asyncLogger *logger.AsyncLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		asyncLogger.Log(utils.CreateSanitizedLogEntry(c))
		return err
	}
}
