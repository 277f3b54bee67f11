package utils

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"lab-booking/types"
)

// maxLoggedBody caps persisted body sizes.
const maxLoggedBody = 8 * 1024

// CreateSanitizedLogEntry creates a deep copied and sanitized log entry for
// the async request logger. Bodies of credential-carrying endpoints are
// redacted, oversized bodies truncated.
func CreateSanitizedLogEntry(c *fiber.Ctx) types.LogEntry {
	method := string([]byte(c.Method()))
	url := string([]byte(c.OriginalURL()))

	requestBody := sanitizeBody(url, c.Body())
	responseBody := truncateBody(string(append([]byte(nil), c.Response().Body()...)))

	requestHeaders := make([]byte, len(c.Request().Header.Header()))
	copy(requestHeaders, c.Request().Header.Header())

	responseHeaders := make([]byte, len(c.Response().Header.Header()))
	copy(responseHeaders, c.Response().Header.Header())

	return types.LogEntry{
		Method:          method,
		URL:             url,
		RequestBody:     requestBody,
		ResponseBody:    responseBody,
		RequestHeaders:  string(requestHeaders),
		ResponseHeaders: string(responseHeaders),
		StatusCode:      c.Response().StatusCode(),
		CreatedAt:       time.Now(),
	}
}

func sanitizeBody(url string, body []byte) string {
	if strings.Contains(url, "/login") || strings.Contains(url, "/register") {
		return "[redacted]"
	}
	return truncateBody(string(append([]byte(nil), body...)))
}

func truncateBody(body string) string {
	if len(body) > maxLoggedBody {
		return body[:maxLoggedBody] + "...[truncated]"
	}
	return body
}
