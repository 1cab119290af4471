package handler

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"bulkdelete/internal/sandbox/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	headerRequestID = echo.HeaderXRequestID
	HeaderAPIKey    = "X-API-KEY"
)

type requestContext interface {
	Response() *echo.Response
	JSON(code int, i interface{}) error
}

func RequestIDMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		reqID := c.Request().Header.Get(echo.HeaderXRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Response().Header().Set(echo.HeaderXRequestID, reqID)
		return next(c)
	}
}

// AuthMiddleware accepts a request only when it carries both the API key
// and the bearer token the sandbox was started with.
func AuthMiddleware(apiKey, bearerToken string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.Request().Header.Get(HeaderAPIKey)
			token, ok := bearer(c.Request().Header.Get(echo.HeaderAuthorization))

			if !ok || !secureEqual(key, apiKey) || !secureEqual(token, bearerToken) {
				status, body := httpError(service.ErrUnauthorized)
				return respondError(c, status, body)
			}
			return next(c)
		}
	}
}

func bearer(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

func secureEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
