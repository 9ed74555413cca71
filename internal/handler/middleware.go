package handler

import (
	"log/slog"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fieldwork/jobboard/internal/domain"
	"github.com/fieldwork/jobboard/internal/service"
)

const contextKeyUser = "current_user"

// RequestLogger logs each HTTP request with structured fields.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			slog.Info("http request",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", c.Response().Status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
			)

			return err
		}
	}
}

// JWTAuth validates the Bearer token, loads the authenticated user, and
// injects it into echo context. Lifecycle operations record the acceptor's
// email and display name, so the full user record is resolved up front.
func JWTAuth(auth *service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return domain.ErrUnauthorized
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				return domain.ErrUnauthorized
			}

			userID, err := auth.ValidateToken(parts[1])
			if err != nil {
				return domain.ErrUnauthorized
			}

			user, err := auth.GetUser(c.Request().Context(), userID)
			if err != nil {
				return domain.ErrUnauthorized
			}

			c.Set(contextKeyUser, user)
			return next(c)
		}
	}
}

// CurrentUser extracts the authenticated user from echo context.
func CurrentUser(c echo.Context) (*domain.User, bool) {
	user, ok := c.Get(contextKeyUser).(*domain.User)
	return user, ok
}
