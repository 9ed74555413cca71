package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fieldwork/jobboard/internal/domain"
)

// TokenWriter persists device push token registrations.
type TokenWriter interface {
	Save(ctx context.Context, userID int64, token string) error
	Remove(ctx context.Context, userID int64) error
}

// TokenHandler handles device push token registration.
type TokenHandler struct {
	tokens TokenWriter
}

// NewTokenHandler creates a new TokenHandler.
func NewTokenHandler(tokens TokenWriter) *TokenHandler {
	return &TokenHandler{tokens: tokens}
}

type registerTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

// Register saves the caller's device token, replacing any previous one.
func (h *TokenHandler) Register(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	var in registerTokenRequest
	if err := c.Bind(&in); err != nil {
		return domain.ErrInvalidInput
	}
	if err := c.Validate(&in); err != nil {
		return err
	}

	if err := h.tokens.Save(c.Request().Context(), user.ID, in.Token); err != nil {
		return err
	}
	return JSON(c, http.StatusOK, map[string]string{"status": "registered"})
}

// Deregister removes the caller's device token.
func (h *TokenHandler) Deregister(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	if err := h.tokens.Remove(c.Request().Context(), user.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
