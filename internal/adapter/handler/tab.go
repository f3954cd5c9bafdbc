package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/inkline-team/inkline/errors"
	"github.com/inkline-team/inkline/internal/adapter/dto/tab"
	"github.com/inkline-team/inkline/internal/infrastructure/cache"
	"github.com/inkline-team/inkline/pkg/tabtoken"
)

// Tab handles tab identity HTTP requests
type Tab struct {
	tokens   *tabtoken.Manager
	registry *cache.MemoryStore
	expiry   time.Duration
}

// NewTab creates a new tab handler
func NewTab(tokens *tabtoken.Manager, registry *cache.MemoryStore, expiry time.Duration) *Tab {
	return &Tab{
		tokens:   tokens,
		registry: registry,
		expiry:   expiry,
	}
}

// Register issues a fresh tab identity and token
// POST /v1/tabs
func (h *Tab) Register(c echo.Context) error {
	tabID := tabtoken.NewTabID()

	token, err := h.tokens.Issue(tabID)
	if err != nil {
		return RespondError(c, errors.ErrInternal(err))
	}

	// Track issued tabs for the lifetime of their token
	h.registry.Set("tab:"+tabID, time.Now().UTC().Format(time.RFC3339), h.expiry)

	return c.JSON(http.StatusCreated, tab.RegisterTabResponse{
		TabID:     tabID,
		Token:     token,
		ExpiresIn: int64(h.expiry.Seconds()),
	})
}
