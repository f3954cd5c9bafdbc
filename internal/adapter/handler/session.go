package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/inkline-team/inkline/errors"
	sessionDto "github.com/inkline-team/inkline/internal/adapter/dto/session"
	"github.com/inkline-team/inkline/internal/domain/entities"
	"github.com/inkline-team/inkline/internal/usecase/session"
)

// Session handles session record and ownership HTTP requests. These routes
// serve clients that manage their own playback loop; the websocket channel
// drives the same service for live playback.
type Session struct {
	service *session.Service
}

// NewSession creates a new session handler
func NewSession(service *session.Service) *Session {
	return &Session{
		service: service,
	}
}

// Ownership classifies entering a lesson against the shared pointer. A free
// lesson answers 200; another tab's claim answers 409 with the owner and the
// claim's age so the client can offer claim-or-abandon.
// GET /v1/lessons/:id/ownership
func (h *Session) Ownership(c echo.Context) error {
	ctx := c.Request().Context()
	lessonID := c.Param("id")
	tabID := TabID(c)

	conflict, err := h.service.CheckOwnership(ctx, lessonID, tabID)
	if err != nil {
		return RespondError(c, err)
	}

	if conflict != session.ConflictNone {
		ownerTabID := ""
		age := 0.0
		if ptr, err := h.service.Pointer(ctx); err == nil && ptr != nil {
			ownerTabID = ptr.TabID
			age = ptr.Age(time.Now()).Seconds()
		}
		appErr := errors.ErrSessionConflictActive(ownerTabID)
		if conflict == session.ConflictStale {
			appErr = errors.ErrSessionConflictStale(ownerTabID)
		}
		return RespondError(c, appErr.WithDetail("age_seconds",
			strconv.FormatFloat(age, 'f', 0, 64)))
	}

	return c.JSON(http.StatusOK, sessionDto.OwnershipResponse{
		Conflict: string(conflict),
	})
}

// Claim takes ownership of a lesson for this tab
// POST /v1/lessons/:id/session/claim
func (h *Session) Claim(c echo.Context) error {
	ctx := c.Request().Context()
	lessonID := c.Param("id")
	tabID := TabID(c)

	if err := h.service.Claim(ctx, lessonID, tabID); err != nil {
		return RespondError(c, errors.ErrStorageUnavailable(err))
	}

	record := h.service.Hydrate(ctx, lessonID)
	return c.JSON(http.StatusOK, sessionDto.FromRecord(record))
}

// Abandon declines to enter a lesson after a conflict. The other tab's
// pointer and record stay untouched; this is an acknowledgement, not a
// storage operation.
// POST /v1/lessons/:id/session/abandon
func (h *Session) Abandon(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": string(session.StatusAbandoned),
	})
}

// Get hydrates the saved session record for a lesson. A lesson without a
// record yields defaults, not a 404: resuming and starting fresh are the
// same operation to the client.
// GET /v1/lessons/:id/session
func (h *Session) Get(c echo.Context) error {
	ctx := c.Request().Context()
	lessonID := c.Param("id")

	record := h.service.Hydrate(ctx, lessonID)
	return c.JSON(http.StatusOK, sessionDto.FromRecord(record))
}

// Save persists a full session snapshot
// PUT /v1/lessons/:id/session
func (h *Session) Save(c echo.Context) error {
	ctx := c.Request().Context()
	lessonID := c.Param("id")

	var req sessionDto.SaveSessionRequest
	if err := c.Bind(&req); err != nil {
		return RespondError(c, errors.ErrInvalidArgument("Invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return RespondError(c, errors.ErrInvalidArgument(err.Error()))
	}

	snap := entities.SessionSnapshot{
		PlaybackPosition:    req.PlaybackPosition,
		AnnotationLines:     req.AnnotationLines,
		LayerVisibility:     req.LayerVisibility,
		TranscriptPanelOpen: req.TranscriptPanelOpen,
	}
	if snap.AnnotationLines == nil {
		snap.AnnotationLines = []entities.AnnotationLine{}
	}

	if err := h.service.Persist(ctx, lessonID, snap); err != nil {
		return RespondError(c, errors.ErrStorageUnavailable(err))
	}

	return c.NoContent(http.StatusNoContent)
}

// Clear deletes the lesson's saved session ("start new material")
// DELETE /v1/lessons/:id/session
func (h *Session) Clear(c echo.Context) error {
	ctx := c.Request().Context()
	lessonID := c.Param("id")

	if err := h.service.Clear(ctx, lessonID); err != nil {
		return RespondError(c, errors.ErrStorageUnavailable(err))
	}

	return c.NoContent(http.StatusNoContent)
}
