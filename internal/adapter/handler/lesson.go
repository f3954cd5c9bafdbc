package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/inkline-team/inkline/errors"
	"github.com/inkline-team/inkline/internal/adapter/dto/common"
	lessonDto "github.com/inkline-team/inkline/internal/adapter/dto/lesson"
	"github.com/inkline-team/inkline/internal/domain/entities"
	"github.com/inkline-team/inkline/internal/usecase/lesson"
	"github.com/inkline-team/inkline/internal/usecase/schedule"
	"github.com/inkline-team/inkline/pkg/geometry"
)

// Lesson handles lesson HTTP requests
type Lesson struct {
	service *lesson.Service
}

// NewLesson creates a new lesson handler
func NewLesson(service *lesson.Service) *Lesson {
	return &Lesson{
		service: service,
	}
}

// Ingest stores a validated lesson manifest
// POST /v1/lessons
func (h *Lesson) Ingest(c echo.Context) error {
	ctx := c.Request().Context()

	var req lessonDto.IngestLessonRequest
	if err := c.Bind(&req); err != nil {
		return RespondError(c, errors.ErrInvalidArgument("Invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return RespondError(c, errors.ErrInvalidArgument(err.Error()))
	}

	stored, err := h.service.Ingest(ctx, lesson.IngestInput{
		Title:          req.Title,
		Manifest:       req.Manifest,
		AudioObjectKey: req.AudioObjectKey,
	})
	if err != nil {
		return RespondError(c, errors.ErrInvalidManifest(err))
	}

	return c.JSON(http.StatusCreated, lessonDto.FromEntity(stored, false))
}

// List returns stored lessons, newest first
// GET /v1/lessons
func (h *Lesson) List(c echo.Context) error {
	ctx := c.Request().Context()

	req := lessonDto.ListLessonsRequest{Page: 1, PageSize: 20}
	if err := c.Bind(&req); err != nil {
		return RespondError(c, errors.ErrInvalidArgument("Invalid query parameters"))
	}
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 || req.PageSize > 100 {
		req.PageSize = 20
	}

	lessons, err := h.service.List(ctx, req.PageSize, (req.Page-1)*req.PageSize)
	if err != nil {
		return RespondError(c, err)
	}

	items := make([]lessonDto.LessonResponse, 0, len(lessons))
	for _, l := range lessons {
		items = append(items, lessonDto.FromEntity(l, false))
	}

	return c.JSON(http.StatusOK, common.ListResponse{
		Data:     items,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
}

// Get returns everything the player needs to start a lesson
// GET /v1/lessons/:id
func (h *Lesson) Get(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return RespondError(c, errors.ErrInvalidArgument("Invalid lesson id"))
	}

	stored, script, err := h.service.Get(ctx, id)
	if err != nil {
		return RespondError(c, err)
	}

	audioURL, err := h.service.AudioURL(ctx, stored)
	if err != nil {
		return RespondError(c, errors.ErrAssetUnavailable(stored.AudioObjectKey, err))
	}

	return c.JSON(http.StatusOK, lessonDto.LessonDetailResponse{
		Lesson:     lessonDto.FromEntity(stored, true),
		AudioURL:   audioURL,
		AssetURLs:  h.service.AssetURLs(ctx, script),
		Transcript: script.Transcript(),
		Schedule:   lessonDto.CheckpointsFromEntities(schedule.Build(script)),
	})
}

// Schedule returns the derived checkpoint schedule of a lesson
// GET /v1/lessons/:id/schedule
func (h *Lesson) Schedule(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return RespondError(c, errors.ErrInvalidArgument("Invalid lesson id"))
	}

	_, script, err := h.service.Get(ctx, id)
	if err != nil {
		return RespondError(c, err)
	}

	return c.JSON(http.StatusOK, lessonDto.ScheduleResponse{
		LessonID:    id.String(),
		Checkpoints: lessonDto.CheckpointsFromEntities(schedule.Build(script)),
		Duration:    schedule.TotalDuration(script),
	})
}

// Delete removes a stored lesson
// DELETE /v1/lessons/:id
func (h *Lesson) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return RespondError(c, errors.ErrInvalidArgument("Invalid lesson id"))
	}

	if err := h.service.Delete(ctx, id); err != nil {
		return RespondError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// Placement computes where an asset should render inside a zone
// GET /v1/placements
func (h *Lesson) Placement(c echo.Context) error {
	var req lessonDto.PlacementRequest
	if err := c.Bind(&req); err != nil {
		return RespondError(c, errors.ErrInvalidArgument("Invalid query parameters"))
	}
	if err := c.Validate(&req); err != nil {
		return RespondError(c, errors.ErrInvalidArgument(err.Error()))
	}

	p := geometry.Place(
		entities.Zone(req.Zone),
		entities.ScaleHint(req.ScaleHint),
		geometry.Size{Width: req.ContainerWidth, Height: req.ContainerHeight},
		geometry.Size{Width: req.NativeWidth, Height: req.NativeHeight},
	)

	return c.JSON(http.StatusOK, lessonDto.PlacementResponse{X: p.X, Y: p.Y, Scale: p.Scale})
}
