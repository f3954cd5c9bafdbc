package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/inkline-team/inkline/errors"
)

// ObjectUploader is the part of the storage client the content pipeline
// uses to push lesson audio and rendered assets
type ObjectUploader interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error
	ListFiles(ctx context.Context, prefix string) ([]string, error)
}

// Upload handles content-pipeline object uploads. Manifests reference
// objects by key, so the pipeline pushes audio and assets here before
// ingesting the lesson that points at them.
type Upload struct {
	store ObjectUploader
}

// NewUpload creates a new upload handler
func NewUpload(store ObjectUploader) *Upload {
	return &Upload{
		store: store,
	}
}

// Create stores one multipart object under the key a manifest will reference
// POST /v1/uploads
func (h *Upload) Create(c echo.Context) error {
	ctx := c.Request().Context()

	key := c.FormValue("key")
	if key == "" {
		return RespondError(c, errors.ErrInvalidArgument("Missing object key"))
	}

	file, err := c.FormFile("file")
	if err != nil {
		return RespondError(c, errors.ErrInvalidArgument("Missing file"))
	}

	src, err := file.Open()
	if err != nil {
		return RespondError(c, errors.ErrInvalidArgument("Unreadable file"))
	}
	defer src.Close()

	contentType := file.Header.Get("Content-Type")
	if err := h.store.UploadFile(ctx, key, src, file.Size, contentType); err != nil {
		return RespondError(c, errors.ErrStorageUnavailable(err))
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"key":  key,
		"size": file.Size,
	})
}

// List returns stored object keys under a prefix
// GET /v1/uploads
func (h *Upload) List(c echo.Context) error {
	ctx := c.Request().Context()

	keys, err := h.store.ListFiles(ctx, c.QueryParam("prefix"))
	if err != nil {
		return RespondError(c, errors.ErrStorageUnavailable(err))
	}
	if keys == nil {
		keys = []string{}
	}

	return c.JSON(http.StatusOK, map[string][]string{"keys": keys})
}
