package httpserver

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/avelin/stitchmart/internal/logging"
	"github.com/avelin/stitchmart/internal/service"
)

type UploadHandler struct {
	Uploads *service.UploadService
	Dir     string
}

// Upload stores the multipart "image" part to disk under a uuid-prefixed
// name and records a metadata row.
func (h *UploadHandler) Upload(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_upload")

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing image file")
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if err := h.Uploads.ValidateUpload(mimeType, fileHeader.Size); err != nil {
		return httpError(err)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot open upload")
	}
	defer src.Close()

	filename := fmt.Sprintf("%s-%s", uuid.NewString(), filepath.Base(fileHeader.Filename))
	if err := os.MkdirAll(h.Dir, 0o755); err != nil {
		l.Error("upload dir unavailable", "dir", h.Dir, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot store file")
	}
	dst, err := os.Create(filepath.Join(h.Dir, filename))
	if err != nil {
		l.Error("cannot create file", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot store file")
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.LimitReader(src, service.MaxUploadSize)); err != nil {
		l.Error("cannot write file", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot store file")
	}

	record, err := h.Uploads.RecordUpload(ctx, filename, mimeType, fileHeader.Size)
	if err != nil {
		return httpError(err)
	}

	l.Info("file uploaded", "filename", filename, "size", fileHeader.Size)
	return c.JSON(http.StatusCreated, record)
}

func (h *UploadHandler) ListUploads(c echo.Context) error {
	files, err := h.Uploads.ListUploads(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, files)
}
