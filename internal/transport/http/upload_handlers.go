package http

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// UploadHandlers stores blobs on disk and hands back a URL for them.
type UploadHandlers struct {
	dir      string
	maxBytes int64
	log      *zerolog.Logger
}

// NewUploadHandlers creates upload handlers writing into dir.
func NewUploadHandlers(dir string, maxBytes int64, logger *zerolog.Logger) *UploadHandlers {
	return &UploadHandlers{dir: dir, maxBytes: maxBytes, log: logger}
}

// UploadResponse carries the public URL of a stored file.
type UploadResponse struct {
	URL string `json:"url"`
}

// Upload handles multipart uploads in the "file" field.
// POST /upload
func (h *UploadHandlers) Upload(c *gin.Context) {
	if h.maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes)
	}

	file, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "file too large"})
			return
		}
		h.log.Debug().Err(err).Msg("invalid upload request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "file is required"})
		return
	}

	if err := os.MkdirAll(h.dir, 0o755); err != nil {
		h.log.Error().Err(err).Str("dir", h.dir).Msg("failed to create upload dir")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	name := uuid.NewString() + "-" + filepath.Base(file.Filename)
	if err := c.SaveUploadedFile(file, filepath.Join(h.dir, name)); err != nil {
		h.log.Error().Err(err).Str("name", name).Msg("failed to store upload")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().Str("name", name).Int64("size", file.Size).Msg("file uploaded")
	c.JSON(http.StatusOK, UploadResponse{URL: publicURL(c.Request, "/uploads/"+name)})
}

// publicURL makes path absolute against the host the client used.
func publicURL(r *http.Request, path string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}
	return scheme + "://" + r.Host + path
}
