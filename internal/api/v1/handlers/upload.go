package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apierrors "lyre-server/internal/api/errors"
	"lyre-server/internal/api/middleware"
	"lyre-server/internal/api/v1/dto"
	"lyre-server/internal/app/storage"
)

// presignTTL is how long a client has to complete the upload PUT.
const presignTTL = 15 * time.Minute

// maxUploadSize caps accepted audio files at 2 GiB.
const maxUploadSize = 2 << 30

// UploadHandler issues presigned upload URLs for new recordings.
type UploadHandler struct {
	store storage.ObjectStore
}

// NewUploadHandler creates an upload handler backed by the object store.
func NewUploadHandler(store storage.ObjectStore) *UploadHandler {
	return &UploadHandler{store: store}
}

// Presign handles POST /api/upload/presign. The object store is optional in
// mock-provider runs, so a missing store answers 503 rather than panicking.
func (h *UploadHandler) Presign(c *gin.Context) {
	if h.store == nil {
		middleware.HandleError(c, apierrors.NewServiceUnavailableError("object storage unavailable"))
		return
	}

	var req dto.PresignUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, apierrors.NewValidationError("invalid presign request", map[string]string{
			"body": err.Error(),
		}))
		return
	}

	_, contentType, ok := dto.AudioFormat(req.FileName)
	if !ok {
		middleware.HandleError(c, apierrors.NewValidationError("unsupported audio format", map[string]string{
			"fileName":  req.FileName,
			"supported": strings.Join(dto.SupportedFormats(), ", "),
		}))
		return
	}

	if req.FileSize > maxUploadSize {
		middleware.HandleError(c, apierrors.NewValidationError("file too large", map[string]string{
			"fileSize": "exceeds 2GiB limit",
		}))
		return
	}

	if req.ContentType == "" {
		req.ContentType = contentType
	}

	recordingID := uuid.New().String()
	key := storage.UploadKey(recordingID, req.FileName)

	uploadURL, err := h.store.PresignPut(c.Request.Context(), key, req.ContentType, presignTTL)
	if err != nil {
		middleware.HandleError(c, apierrors.NewServiceUnavailableError("object storage unavailable"))
		return
	}

	c.JSON(http.StatusOK, dto.PresignUploadResponse{
		UploadURL:   uploadURL,
		OssKey:      key,
		RecordingID: recordingID,
	})
}
