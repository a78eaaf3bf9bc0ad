package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apierrors "lyre-server/internal/api/errors"
	"lyre-server/internal/api/middleware"
	"lyre-server/internal/api/v1/dto"
	"lyre-server/internal/app/export"
	"lyre-server/internal/app/model"
	"lyre-server/internal/app/repository"
	"lyre-server/internal/app/storage"
)

// RecordingHandler covers recording CRUD, the transcription read path and
// spreadsheet export.
type RecordingHandler struct {
	recordings     repository.RecordingDAO
	transcriptions repository.TranscriptionDAO
	objectStore    storage.ObjectStore
	logger         *zap.Logger
}

// NewRecordingHandler creates the recording handler. objectStore may be nil
// in tests; stored audio is then simply not cleaned up on delete.
func NewRecordingHandler(
	recordings repository.RecordingDAO,
	transcriptions repository.TranscriptionDAO,
	objectStore storage.ObjectStore,
	logger *zap.Logger,
) *RecordingHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordingHandler{
		recordings:     recordings,
		transcriptions: transcriptions,
		objectStore:    objectStore,
		logger:         logger,
	}
}

// Create handles POST /api/recordings.
func (h *RecordingHandler) Create(c *gin.Context) {
	var req dto.CreateRecordingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, apierrors.NewValidationError("invalid recording payload", map[string]string{
			"body": err.Error(),
		}))
		return
	}

	format := req.Format
	if format == "" {
		var ok bool
		format, _, ok = dto.AudioFormat(req.FileName)
		if !ok {
			middleware.HandleError(c, apierrors.NewValidationError("unsupported audio format", map[string]string{
				"fileName": req.FileName,
			}))
			return
		}
	}

	recording := &model.Recording{
		ID:         req.ID,
		Title:      req.Title,
		FileName:   req.FileName,
		OssKey:     req.OssKey,
		FileSize:   req.FileSize,
		Duration:   req.Duration,
		Format:     format,
		SampleRate: req.SampleRate,
		FolderID:   req.FolderID,
		TagIDs:     req.TagIDs,
		Status:     model.RecordingStatusUploaded,
	}
	if recording.ID == "" {
		recording.ID = uuid.New().String()
	}

	if err := h.recordings.Create(c.Request.Context(), recording); err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, recording)
}

// List handles GET /api/recordings with optional folderId, tagId, status and
// search query filters.
func (h *RecordingHandler) List(c *gin.Context) {
	filter := repository.RecordingFilter{
		FolderID: c.Query("folderId"),
		TagID:    c.Query("tagId"),
		Status:   model.RecordingStatus(c.Query("status")),
		Search:   c.Query("search"),
	}

	recordings, err := h.recordings.List(c.Request.Context(), filter)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	if recordings == nil {
		recordings = []model.Recording{}
	}
	c.JSON(http.StatusOK, dto.ListResponse{Items: recordings})
}

// Get handles GET /api/recordings/:id.
func (h *RecordingHandler) Get(c *gin.Context) {
	recording, err := h.recordings.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.HandleError(c, mapStoreError(err, "recording"))
		return
	}
	c.JSON(http.StatusOK, recording)
}

// Update handles PATCH /api/recordings/:id.
func (h *RecordingHandler) Update(c *gin.Context) {
	var req dto.UpdateRecordingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, apierrors.NewValidationError("invalid update payload", map[string]string{
			"body": err.Error(),
		}))
		return
	}

	id := c.Param("id")
	err := h.recordings.Update(c.Request.Context(), id, repository.RecordingUpdate{
		Title:    req.Title,
		FolderID: req.FolderID,
		TagIDs:   req.TagIDs,
	})
	if err != nil {
		middleware.HandleError(c, mapStoreError(err, "recording"))
		return
	}

	recording, err := h.recordings.FindByID(c.Request.Context(), id)
	if err != nil {
		middleware.HandleError(c, mapStoreError(err, "recording"))
		return
	}
	c.JSON(http.StatusOK, recording)
}

// Delete handles DELETE /api/recordings/:id. Jobs and the transcription go
// with the row; the stored audio object is removed best-effort.
func (h *RecordingHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	recording, err := h.recordings.FindByID(ctx, id)
	if err != nil {
		middleware.HandleError(c, mapStoreError(err, "recording"))
		return
	}

	if err := h.recordings.Delete(ctx, id); err != nil {
		middleware.HandleError(c, mapStoreError(err, "recording"))
		return
	}

	if h.objectStore != nil && recording.OssKey != "" {
		if err := h.objectStore.Delete(ctx, recording.OssKey); err != nil {
			h.logger.Warn("deleting stored audio failed",
				zap.String("recording_id", id),
				zap.String("key", recording.OssKey),
				zap.Error(err))
		}
	}

	c.Status(http.StatusNoContent)
}

// GetTranscription handles GET /api/recordings/:id/transcription.
func (h *RecordingHandler) GetTranscription(c *gin.Context) {
	transcription, err := h.transcriptions.FindByRecordingID(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.HandleError(c, mapStoreError(err, "transcription"))
		return
	}
	c.JSON(http.StatusOK, transcription)
}

// Export handles GET /api/recordings/:id/export?format=xlsx.
func (h *RecordingHandler) Export(c *gin.Context) {
	if format := c.DefaultQuery("format", "xlsx"); format != "xlsx" {
		middleware.HandleError(c, apierrors.NewBadRequestError("unsupported export format: "+format))
		return
	}

	ctx := c.Request.Context()
	id := c.Param("id")

	recording, err := h.recordings.FindByID(ctx, id)
	if err != nil {
		middleware.HandleError(c, mapStoreError(err, "recording"))
		return
	}

	entry := export.Entry{Recording: *recording}
	if transcription, err := h.transcriptions.FindByRecordingID(ctx, id); err == nil {
		entry.Transcription = transcription
	}

	c.Header("Content-Disposition", `attachment; filename="`+recording.Title+`.xlsx"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := export.ToExcel([]export.Entry{entry}, c.Writer); err != nil {
		h.logger.Error("export failed", zap.String("recording_id", id), zap.Error(err))
	}
}
