package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lyre-server/internal/api/middleware"
	"lyre-server/internal/app/jobs"
)

// JobHandler exposes transcription job submission and the on-demand poll
// path.
type JobHandler struct {
	service *jobs.Service
	manager *jobs.Manager
}

// NewJobHandler creates the job handler.
func NewJobHandler(service *jobs.Service, manager *jobs.Manager) *JobHandler {
	return &JobHandler{service: service, manager: manager}
}

// Transcribe handles POST /api/recordings/:id/transcribe.
func (h *JobHandler) Transcribe(c *gin.Context) {
	job, err := h.service.StartTranscription(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.HandleError(c, mapStoreError(err, "recording"))
		return
	}
	c.JSON(http.StatusAccepted, job)
}

// Get handles GET /api/jobs/:id.
func (h *JobHandler) Get(c *gin.Context) {
	job, err := h.service.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.HandleError(c, mapStoreError(err, "job"))
		return
	}
	c.JSON(http.StatusOK, job)
}

// Poll handles POST /api/jobs/:id/poll. The poll shares the manager's
// transition logic, so a terminal job comes back unchanged and a racing
// timer tick cannot double-process the job.
func (h *JobHandler) Poll(c *gin.Context) {
	job, err := h.manager.PollNow(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.HandleError(c, mapStoreError(err, "job"))
		return
	}
	c.JSON(http.StatusOK, job)
}
