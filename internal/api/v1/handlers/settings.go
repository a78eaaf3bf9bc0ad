package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apierrors "lyre-server/internal/api/errors"
	"lyre-server/internal/api/middleware"
	"lyre-server/internal/api/v1/dto"
	"lyre-server/internal/app/model"
	"lyre-server/internal/app/repository"
)

// SettingsHandler reads and writes the single settings row.
type SettingsHandler struct {
	settings repository.SettingsDAO
}

// NewSettingsHandler creates the settings handler.
func NewSettingsHandler(settings repository.SettingsDAO) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Get handles GET /api/settings.
func (h *SettingsHandler) Get(c *gin.Context) {
	settings, err := h.settings.Get(c.Request.Context())
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// Update handles PUT /api/settings.
func (h *SettingsHandler) Update(c *gin.Context) {
	var req dto.SettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, apierrors.NewValidationError("invalid settings payload", map[string]string{
			"body": err.Error(),
		}))
		return
	}

	settings := &model.Settings{
		SummaryEnabled: req.SummaryEnabled,
		LanguageHint:   req.LanguageHint,
	}
	if err := h.settings.Update(c.Request.Context(), settings); err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}
