package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apierrors "lyre-server/internal/api/errors"
	"lyre-server/internal/api/middleware"
	"lyre-server/internal/api/v1/dto"
	"lyre-server/internal/app/model"
	"lyre-server/internal/app/repository"
)

// FolderHandler covers folder CRUD.
type FolderHandler struct {
	folders repository.FolderDAO
}

// NewFolderHandler creates the folder handler.
func NewFolderHandler(folders repository.FolderDAO) *FolderHandler {
	return &FolderHandler{folders: folders}
}

// List handles GET /api/folders.
func (h *FolderHandler) List(c *gin.Context) {
	folders, err := h.folders.List(c.Request.Context())
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	if folders == nil {
		folders = []model.Folder{}
	}
	c.JSON(http.StatusOK, dto.ListResponse{Items: folders})
}

// Create handles POST /api/folders.
func (h *FolderHandler) Create(c *gin.Context) {
	var req dto.FolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, apierrors.NewValidationError("invalid folder payload", map[string]string{
			"body": err.Error(),
		}))
		return
	}

	folder := &model.Folder{ID: uuid.New().String(), Name: req.Name, Icon: req.Icon}
	if err := h.folders.Create(c.Request.Context(), folder); err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, folder)
}

// Update handles PATCH /api/folders/:id.
func (h *FolderHandler) Update(c *gin.Context) {
	var req dto.FolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, apierrors.NewValidationError("invalid folder payload", map[string]string{
			"body": err.Error(),
		}))
		return
	}

	if err := h.folders.Update(c.Request.Context(), c.Param("id"), req.Name, req.Icon); err != nil {
		middleware.HandleError(c, mapStoreError(err, "folder"))
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete handles DELETE /api/folders/:id. Recordings in the folder are kept
// and simply unfiled.
func (h *FolderHandler) Delete(c *gin.Context) {
	if err := h.folders.Delete(c.Request.Context(), c.Param("id")); err != nil {
		middleware.HandleError(c, mapStoreError(err, "folder"))
		return
	}
	c.Status(http.StatusNoContent)
}
