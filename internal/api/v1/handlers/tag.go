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

// TagHandler covers tag CRUD.
type TagHandler struct {
	tags repository.TagDAO
}

// NewTagHandler creates the tag handler.
func NewTagHandler(tags repository.TagDAO) *TagHandler {
	return &TagHandler{tags: tags}
}

// List handles GET /api/tags.
func (h *TagHandler) List(c *gin.Context) {
	tags, err := h.tags.List(c.Request.Context())
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	if tags == nil {
		tags = []model.Tag{}
	}
	c.JSON(http.StatusOK, dto.ListResponse{Items: tags})
}

// Create handles POST /api/tags.
func (h *TagHandler) Create(c *gin.Context) {
	var req dto.TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, apierrors.NewValidationError("invalid tag payload", map[string]string{
			"body": err.Error(),
		}))
		return
	}

	tag := &model.Tag{ID: uuid.New().String(), Name: req.Name}
	if err := h.tags.Create(c.Request.Context(), tag); err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tag)
}

// Update handles PATCH /api/tags/:id.
func (h *TagHandler) Update(c *gin.Context) {
	var req dto.TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, apierrors.NewValidationError("invalid tag payload", map[string]string{
			"body": err.Error(),
		}))
		return
	}

	if err := h.tags.Update(c.Request.Context(), c.Param("id"), req.Name); err != nil {
		middleware.HandleError(c, mapStoreError(err, "tag"))
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete handles DELETE /api/tags/:id.
func (h *TagHandler) Delete(c *gin.Context) {
	if err := h.tags.Delete(c.Request.Context(), c.Param("id")); err != nil {
		middleware.HandleError(c, mapStoreError(err, "tag"))
		return
	}
	c.Status(http.StatusNoContent)
}
