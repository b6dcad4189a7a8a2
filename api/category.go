package api

import (
	"log/slog"
	"net/http"

	"budget/events"
	"budget/middleware"
	"budget/models"
	"budget/repository"

	"github.com/gin-gonic/gin"
)

const msgCategoryNotFound = "category not found"

// CategoryHandler serves /categories.
type CategoryHandler struct {
	categories *repository.CategoryRepository
	events     events.Publisher
	logger     *slog.Logger
}

func NewCategoryHandler(deps Deps) *CategoryHandler {
	return &CategoryHandler{
		categories: repository.NewCategoryRepository(deps.DB),
		events:     deps.getPublisher(),
		logger:     deps.getLogger(),
	}
}

// CategoryRequest is the body of create and update.
type CategoryRequest struct {
	Name string `json:"name" binding:"required,max=200" example:"Makan Siang"`
	Type string `json:"type" binding:"required,oneof=income expense" example:"expense"`
	Icon string `json:"icon" binding:"max=50" example:"fas fa-utensils"`
}

func (r CategoryRequest) input() repository.CategoryInput {
	return repository.CategoryInput{Name: r.Name, Type: models.Kind(r.Type), Icon: r.Icon}
}

// List returns the caller's categories
// @Summary List categories
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Category
// @Failure 401 {object} ErrorResponse
// @Router /categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	owner := middleware.GetCurrentUserID(c)
	cats, err := h.categories.List(c.Request.Context(), owner)
	if err != nil {
		RespondError(c, h.logger, err, "failed to load categories")
		return
	}
	c.JSON(http.StatusOK, cats)
}

// Create adds a category whose id is derived from its name
// @Summary Create category
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CategoryRequest true "Category"
// @Success 201 {object} models.Category
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	owner := middleware.GetCurrentUserID(c)

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "invalid request body"))
		return
	}

	cat, err := h.categories.Add(c.Request.Context(), owner, req.input())
	if err != nil {
		RespondError(c, h.logger, err, "failed to create category")
		return
	}
	events.Emit(c.Request.Context(), h.events, h.logger, events.New(events.CategoryCreated, owner, "", cat.ID))
	c.JSON(http.StatusCreated, cat)
}

// Update renames or retypes a category
// @Summary Update category
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Category ID"
// @Param request body CategoryRequest true "Category"
// @Success 200 {object} models.Category
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /categories/{id} [put]
func (h *CategoryHandler) Update(c *gin.Context) {
	owner := middleware.GetCurrentUserID(c)
	id := c.Param("id")

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "invalid request body"))
		return
	}

	cat, err := h.categories.Update(c.Request.Context(), owner, id, req.input())
	if err != nil {
		RespondError(c, h.logger, err, "failed to update category")
		return
	}
	events.Emit(c.Request.Context(), h.events, h.logger, events.New(events.CategoryUpdated, owner, "", id))
	c.JSON(http.StatusOK, cat)
}

// Delete removes an unused category
// @Summary Delete category
// @Description Fails with 409 while any transaction still uses the category
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Param id path string true "Category ID"
// @Success 200 {object} MessageResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /categories/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
	owner := middleware.GetCurrentUserID(c)
	id := c.Param("id")

	if err := h.categories.Delete(c.Request.Context(), owner, id); err != nil {
		RespondError(c, h.logger, err, "failed to delete category")
		return
	}
	events.Emit(c.Request.Context(), h.events, h.logger, events.New(events.CategoryDeleted, owner, "", id))
	c.JSON(http.StatusOK, MessageResponse{Message: "category deleted"})
}
