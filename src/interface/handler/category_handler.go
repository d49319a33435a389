package handler

import (
	"net/http"

	"resource-share/src/usecase"
	"resource-share/src/validator"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CategoryHandler handles HTTP requests for category operations
type CategoryHandler struct {
	categoryUsecase usecase.CategoryUsecase
	validator       *validator.CustomValidator
	logger          *logrus.Logger
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categoryUsecase usecase.CategoryUsecase, v *validator.CustomValidator, logger *logrus.Logger) *CategoryHandler {
	return &CategoryHandler{
		categoryUsecase: categoryUsecase,
		validator:       v,
		logger:          logger,
	}
}

// ListCategories returns all categories; degraded is true when the fixed fallback set was served
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	c.JSON(http.StatusOK, h.categoryUsecase.GetCategories(c.Request.Context()))
}

// GetCategory resolves a category by slug
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	category, err := h.categoryUsecase.GetCategoryBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, CategoryResponseDTO{Category: category})
}

// CreateCategory creates a new category
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req CategoryRequestDTO
	if !bindJSON(c, h.validator, &req) {
		return
	}

	category, err := h.categoryUsecase.CreateCategory(c.Request.Context(), usecase.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, CategoryResponseDTO{Category: category})
}

// UpdateCategory updates a category
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	var req CategoryRequestDTO
	if !bindJSON(c, h.validator, &req) {
		return
	}

	category, err := h.categoryUsecase.UpdateCategory(c.Request.Context(), c.Param("id"), usecase.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, CategoryResponseDTO{Category: category})
}

// DeleteCategory deletes a category
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	if err := h.categoryUsecase.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}
