package handler

import (
	"net/http"

	"resource-share/src/usecase"
	"resource-share/src/validator"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ResourceHandler handles HTTP requests for resource operations
type ResourceHandler struct {
	resourceUsecase usecase.ResourceUsecase
	validator       *validator.CustomValidator
	logger          *logrus.Logger
}

// NewResourceHandler creates a new resource handler
func NewResourceHandler(resourceUsecase usecase.ResourceUsecase, v *validator.CustomValidator, logger *logrus.Logger) *ResourceHandler {
	return &ResourceHandler{
		resourceUsecase: resourceUsecase,
		validator:       v,
		logger:          logger,
	}
}

// ListResources retrieves resources with search, category filter and pagination
func (h *ResourceHandler) ListResources(c *gin.Context) {
	var query ResourceQueryDTO
	if !bindQuery(c, h.validator, &query) {
		return
	}

	result, err := h.resourceUsecase.GetResources(c.Request.Context(), query.toQuery())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetFeaturedResources retrieves the newest resources flagged as featured
func (h *ResourceHandler) GetFeaturedResources(c *gin.Context) {
	var query FeaturedQueryDTO
	if !bindQuery(c, h.validator, &query) {
		return
	}

	c.JSON(http.StatusOK, h.resourceUsecase.GetFeaturedResources(c.Request.Context(), query.Limit))
}

// SearchResources performs a quick title/description search
func (h *ResourceHandler) SearchResources(c *gin.Context) {
	var query SearchQueryDTO
	if !bindQuery(c, h.validator, &query) {
		return
	}

	resources, err := h.resourceUsecase.SearchResources(c.Request.Context(), query.Query, query.Limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, ResourceListResponseDTO{Resources: resources, Total: len(resources)})
}

// GetResource retrieves a resource by ID
func (h *ResourceHandler) GetResource(c *gin.Context) {
	resource, err := h.resourceUsecase.GetResourceByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, ResourceResponseDTO{Resource: resource})
}

// RecordView increments the view counter
func (h *ResourceHandler) RecordView(c *gin.Context) {
	id := c.Param("id")
	count, err := h.resourceUsecase.IncrementViewCount(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, CounterResponseDTO{ID: id, Count: count})
}

// RecordDownload increments the download counter
func (h *ResourceHandler) RecordDownload(c *gin.Context) {
	id := c.Param("id")
	count, err := h.resourceUsecase.IncrementDownloadCount(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, CounterResponseDTO{ID: id, Count: count})
}

// CreateResource creates a new resource
func (h *ResourceHandler) CreateResource(c *gin.Context) {
	var req ResourceRequestDTO
	if !bindJSON(c, h.validator, &req) {
		return
	}

	resource, err := h.resourceUsecase.CreateResource(c.Request.Context(), req.toInput())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, ResourceResponseDTO{Resource: resource})
}

// UpdateResource updates the given fields of a resource
func (h *ResourceHandler) UpdateResource(c *gin.Context) {
	var req ResourceRequestDTO
	if !bindJSON(c, h.validator, &req) {
		return
	}

	resource, err := h.resourceUsecase.UpdateResource(c.Request.Context(), c.Param("id"), req.toInput())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, ResourceResponseDTO{Resource: resource})
}

// DeleteResource deletes a resource
func (h *ResourceHandler) DeleteResource(c *gin.Context) {
	if err := h.resourceUsecase.DeleteResource(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ParseShareText extracts title, link and extraction code from pasted share text
func (h *ResourceHandler) ParseShareText(c *gin.Context) {
	var req ShareTextDTO
	if !bindJSON(c, h.validator, &req) {
		return
	}

	c.JSON(http.StatusOK, usecase.ParseShareText(req.Text))
}
