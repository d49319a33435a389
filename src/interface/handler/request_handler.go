package handler

import (
	"net/http"

	"resource-share/src/usecase"
	"resource-share/src/validator"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const requestCreatedMessage = "资源请求提交成功"

// RequestHandler handles HTTP requests for resource request operations
type RequestHandler struct {
	requestUsecase usecase.RequestUsecase
	validator      *validator.CustomValidator
	logger         *logrus.Logger
}

// NewRequestHandler creates a new resource request handler
func NewRequestHandler(requestUsecase usecase.RequestUsecase, v *validator.CustomValidator, logger *logrus.Logger) *RequestHandler {
	return &RequestHandler{
		requestUsecase: requestUsecase,
		validator:      v,
		logger:         logger,
	}
}

// CreateRequest accepts a request from the public form
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	var req ResourceRequestCreateDTO
	if !bindJSON(c, h.validator, &req) {
		return
	}

	created, err := h.requestUsecase.CreateResourceRequest(c.Request.Context(), usecase.RequestInput{
		ResourceName:   req.ResourceName,
		Description:    req.Description,
		RequesterEmail: req.RequesterEmail,
		ContactInfo:    req.ContactInfo,
		Priority:       req.Priority,
		Status:         req.Status,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, RequestCreatedResponseDTO{Message: requestCreatedMessage, Request: created})
}

// ListRequests retrieves requests for the admin dashboard
func (h *RequestHandler) ListRequests(c *gin.Context) {
	var query RequestQueryDTO
	if !bindQuery(c, h.validator, &query) {
		return
	}

	result, err := h.requestUsecase.GetResourceRequests(c.Request.Context(), query.toQuery())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// UpdateRequestStatus moves a request to a new status
func (h *RequestHandler) UpdateRequestStatus(c *gin.Context) {
	var req StatusUpdateDTO
	if !bindJSON(c, h.validator, &req) {
		return
	}

	updated, err := h.requestUsecase.UpdateResourceRequestStatus(c.Request.Context(), c.Param("id"), usecase.StatusUpdate{
		Status:     req.Status,
		AdminNotes: req.AdminNotes,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, RequestResponseDTO{Request: updated})
}
