package handler

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"resource-share/src/ratelimit"
	"resource-share/src/service"
	"resource-share/src/usecase"
	"resource-share/src/validator"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AdminHandler handles admin login and dashboard requests
type AdminHandler struct {
	authService  service.AdminAuthService
	statsUsecase usecase.StatsUsecase
	validator    *validator.CustomValidator
	logger       *logrus.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(authService service.AdminAuthService, statsUsecase usecase.StatsUsecase, v *validator.CustomValidator, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{
		authService:  authService,
		statsUsecase: statsUsecase,
		validator:    v,
		logger:       logger,
	}
}

// Login issues an admin token
func (h *AdminHandler) Login(c *gin.Context) {
	var req LoginRequestDTO
	if !bindJSON(c, h.validator, &req) {
		return
	}

	result, err := h.authService.Login(req.Email, req.Password, ratelimit.ClientIdentifier(c.Request))
	if err != nil {
		var throttled *service.ThrottledError
		switch {
		case errors.As(err, &throttled):
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(throttled.RetryAfter.Seconds()))))
			c.JSON(http.StatusTooManyRequests, ErrorResponseDTO{
				Error:   "Too many requests",
				Message: "登录尝试次数过多，请稍后再试",
			})
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, ErrorResponseDTO{
				Error:   "Invalid credentials",
				Message: "邮箱或密码错误",
			})
		default:
			h.logger.WithError(err).Error("ログイン処理に失敗しました")
			c.JSON(http.StatusInternalServerError, ErrorResponseDTO{Error: errInternal, Message: internalErrorMessage})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetStats returns dashboard counters
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.statsUsecase.GetAdminStats(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, StatsResponseDTO{Stats: stats})
}
