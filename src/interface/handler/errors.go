package handler

import (
	"errors"
	"net/http"

	"resource-share/src/usecase"
	"resource-share/src/validator"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// クライアントに返すエラー種別
const (
	errInvalidRequest    = "Invalid request format"
	errInvalidInput      = "Invalid input"
	errDangerousInput    = "Dangerous input"
	errNotFound          = "Not found"
	errInvalidTransition = "Invalid status transition"
	errInternal          = "Internal server error"
)

const internalErrorMessage = "服务器内部错误，请稍后再试"

// bindJSON JSONをDTOにバインドして検証する。失敗時はレスポンスを書き込んで false を返す
func bindJSON(c *gin.Context, v *validator.CustomValidator, dto interface{}) bool {
	if err := c.ShouldBindJSON(dto); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponseDTO{
			Error:   errInvalidRequest,
			Message: "请求格式不正确",
		})
		return false
	}
	return validate(c, v, dto)
}

// bindQuery クエリパラメータをDTOにバインドして検証する
func bindQuery(c *gin.Context, v *validator.CustomValidator, dto interface{}) bool {
	if err := c.ShouldBindQuery(dto); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponseDTO{
			Error:   errInvalidRequest,
			Message: "查询参数格式不正确",
		})
		return false
	}
	return validate(c, v, dto)
}

func validate(c *gin.Context, v *validator.CustomValidator, dto interface{}) bool {
	err := v.Validate(dto)
	if err == nil {
		return true
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		first := validationErrors.First()
		c.JSON(http.StatusBadRequest, ErrorResponseDTO{
			Error:   errInvalidInput,
			Message: first.Message,
			Field:   first.Field,
		})
		return false
	}

	c.JSON(http.StatusBadRequest, ErrorResponseDTO{Error: errInvalidRequest})
	return false
}

// respondError usecaseのエラーをHTTPステータスに対応付けて書き込む
func respondError(c *gin.Context, log *logrus.Logger, err error) {
	var (
		validationErr *usecase.ValidationError
		dangerousErr  *usecase.DangerousInputError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, ErrorResponseDTO{
			Error:   errInvalidInput,
			Message: validationErr.Message,
			Field:   validationErr.Field,
		})
	case errors.As(err, &dangerousErr):
		log.WithFields(logrus.Fields{
			"field":     dangerousErr.Field,
			"reasons":   dangerousErr.Reasons,
			"client_ip": c.ClientIP(),
		}).Warn("危険な入力を拒否しました")
		c.JSON(http.StatusBadRequest, ErrorResponseDTO{
			Error:   errDangerousInput,
			Message: "输入内容包含不安全的字符",
			Field:   dangerousErr.Field,
		})
	case errors.Is(err, usecase.ErrResourceNotFound):
		c.JSON(http.StatusNotFound, ErrorResponseDTO{Error: errNotFound, Message: "资源不存在"})
	case errors.Is(err, usecase.ErrCategoryNotFound):
		c.JSON(http.StatusNotFound, ErrorResponseDTO{Error: errNotFound, Message: "分类不存在"})
	case errors.Is(err, usecase.ErrRequestNotFound):
		c.JSON(http.StatusNotFound, ErrorResponseDTO{Error: errNotFound, Message: "资源请求不存在"})
	case errors.Is(err, usecase.ErrInvalidTransition):
		c.JSON(http.StatusConflict, ErrorResponseDTO{Error: errInvalidTransition, Message: "当前状态不允许此操作"})
	default:
		if !errors.Is(err, usecase.ErrStoreFailure) {
			log.WithError(err).Error("想定外のエラーが発生しました")
		}
		c.JSON(http.StatusInternalServerError, ErrorResponseDTO{Error: errInternal, Message: internalErrorMessage})
	}
}
