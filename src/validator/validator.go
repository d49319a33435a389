package validator

import (
	"fmt"
	"reflect"
	"strings"

	"resource-share/src/domain"
	"resource-share/src/security"

	"github.com/go-playground/validator/v10"
)

// CustomValidator はリクエストDTOの形式チェックを行う
//
// 危険なパターンの検出とサニタイズはusecase層で行うため、ここでは扱わない。
type CustomValidator struct {
	validator *validator.Validate
}

// ValidationError はバリデーションエラーの詳細情報
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// ValidationErrors は複数のバリデーションエラー
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (ve ValidationErrors) Error() string {
	return fmt.Sprintf("validation failed: %d errors", len(ve.Errors))
}

// First 最初のエラー。エラーがなければゼロ値
func (ve ValidationErrors) First() ValidationError {
	if len(ve.Errors) == 0 {
		return ValidationError{}
	}
	return ve.Errors[0]
}

// NewCustomValidator creates a new custom validator instance
func NewCustomValidator() *CustomValidator {
	v := validator.New()

	// エラーのフィールド名はJSON/クエリのキー名を使う
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		for _, key := range []string{"json", "form"} {
			name := strings.SplitN(field.Tag.Get(key), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return field.Name
	})

	cv := &CustomValidator{validator: v}

	// カスタムバリデーションルールを登録
	v.RegisterValidation("safe_text", cv.validateSafeText)
	v.RegisterValidation("file_type", cv.validateFileType)
	v.RegisterValidation("file_size", cv.validateFileSize)
	v.RegisterValidation("extraction_code", cv.validateExtractionCode)
	v.RegisterValidation("request_status", cv.validateRequestStatus)

	return cv
}

// Validate validates a struct and returns detailed error information
func (cv *CustomValidator) Validate(s interface{}) error {
	if err := cv.validator.Struct(s); err != nil {
		fieldErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}

		var validationErrors []ValidationError
		for _, err := range fieldErrors {
			ve := ValidationError{
				Field: err.Field(),
				Tag:   err.Tag(),
				Value: err.Value(),
			}

			ve.Message = cv.generateErrorMessage(err)
			validationErrors = append(validationErrors, ve)
		}

		return ValidationErrors{Errors: validationErrors}
	}
	return nil
}

// カスタムバリデーション関数

func (cv *CustomValidator) validateSafeText(fl validator.FieldLevel) bool {
	// タブ、改行、復帰以外の制御文字を拒否
	for _, r := range fl.Field().String() {
		if (r < 32 && r != 9 && r != 10 && r != 13) || r == 127 {
			return false
		}
	}
	return true
}

func (cv *CustomValidator) validateFileType(fl validator.FieldLevel) bool {
	value := strings.TrimSpace(fl.Field().String())
	return value == "" || security.ValidateFileType(value)
}

func (cv *CustomValidator) validateFileSize(fl validator.FieldLevel) bool {
	value := strings.TrimSpace(fl.Field().String())
	return value == "" || security.ValidateFileSize(value)
}

func (cv *CustomValidator) validateExtractionCode(fl validator.FieldLevel) bool {
	return security.ValidateField(strings.TrimSpace(fl.Field().String()), security.Rules.ExtractionCode).Valid
}

func (cv *CustomValidator) validateRequestStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || domain.Status(value).IsValid()
}

// generateErrorMessage 画面にそのまま表示するメッセージを作る
func (cv *CustomValidator) generateErrorMessage(err validator.FieldError) string {
	field := err.Field()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s 为必填项", field)
	case "max":
		switch err.Kind() {
		case reflect.Slice:
			return fmt.Sprintf("%s 最多允许 %s 项", field, err.Param())
		case reflect.Int:
			return fmt.Sprintf("%s 不能大于 %s", field, err.Param())
		}
		return fmt.Sprintf("%s 最多允许 %s 个字符", field, err.Param())
	case "min":
		if err.Kind() == reflect.Int {
			return fmt.Sprintf("%s 不能小于 %s", field, err.Param())
		}
		return fmt.Sprintf("%s 最少需要 %s 个字符", field, err.Param())
	case "oneof":
		return fmt.Sprintf("%s 的值无效 (可选值: %s)", field, err.Param())
	case "email":
		return "请输入有效的邮箱地址"
	case "safe_text":
		return fmt.Sprintf("%s 包含非法字符", field)
	case "file_type":
		return "不支持的文件类型"
	case "file_size":
		return "文件大小格式不正确"
	case "extraction_code":
		return "提取码只能包含字母和数字"
	case "request_status":
		return "无效的状态值"
	default:
		return fmt.Sprintf("%s 无效 (值: %v)", field, err.Value())
	}
}
