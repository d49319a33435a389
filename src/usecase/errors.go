package usecase

import (
	"errors"
	"fmt"
	"strings"

	"resource-share/src/metrics"
	"resource-share/src/security"

	"github.com/sirupsen/logrus"
)

var (
	ErrResourceNotFound  = errors.New("resource not found")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrRequestNotFound   = errors.New("resource request not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrDangerousInput    = errors.New("input contains dangerous content")
	ErrStoreFailure      = errors.New("store operation failed")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ValidationError フィールド単位の入力エラー。errors.Is(err, ErrInvalidInput) が成り立つ
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// DangerousInputError 危険なパターンを含む入力。errors.Is(err, ErrDangerousInput) が成り立つ
type DangerousInputError struct {
	Field   string
	Reasons []string
}

func (e *DangerousInputError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, strings.Join(e.Reasons, ", "))
}

func (e *DangerousInputError) Unwrap() error {
	return ErrDangerousInput
}

// storeFailure ストアのエラーを記録し、詳細を含まない ErrStoreFailure を返す
func storeFailure(log *logrus.Logger, rec *metrics.Recorder, operation string, err error, fields logrus.Fields) error {
	entry := log.WithError(err).WithField("operation", operation)
	if fields != nil {
		entry = entry.WithFields(fields)
	}
	entry.Error("ストア操作に失敗しました")
	rec.StoreError(operation)
	return ErrStoreFailure
}

// scan 生の入力に危険なパターンがないか調べる。敏感語は拒否せず警告として記録する
func scan(log *logrus.Logger, field, raw string) error {
	if raw == "" {
		return nil
	}
	result := security.PerformSecurityCheck(raw, security.CheckOptions{CheckSensitive: true})
	if !result.Passed {
		return &DangerousInputError{Field: field, Reasons: result.Errors}
	}
	if len(result.Warnings) > 0 {
		log.WithFields(logrus.Fields{
			"field":    field,
			"warnings": result.Warnings,
		}).Warn("注意が必要な語句を含む入力です")
	}
	return nil
}

// cleanText スキャン → サニタイズ → ルール検証 の順に処理した値を返す
func cleanText(log *logrus.Logger, field, raw string, rule security.ValidationRule) (string, error) {
	if err := scan(log, field, raw); err != nil {
		return "", err
	}
	value := security.Sanitize(raw)
	if result := security.ValidateField(value, rule); !result.Valid {
		return "", &ValidationError{Field: field, Message: result.Error}
	}
	return value, nil
}

// cleanLink リンクはサニタイズで書き換えず、http/httpsのURLであることを要求する
func cleanLink(log *logrus.Logger, raw string) (string, error) {
	if err := scan(log, "link", raw); err != nil {
		return "", err
	}
	value := strings.TrimSpace(raw)
	if result := security.ValidateField(value, security.Rules.ResourceLink); !result.Valid {
		return "", &ValidationError{Field: "link", Message: result.Error}
	}
	if strings.ContainsAny(value, "<>\"' \t\n") || !security.ValidateURL(value) {
		return "", &ValidationError{Field: "link", Message: "请输入有效的链接地址"}
	}
	return value, nil
}

// cleanTags 各タグをスキャンし、サニタイズ・空要素と重複の除去を行う
func cleanTags(log *logrus.Logger, tags []string) ([]string, error) {
	for _, tag := range tags {
		if err := scan(log, "tags", tag); err != nil {
			return nil, err
		}
	}
	cleaned := security.SanitizeAll(tags)
	if len(cleaned) > maxTags {
		return nil, &ValidationError{Field: "tags", Message: fmt.Sprintf("最多允许 %d 个标签", maxTags)}
	}
	for _, tag := range cleaned {
		if len([]rune(tag)) > maxTagLength {
			return nil, &ValidationError{Field: "tags", Message: fmt.Sprintf("标签最多允许 %d 个字符", maxTagLength)}
		}
	}
	return cleaned, nil
}

const (
	maxTags      = 20
	maxTagLength = 50
)

func totalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// checkPageWindow 読み飛ばす行数が security.MaxOffset を超えるページ番号を拒否する
func checkPageWindow(sanitizer *security.SQLSanitizer, page, limit int) error {
	// (page-1)*limit を計算する前に上限と比較し、オーバーフローを避ける
	if page-1 > security.MaxOffset/limit {
		return &ValidationError{Field: "page", Message: "页码超出范围"}
	}
	if err := sanitizer.ValidateLimitOffset(limit, (page-1)*limit); err != nil {
		return &ValidationError{Field: "page", Message: "页码超出范围"}
	}
	return nil
}

func normalizePage(page, limit, defaultLimit, maxLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}
