package security

import (
	"fmt"
	"regexp"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// 一覧クエリの上限
const (
	MaxSearchLength = 200    // 検索クエリの最大文字数
	MaxLimit        = 100    // 1ページの最大件数
	MaxOffset       = 100000 // 読み飛ばせる最大行数
)

// SQLSanitizer 一覧クエリのパラメータを安全な形に整える
type SQLSanitizer struct {
	// ORDER BYに使用できるカラム（ホワイトリスト方式）
	allowedColumns map[string]bool
	defaultColumn  string
}

// NewSQLSanitizer ソート可能カラムを指定して作成する。先頭のカラムがデフォルトになる
func NewSQLSanitizer(columns ...string) *SQLSanitizer {
	allowed := make(map[string]bool, len(columns))
	for _, c := range columns {
		allowed[c] = true
	}

	s := &SQLSanitizer{allowedColumns: allowed}
	if len(columns) > 0 {
		s.defaultColumn = columns[0]
	}
	return s
}

// NormalizeSearchQuery 前後の空白除去・連続空白の正規化・長さ制限を行う
func (s *SQLSanitizer) NormalizeSearchQuery(query string) string {
	sanitized := strings.TrimSpace(query)
	sanitized = whitespaceRun.ReplaceAllString(sanitized, " ")
	return Truncate(sanitized, MaxSearchLength)
}

// NormalizeOrderBy 許可されていないカラムや方向はデフォルト（降順）に置き換える
func (s *SQLSanitizer) NormalizeOrderBy(column, direction string) (string, string) {
	column = strings.ToLower(strings.TrimSpace(column))
	if !s.allowedColumns[column] {
		column = s.defaultColumn
	}

	direction = strings.ToLower(strings.TrimSpace(direction))
	if direction != "asc" && direction != "desc" {
		direction = "desc"
	}
	return column, direction
}

// ValidateLimitOffset ページネーションパラメータを検証
func (s *SQLSanitizer) ValidateLimitOffset(limit, offset int) error {
	if limit < 1 {
		return fmt.Errorf("limit must be positive")
	}
	if limit > MaxLimit {
		return fmt.Errorf("limit too large (max: %d)", MaxLimit)
	}
	if offset < 0 {
		return fmt.Errorf("offset must be non-negative")
	}
	if offset > MaxOffset {
		return fmt.Errorf("offset too large (max: %d)", MaxOffset)
	}
	return nil
}

// EscapeForLike LIKEパターンの特殊文字をエスケープ
func EscapeForLike(pattern string) string {
	// PostgreSQLのLIKE演算子用にエスケープ
	replacer := strings.NewReplacer(
		"\\", "\\\\", // バックスラッシュ
		"%", "\\%", // パーセント
		"_", "\\_", // アンダースコア
	)
	return replacer.Replace(pattern)
}
