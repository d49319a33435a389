package security

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	angleBracketPattern = regexp.MustCompile(`[<>]`)
	jsProtocolPattern   = regexp.MustCompile(`(?i)javascript:`)
	eventHandlerPattern = regexp.MustCompile(`(?i)on\w+=`)
	scriptWordPattern   = regexp.MustCompile(`(?i)script`)

	sensitiveWords = []string{
		"virus", "malware", "hack", "crack",
		"病毒", "木马", "破解", "盗版",
	}
)

// Sanitize ユーザー入力からXSSに使われやすいパターンを除去する
//
// 山括弧、javascript:プロトコル、on*=形式のイベントハンドラ、"script"という文字列を
// 大文字小文字を区別せずに削除する。除去によって新たなパターンが現れることがあるため
// 変化がなくなるまで繰り返す。そのため Sanitize(Sanitize(x)) == Sanitize(x) が成り立つ。
func Sanitize(input string) string {
	current := input
	for {
		next := sanitizeOnce(current)
		if next == current {
			return next
		}
		current = next
	}
}

func sanitizeOnce(input string) string {
	s := strings.TrimSpace(input)
	s = angleBracketPattern.ReplaceAllString(s, "")
	s = jsProtocolPattern.ReplaceAllString(s, "")
	s = eventHandlerPattern.ReplaceAllString(s, "")
	s = scriptWordPattern.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// SanitizeAll 文字列スライスの各要素をサニタイズし、空要素と重複を除く
func SanitizeAll(values []string) []string {
	if len(values) == 0 {
		return []string{}
	}

	seen := make(map[string]bool, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		sanitized := Sanitize(v)
		if sanitized == "" || seen[sanitized] {
			continue
		}
		seen[sanitized] = true
		result = append(result, sanitized)
	}
	return result
}

// Truncate 文字数（rune単位）で切り詰める
func Truncate(s string, maxRunes int) string {
	if maxRunes < 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxRunes])
}

// ContainsSensitiveContent 敏感語が含まれているかチェック
func ContainsSensitiveContent(content string) bool {
	lower := strings.ToLower(content)
	for _, word := range sensitiveWords {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}
