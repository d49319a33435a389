package security_test

import (
	"regexp"
	"strings"
	"testing"

	"resource-share/src/security"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "前後の空白を除去", input: "  hello  ", expected: "hello"},
		{name: "山括弧を除去", input: "<b>bold</b>", expected: "bbold/b"},
		{name: "javascriptプロトコル", input: "javascript:alert(1)", expected: "alert(1)"},
		{name: "大文字のプロトコル", input: "JAVASCRIPT:alert(1)", expected: "alert(1)"},
		{name: "イベントハンドラ", input: "<img src=x onerror=alert(1)>", expected: "img src=x alert(1)"},
		{name: "scriptタグ", input: "<script>alert('x')</script>", expected: "alert('x')/"},
		{name: "文章中のJavaScriptも削られる", input: "Learn JavaScript", expected: "Learn Java"},
		{name: "入れ子になったscript", input: "scrscriptipt", expected: ""},
		{name: "入れ子になったプロトコル", input: "javajavascript:script:", expected: "java:"},
		{name: "日本語・中国語はそのまま", input: "电子书籍 こんにちは", expected: "电子书籍 こんにちは"},
		{name: "空文字列", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, security.Sanitize(tt.input))
		})
	}
}

func TestSanitize_Properties(t *testing.T) {
	eventHandler := regexp.MustCompile(`(?i)on\w+=`)

	inputs := []string{
		"<<script>>",
		"ononclick==click",
		"javascript:javascript:alert(1)",
		"jajavascript:vascript:alert(1)",
		"<a href='javascript:x' onmouseover=y>link</a>",
		"onLoad=1 and ONERROR=2",
		"  padded <b> text </b>  ",
		"普通的描述 no tricks",
		"scr<ipt>",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			once := security.Sanitize(input)

			assert.NotContains(t, once, "<")
			assert.NotContains(t, once, ">")
			assert.NotContains(t, strings.ToLower(once), "javascript:")
			assert.NotContains(t, strings.ToLower(once), "script")
			assert.False(t, eventHandler.MatchString(once), "event handler remained: %q", once)

			assert.Equal(t, once, security.Sanitize(once), "sanitize must be idempotent")
		})
	}
}

func TestSanitizeAll(t *testing.T) {
	result := security.SanitizeAll([]string{" go ", "<go>", "", "  ", "rust", "go"})
	assert.Equal(t, []string{"go", "rust"}, result)

	assert.Equal(t, []string{}, security.SanitizeAll(nil))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", security.Truncate("abcdef", 3))
	assert.Equal(t, "电子书", security.Truncate("电子书籍", 3))
	assert.Equal(t, "short", security.Truncate("short", 10))
	assert.Equal(t, "", security.Truncate("abc", 0))
}

func TestContainsSensitiveContent(t *testing.T) {
	assert.True(t, security.ContainsSensitiveContent("Photoshop CRACK edition"))
	assert.True(t, security.ContainsSensitiveContent("某软件破解版"))
	assert.False(t, security.ContainsSensitiveContent("Go言語の入門書"))
}
