package security_test

import (
	"strings"
	"testing"

	"resource-share/src/security"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"user@example.com", true},
		{"名前@例え.中国", true},
		{"user@example", false},
		{"user example@test.com", false},
		{"@example.com", false},
		{"", false},
		{strings.Repeat("a", 250) + "@x.com", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.valid, security.ValidateEmail(tt.email), tt.email)
	}
}

func TestValidateURL(t *testing.T) {
	assert.True(t, security.ValidateURL("https://pan.baidu.com/s/1abc"))
	assert.True(t, security.ValidateURL("http://example.com"))
	assert.False(t, security.ValidateURL("ftp://example.com/file"))
	assert.False(t, security.ValidateURL("javascript:alert(1)"))
	assert.False(t, security.ValidateURL("https://"))
	assert.False(t, security.ValidateURL("not a url"))
}

func TestValidateUUID(t *testing.T) {
	assert.True(t, security.ValidateUUID("550e8400-e29b-41d4-a716-446655440000"))
	assert.True(t, security.ValidateUUID("550E8400-E29B-11D4-A716-446655440000"))
	assert.False(t, security.ValidateUUID("550e8400-e29b-61d4-a716-446655440000"), "version 6 is not accepted")
	assert.False(t, security.ValidateUUID("550e8400-e29b-41d4-c716-446655440000"), "variant must be 8-b")
	assert.False(t, security.ValidateUUID("1"))
	assert.False(t, security.ValidateUUID(""))
}

func TestValidateFileSize(t *testing.T) {
	for _, ok := range []string{"1.5 GB", "100MB", "2 kb", "512 B", "3TB"} {
		assert.True(t, security.ValidateFileSize(ok), ok)
	}
	for _, ng := range []string{"1.5", "GB", "1,5 GB", "10 PB", "123456789012345678 MB"} {
		assert.False(t, security.ValidateFileSize(ng), ng)
	}
}

func TestValidateFileType(t *testing.T) {
	for _, ok := range []string{"pdf", "Docx", "EXE", "7z", "mp3"} {
		assert.True(t, security.ValidateFileType(ok), ok)
	}
	for _, ng := range []string{"html", "", "pdfpdfpdfpdf"} {
		assert.False(t, security.ValidateFileType(ng), ng)
	}
}

func TestValidateField(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		rule    security.ValidationRule
		valid   bool
		message string
	}{
		{
			name:    "必須項目が空白のみ",
			value:   "   ",
			rule:    security.Rules.ResourceTitle,
			message: "此字段为必填项",
		},
		{
			name:    "タイトルが長すぎる",
			value:   strings.Repeat("a", 201),
			rule:    security.Rules.ResourceTitle,
			message: "最多允许 200 个字符",
		},
		{
			name:  "200文字の中国語タイトル",
			value: strings.Repeat("书", 200),
			rule:  security.Rules.ResourceTitle,
			valid: true,
		},
		{
			name:    "リンクが短すぎる",
			value:   "http://a",
			rule:    security.Rules.ResourceLink,
			message: "最少需要 10 个字符",
		},
		{
			name:    "リンクのプロトコルが不正",
			value:   "ftp://example.com/x",
			rule:    security.Rules.ResourceLink,
			message: "格式不正确",
		},
		{
			name:  "任意項目は空でよい",
			value: "",
			rule:  security.Rules.ResourceDescription,
			valid: true,
		},
		{
			name:    "抽出コードは英数字のみ",
			value:   "ab-12",
			rule:    security.Rules.ExtractionCode,
			message: "格式不正确",
		},
		{
			name:  "スラッグ",
			value: "study-guides",
			rule:  security.Rules.CategorySlug,
			valid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := security.ValidateField(tt.value, tt.rule)
			assert.Equal(t, tt.valid, result.Valid)
			assert.Equal(t, tt.message, result.Error)
		})
	}
}
