package security

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	uuidPattern     = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[1-5][0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)
	fileSizePattern = regexp.MustCompile(`(?i)^\d+(\.\d+)?\s*(B|KB|MB|GB|TB)$`)

	allowedFileTypes = map[string]bool{
		"PDF": true, "DOC": true, "DOCX": true, "XLS": true, "XLSX": true, "PPT": true, "PPTX": true,
		"TXT": true, "RTF": true, "ZIP": true, "RAR": true, "7Z": true,
		"MP4": true, "AVI": true, "MKV": true, "MOV": true, "WMV": true,
		"MP3": true, "WAV": true, "FLAC": true, "AAC": true,
		"JPG": true, "JPEG": true, "PNG": true, "GIF": true, "BMP": true, "SVG": true,
		"EXE": true, "MSI": true, "DMG": true, "APK": true,
	}
)

// ValidateEmail メールアドレスの形式をチェック
func ValidateEmail(email string) bool {
	return len(email) <= 255 && emailPattern.MatchString(email)
}

// ValidateURL http/httpsのURLかをチェック
func ValidateURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// ValidateUUID UUID(v1-v5)の形式をチェック
func ValidateUUID(id string) bool {
	return uuidPattern.MatchString(id)
}

// ValidateFileSize "1.5 GB" のようなサイズ表記をチェック
func ValidateFileSize(size string) bool {
	return len(size) <= 20 && fileSizePattern.MatchString(size)
}

// ValidateFileType 許可されたファイル種別かチェック
func ValidateFileType(fileType string) bool {
	return len(fileType) <= 10 && allowedFileTypes[strings.ToUpper(fileType)]
}

// ValidationRule フィールドの検証ルール
type ValidationRule struct {
	MinLength int
	MaxLength int
	Required  bool
	Pattern   *regexp.Regexp
}

// FieldResult フィールド検証の結果
type FieldResult struct {
	Valid bool
	Error string
}

// Rules 入力フィールドごとの検証ルール
var Rules = struct {
	ResourceTitle       ValidationRule
	ResourceDescription ValidationRule
	ResourceLink        ValidationRule
	ExtractionCode      ValidationRule
	CategoryName        ValidationRule
	CategorySlug        ValidationRule
	CategoryDescription ValidationRule
	RequestResourceName ValidationRule
	RequestDescription  ValidationRule
	RequesterEmail      ValidationRule
	ContactInfo         ValidationRule
}{
	ResourceTitle:       ValidationRule{MinLength: 1, MaxLength: 200, Required: true},
	ResourceDescription: ValidationRule{MinLength: 0, MaxLength: 1000},
	ResourceLink:        ValidationRule{MinLength: 10, MaxLength: 500, Required: true, Pattern: regexp.MustCompile(`^https?://.+`)},
	ExtractionCode:      ValidationRule{MinLength: 0, MaxLength: 50, Pattern: regexp.MustCompile(`^[a-zA-Z0-9]*$`)},
	CategoryName:        ValidationRule{MinLength: 1, MaxLength: 100, Required: true},
	CategorySlug:        ValidationRule{MinLength: 1, MaxLength: 100, Required: true, Pattern: regexp.MustCompile(`^[a-z0-9-]+$`)},
	CategoryDescription: ValidationRule{MinLength: 0, MaxLength: 500},
	RequestResourceName: ValidationRule{MinLength: 1, MaxLength: 200, Required: true},
	RequestDescription:  ValidationRule{MinLength: 0, MaxLength: 1000},
	RequesterEmail:      ValidationRule{MinLength: 5, MaxLength: 255, Required: true, Pattern: emailPattern},
	ContactInfo:         ValidationRule{MinLength: 0, MaxLength: 500},
}

// ValidateField ルールに従って値を検証する。メッセージはフロントエンドにそのまま表示される
func ValidateField(value string, rule ValidationRule) FieldResult {
	if rule.Required && strings.TrimSpace(value) == "" {
		return FieldResult{Valid: false, Error: "此字段为必填项"}
	}

	length := utf8.RuneCountInString(value)
	if value != "" && length < rule.MinLength {
		return FieldResult{Valid: false, Error: fmt.Sprintf("最少需要 %d 个字符", rule.MinLength)}
	}

	if value != "" && length > rule.MaxLength {
		return FieldResult{Valid: false, Error: fmt.Sprintf("最多允许 %d 个字符", rule.MaxLength)}
	}

	if rule.Pattern != nil && value != "" && !rule.Pattern.MatchString(value) {
		return FieldResult{Valid: false, Error: "格式不正确"}
	}

	return FieldResult{Valid: true}
}
