package usecase

import (
	"regexp"
	"strings"
)

var (
	shareTitlePattern = regexp.MustCompile(`(?i)(?:通过网盘分享的文件：|文件名：|标题：)([^链接]+)`)
	shareLinkPattern  = regexp.MustCompile(`(?i)链接[:：]\s*(https?://\S+)`)
	shareCodePattern  = regexp.MustCompile(`(?i)提取码[:：]\s*([a-zA-Z0-9]+)`)
)

// ShareText 網盤の共有テキストから取り出した値。見つからない項目は空文字列
type ShareText struct {
	Title          string `json:"title"`
	Link           string `json:"link"`
	ExtractionCode string `json:"extraction_code"`
}

// ParseShareText "通过网盘分享的文件：X 链接: URL 提取码: CODE" 形式のテキストを解析する
func ParseShareText(text string) ShareText {
	var result ShareText
	if m := shareTitlePattern.FindStringSubmatch(text); m != nil {
		result.Title = strings.TrimSpace(m[1])
	}
	if m := shareLinkPattern.FindStringSubmatch(text); m != nil {
		result.Link = strings.TrimSpace(m[1])
	}
	if m := shareCodePattern.FindStringSubmatch(text); m != nil {
		result.ExtractionCode = strings.TrimSpace(m[1])
	}
	return result
}
