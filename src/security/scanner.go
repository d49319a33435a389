package security

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

type dangerCheck struct {
	pattern *regexp.Regexp
	reason  string
}

// 判定は上から順に行い、該当したもの全ての理由を返す
var dangerChecks = []dangerCheck{
	{
		pattern: regexp.MustCompile(`(?i)(\bunion\s+(all\s+)?select\b|\bselect\s+(\*|[\w.]+(\s*,\s*[\w.]+)*)\s+from\s+\w+|\binsert\s+into\b|\bdelete\s+from\b|\bdrop\s+(table|database)\b|\btruncate\s+table\b|\bupdate\s+\w+\s+set\b|\bexec(ute)?\s*\(|['"]\s*(or|and)\s+['"]?\w+['"]?\s*=\s*['"]?\w+)`),
		reason:  "检测到SQL注入特征",
	},
	{
		pattern: regexp.MustCompile(`(?i)<\s*/?\s*script\b`),
		reason:  "检测到脚本标签",
	},
	{
		pattern: regexp.MustCompile(`(?i)\b(javascript|vbscript)\s*:`),
		reason:  "检测到危险的协议",
	},
	{
		pattern: regexp.MustCompile(`(?i)\bon[a-z]+\s*=`),
		reason:  "检测到内联事件处理器",
	},
	{
		pattern: regexp.MustCompile(`\.\.[/\\]`),
		reason:  "检测到路径遍历",
	},
	{
		pattern: regexp.MustCompile(`(?i)(/etc/(passwd|shadow|hosts)|/proc/self|c:\\windows|\.ssh/|\.htaccess|web\.config|(^|[/\s])\.env\b)`),
		reason:  "检测到敏感文件路径",
	},
	{
		pattern: regexp.MustCompile(`(;|&&|\|\|?)\s*(rm|cat|ls|wget|curl|bash|sh|nc|chmod|chown|kill|python|perl)\b|\$\([^)]*\)`),
		reason:  "检测到命令注入特征",
	},
	{
		pattern: regexp.MustCompile(`(?i)<\s*(iframe|object|embed)\b`),
		reason:  "检测到嵌入式标签",
	},
	{
		pattern: regexp.MustCompile(`(?i)data\s*:\s*text/html`),
		reason:  "检测到HTML数据URI",
	},
}

// DangerResult 危険パターン検出の結果
type DangerResult struct {
	IsDangerous bool     `json:"is_dangerous"`
	Reasons     []string `json:"reasons"`
}

// DetectDangerousOperation 自由入力テキストに攻撃的なパターンが含まれていないか調べる
//
// ヒューリスティックな拒否リストであり、パラメータ化クエリや出力時のエスケープの
// 代わりにはならない。
func DetectDangerousOperation(input string) DangerResult {
	result := DangerResult{Reasons: []string{}}
	for _, check := range dangerChecks {
		if check.pattern.MatchString(input) {
			result.Reasons = append(result.Reasons, check.reason)
		}
	}
	result.IsDangerous = len(result.Reasons) > 0
	return result
}

// CheckOptions PerformSecurityCheckのオプション
type CheckOptions struct {
	MinLength      int
	MaxLength      int            // 0の場合は上限なし
	Whitelist      *regexp.Regexp // 指定した場合は一致しない入力をエラーにする
	CheckSensitive bool           // 敏感語を警告として報告する
}

// CheckResult 総合セキュリティチェックの結果
type CheckResult struct {
	Passed   bool     `json:"passed"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// PerformSecurityCheck 長さ・危険パターン・ホワイトリスト・敏感語をまとめてチェック
func PerformSecurityCheck(input string, opts CheckOptions) CheckResult {
	result := CheckResult{Errors: []string{}, Warnings: []string{}}

	length := utf8.RuneCountInString(input)
	if length < opts.MinLength {
		result.Errors = append(result.Errors, fmt.Sprintf("输入长度不能少于 %d 个字符", opts.MinLength))
	}
	if opts.MaxLength > 0 && length > opts.MaxLength {
		result.Errors = append(result.Errors, fmt.Sprintf("输入长度不能超过 %d 个字符", opts.MaxLength))
	}

	danger := DetectDangerousOperation(input)
	result.Errors = append(result.Errors, danger.Reasons...)

	if opts.Whitelist != nil && input != "" && !opts.Whitelist.MatchString(input) {
		result.Errors = append(result.Errors, "输入包含不允许的字符")
	}

	if opts.CheckSensitive && ContainsSensitiveContent(input) {
		result.Warnings = append(result.Warnings, "内容可能包含敏感词")
	}

	result.Passed = len(result.Errors) == 0
	return result
}
