package logic

import (
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// NormalizeIssueURL 归一化 issue 地址，作为 bounty_tip_link 的键：
// 小写协议与域名、去掉末尾斜杠、丢弃查询串和锚点。
func NormalizeIssueURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Host == "" {
		return strings.TrimRight(strings.ToLower(trimmed), "/")
	}
	path := strings.TrimRight(parsed.Path, "/")
	return strings.ToLower(parsed.Scheme) + "://" + strings.ToLower(parsed.Host) + path
}

func decimalOrNull(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: true}
}
