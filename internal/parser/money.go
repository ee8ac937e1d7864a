package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// 与常见的宽松数字解析一致：允许数字前缀后跟任意文本（"12 un" -> 12）
var numberPrefix = regexp.MustCompile(`^[+-]?(\d+(\.\d+)?|\.\d+)([eE][+-]?\d+)?`)

// maxExponent 金额允许的最大十进制指数绝对值，超出视为无法解析
const maxExponent = 20

// ParseMoney 解析金额文本，兼容 1.234,56 与 1,234.56 两种写法。
// 空值或无法解析时返回 0，不报错。
func ParseMoney(text string) decimal.Decimal {
	d, _ := ParseMoneyStrict(text)
	return d
}

// ParseMoneyStrict 同 ParseMoney，额外返回文本是否为一个干净的数字。
// ok=false 时返回值可能为 0（完全无法解析）或数字前缀。
func ParseMoneyStrict(text string) (decimal.Decimal, bool) {
	cleaned := normalizeSeparators(strings.TrimSpace(text))
	if cleaned == "" {
		return decimal.Zero, false
	}

	m := numberPrefix.FindString(cleaned)
	if m == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(m)
	if err != nil || !inRange(d) {
		return decimal.Zero, false
	}
	return d, m == cleaned
}

// inRange 指数过大的值在后续加法对齐精度时会展开成超长整数
func inRange(d decimal.Decimal) bool {
	exp := d.Exponent()
	return exp <= maxExponent && exp >= -maxExponent
}

// normalizeSeparators 统一小数点：同时出现 , 和 . 时，靠后的是小数点，另一个视为千分位
func normalizeSeparators(s string) string {
	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")

	switch {
	case hasComma && hasDot:
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case hasComma:
		return strings.Replace(s, ",", ".", 1)
	}
	return s
}

// NormalizeValue 把任意值转换为金额（数字原样返回，文本走 ParseMoney）
func NormalizeValue(v any) decimal.Decimal {
	switch val := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		if !inRange(val) {
			return decimal.Zero
		}
		return val
	case float64:
		return decimal.NewFromFloat(val)
	case float32:
		return decimal.NewFromFloat32(val)
	case int:
		return decimal.NewFromInt(int64(val))
	case int64:
		return decimal.NewFromInt(val)
	case string:
		return ParseMoney(val)
	default:
		return ParseMoney(fmt.Sprint(val))
	}
}

// parseQuantity 解析件数：取前导整数，无法解析或不为正数时按 1 处理
func parseQuantity(s string) int {
	s = strings.TrimPrefix(strings.TrimSpace(s), "+")
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil || n <= 0 {
		return 1
	}
	return n
}
