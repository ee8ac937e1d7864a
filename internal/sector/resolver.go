// Package sector 区域代码解析：把人工录入的区域名称对应到标准区域代码。
package sector

import (
	"strings"
)

// Resolver 区域解析器
type Resolver interface {
	// ExtractSectorID 按“前导数字 → 精确匹配 → 模糊匹配”的顺序解析区域代码，无法解析时返回空串
	ExtractSectorID(label string) string
	// FindSectorCode 只做标准表查找（精确 + 模糊），不识别前导数字
	FindSectorCode(label string) string
}

// TableResolver 基于有序标准表的解析器
//
// 模糊匹配按表中顺序返回第一个命中项，短名称可能同时命中多个条目，
// 结果取决于声明顺序。
type TableResolver struct {
	entries []Entry
	exact   map[string]string
	folded  []string
}

var _ Resolver = (*TableResolver)(nil)

// NewTableResolver 创建解析器
func NewTableResolver(entries []Entry) *TableResolver {
	r := &TableResolver{
		entries: append([]Entry(nil), entries...),
		exact:   make(map[string]string, len(entries)),
		folded:  make([]string, len(entries)),
	}
	for i, e := range r.entries {
		key := strings.TrimSpace(e.Label)
		// 重名条目以先声明者为准
		if _, ok := r.exact[key]; !ok {
			r.exact[key] = e.Code
		}
		r.folded[i] = fold(key)
	}
	return r
}

// ExtractSectorID 解析区域代码
func (r *TableResolver) ExtractSectorID(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return ""
	}
	if digits := leadingDigits(label); digits != "" {
		return digits
	}
	return r.FindSectorCode(label)
}

// FindSectorCode 标准表查找
func (r *TableResolver) FindSectorCode(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return ""
	}

	if code, ok := r.exact[label]; ok {
		return code
	}

	needle := fold(label)
	if needle == "" {
		return ""
	}
	for i, key := range r.folded {
		if key == "" {
			continue
		}
		if strings.Contains(needle, key) || strings.Contains(key, needle) {
			return r.entries[i].Code
		}
	}
	return ""
}

// Entries 返回标准表副本
func (r *TableResolver) Entries() []Entry {
	return append([]Entry(nil), r.entries...)
}

// fold 小写并压缩空白
func fold(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func leadingDigits(s string) string {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:end]
}

// IsNumeric 是否全部为数字
func IsNumeric(s string) bool {
	return s != "" && leadingDigits(s) == s
}
