package parser

import (
	"path/filepath"
	"strings"
)

const utf8BOM = "\ufeff"

// NormalizeColumnName 规范化列名：去除 BOM 与首尾空白
func NormalizeColumnName(name string) string {
	name = strings.TrimPrefix(name, utf8BOM)
	return strings.TrimSpace(name)
}

// candidateDelimiters 参与检测的分隔符，顺序即平局时的比较顺序
var candidateDelimiters = []rune{'|', ';', ','}

// DetectDelimiter 根据表头行检测分隔符：出现次数最多者胜出，平局或都未出现时用逗号
func DetectDelimiter(headerLine string) rune {
	best := ','
	bestCount := 0
	tie := false

	for _, d := range candidateDelimiters {
		n := strings.Count(headerLine, string(d))
		switch {
		case n > bestCount:
			best, bestCount, tie = d, n, false
		case n == bestCount && n > 0:
			tie = true
		}
	}

	if bestCount == 0 || tie {
		return ','
	}
	return best
}

// firstLine 取文本第一行（不含换行符）
func firstLine(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSuffix(text, "\r")
}

// FormatFromPath 按扩展名判断快照格式
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return FormatWorkbook
	}
	return FormatText
}
