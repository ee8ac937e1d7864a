package parser

import "time"

// Format 快照文件格式
type Format string

const (
	FormatText     Format = "text" // 分隔符文本（| ; ,）
	FormatWorkbook Format = "xlsx" // Excel 工作簿（第一个 Sheet）
)

// maxWarnings 报告中保留的解析告警条数
const maxWarnings = 5

// LoadReport 解析报告（被丢弃的行不作为错误返回，只在此计数）
type LoadReport struct {
	Format            Format        `json:"format"`
	Delimiter         string        `json:"delimiter,omitempty"`
	SheetName         string        `json:"sheetName,omitempty"`
	MissingFields     []string      `json:"missingFields,omitempty"`
	TotalRows         int           `json:"totalRows"`
	KeptRows          int           `json:"keptRows"`
	DroppedNoSector   int           `json:"droppedNoSector"`
	DroppedNoReseller int           `json:"droppedNoReseller"`
	UncleanAmounts    int           `json:"uncleanAmounts"` // 金额文本不是干净数字（按 0 或数字前缀处理）
	MalformedLines    int           `json:"malformedLines"`
	Warnings          []string      `json:"warnings,omitempty"`
	Duration          time.Duration `json:"duration"`
}

func (r *LoadReport) warn(msg string) {
	r.MalformedLines++
	if len(r.Warnings) < maxWarnings {
		r.Warnings = append(r.Warnings, msg)
	}
}
