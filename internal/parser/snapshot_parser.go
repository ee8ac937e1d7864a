package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"supervision/internal/model"
	"supervision/internal/sector"
)

// SnapshotParser 交易快照解析器
type SnapshotParser struct {
	resolver sector.Resolver
}

// NewSnapshotParser 创建快照解析器
func NewSnapshotParser(resolver sector.Resolver) *SnapshotParser {
	if resolver == nil {
		resolver = sector.Default()
	}
	return &SnapshotParser{resolver: resolver}
}

// Parse 按格式解析快照
func (p *SnapshotParser) Parse(r io.Reader, format Format) ([]model.Record, *LoadReport, error) {
	if format == FormatWorkbook {
		return p.ParseWorkbook(r)
	}
	return p.ParseText(r)
}

// ParseText 解析分隔符文本，第一行为表头
func (p *SnapshotParser) ParseText(r io.Reader) ([]model.Record, *LoadReport, error) {
	start := time.Now()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte(utf8BOM))

	delim := DetectDelimiter(firstLine(string(data)))
	report := &LoadReport{
		Format:    FormatText,
		Delimiter: string(delim),
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delim
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if errors.Is(err, io.EOF) {
		report.Duration = time.Since(start)
		return []model.Record{}, report, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}

	mapper := NewFieldMapper(headers)
	report.MissingFields = missingNames(mapper)

	records := make([]model.Record, 0, len(data)/128)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				report.warn(perr.Error())
				continue
			}
			return nil, nil, fmt.Errorf("failed to read snapshot row: %w", err)
		}
		if rec, ok := p.normalizeRow(row, mapper, report); ok {
			records = append(records, rec)
		}
	}

	report.Duration = time.Since(start)
	return records, report, nil
}

// ParseWorkbook 解析 Excel 快照（第一个 Sheet，第一行为表头）
func (p *SnapshotParser) ParseWorkbook(r io.Reader) ([]model.Record, *LoadReport, error) {
	start := time.Now()

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("workbook has no sheets")
	}
	report := &LoadReport{
		Format:    FormatWorkbook,
		SheetName: sheets[0],
	}

	// 读取原始值，避免数字格式（如货币样式）把金额渲染成带符号的文本
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(rows) == 0 {
		report.Duration = time.Since(start)
		return []model.Record{}, report, nil
	}

	mapper := NewFieldMapper(rows[0])
	report.MissingFields = missingNames(mapper)

	records := make([]model.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		if rec, ok := p.normalizeRow(row, mapper, report); ok {
			records = append(records, rec)
		}
	}

	report.Duration = time.Since(start)
	return records, report, nil
}

// normalizeRow 标准化单行；缺少区域代码或经销商代码的行被丢弃
func (p *SnapshotParser) normalizeRow(row []string, m *FieldMapper, report *LoadReport) (model.Record, bool) {
	report.TotalRows++

	label := strings.TrimSpace(m.Value(row, FieldSector))
	rec := model.Record{
		SectorLabel:  label,
		SectorCode:   p.resolver.ExtractSectorID(label),
		ResellerCode: strings.TrimSpace(m.Value(row, FieldResellerCode)),
		ResellerName: strings.TrimSpace(m.Value(row, FieldResellerName)),
		BillingCycle: strings.TrimSpace(m.Value(row, FieldBillingCycle)),
		ProductCode:  strings.TrimSpace(m.Value(row, FieldProductCode)),
		ProductName:  strings.TrimSpace(m.Value(row, FieldProductName)),
		ItemQuantity: parseQuantity(m.Value(row, FieldItemQuantity)),
		Kind:         strings.ToLower(strings.TrimSpace(m.Value(row, FieldKind))),
	}

	if rec.SectorCode == "" {
		report.DroppedNoSector++
		return model.Record{}, false
	}
	if rec.ResellerCode == "" {
		report.DroppedNoReseller++
		return model.Record{}, false
	}

	raw := m.Value(row, FieldAmount)
	amount, clean := ParseMoneyStrict(raw)
	if !clean && strings.TrimSpace(raw) != "" {
		report.UncleanAmounts++
	}
	rec.Amount = amount

	report.KeptRows++
	return rec, true
}

func missingNames(m *FieldMapper) []string {
	var out []string
	for _, f := range m.Missing() {
		out = append(out, f.String())
	}
	return out
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// ParseSnapshot 使用内置区域表解析快照
func ParseSnapshot(r io.Reader, format Format) ([]model.Record, *LoadReport, error) {
	return NewSnapshotParser(nil).Parse(r, format)
}
