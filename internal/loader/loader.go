// Package loader 从磁盘加载快照并按修改时间缓存
package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"supervision/internal/logger"
	"supervision/internal/model"
	"supervision/internal/parser"
	"supervision/internal/trace"
)

// ErrSnapshotNotFound 快照文件不存在
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Loader 快照加载器
type Loader struct {
	parser *parser.SnapshotParser
	cache  *Cache
}

// New 创建加载器；参数为 nil 时使用默认解析器和新缓存
func New(p *parser.SnapshotParser, cache *Cache) *Loader {
	if p == nil {
		p = parser.NewSnapshotParser(nil)
	}
	if cache == nil {
		cache = NewCache()
	}
	return &Loader{parser: p, cache: cache}
}

// Cache 返回底层缓存
func (l *Loader) Cache() *Cache {
	return l.cache
}

// Load 加载时段快照
func (l *Loader) Load(ctx context.Context, path string, slot model.Slot) ([]model.Record, error) {
	records, _, err := l.LoadWithReport(ctx, path, slot)
	return records, err
}

// LoadWithReport 加载时段快照并返回解析报告（缓存命中时返回首次解析的报告）
func (l *Loader) LoadWithReport(ctx context.Context, path string, slot model.Slot) ([]model.Record, *parser.LoadReport, error) {
	ctx, span := trace.StartSpan(ctx, "loader.Load",
		attribute.String("slot", string(slot)),
		attribute.String("path", path),
	)
	defer span.End()

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = fmt.Errorf("%w: %s", ErrSnapshotNotFound, path)
		} else {
			err = fmt.Errorf("failed to stat snapshot: %w", err)
		}
		trace.RecordError(span, err)
		return nil, nil, err
	}

	modTime := info.ModTime()
	if records, report, ok := l.cache.Get(slot, modTime); ok {
		span.SetAttributes(attribute.Bool("cache_hit", true))
		return records, report, nil
	}
	span.SetAttributes(attribute.Bool("cache_hit", false))

	records, report, err := l.parseFile(path)
	if err != nil {
		trace.RecordError(span, err)
		return nil, nil, err
	}

	log := logger.FromContext(ctx)
	for _, w := range report.Warnings {
		log.Warn("snapshot parse warning", zap.String("slot", string(slot)), zap.String("warning", w))
	}
	log.Info("snapshot loaded",
		zap.String("slot", string(slot)),
		zap.String("path", path),
		zap.Int("rows", report.TotalRows),
		zap.Int("kept", report.KeptRows),
		zap.Int("dropped_no_sector", report.DroppedNoSector),
		zap.Int("dropped_no_reseller", report.DroppedNoReseller),
		zap.Int("unclean_amounts", report.UncleanAmounts),
		zap.Duration("duration", report.Duration),
	)

	l.cache.Put(slot, modTime, records, report)
	span.SetAttributes(attribute.Int("records", len(records)))
	return records, report, nil
}

// ParseFile 不经缓存直接解析文件
func (l *Loader) ParseFile(path string) ([]model.Record, *parser.LoadReport, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, path)
	}
	return l.parseFile(path)
}

func (l *Loader) parseFile(path string) ([]model.Record, *parser.LoadReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	records, report, err := l.parser.Parse(f, parser.FormatFromPath(path))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse snapshot %s: %w", path, err)
	}
	return records, report, nil
}
