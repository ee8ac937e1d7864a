package loader

import (
	"sync"
	"time"

	"supervision/internal/model"
	"supervision/internal/parser"
)

// entry 单个时段的缓存项
type entry struct {
	records []model.Record
	report  *parser.LoadReport
	modTime time.Time
}

// Cache 快照缓存，每个时段最多一项，以源文件修改时间为键，不按时间过期
type Cache struct {
	entries map[model.Slot]entry
	mu      sync.RWMutex
}

// NewCache 创建缓存
func NewCache() *Cache {
	return &Cache{entries: make(map[model.Slot]entry)}
}

// Get 修改时间一致时命中
func (c *Cache) Get(slot model.Slot, modTime time.Time) ([]model.Record, *parser.LoadReport, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[slot]
	if !ok || !e.modTime.Equal(modTime) {
		return nil, nil, false
	}
	return e.records, e.report, true
}

// Put 替换时段缓存
func (c *Cache) Put(slot model.Slot, modTime time.Time, records []model.Record, report *parser.LoadReport) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[slot] = entry{records: records, report: report, modTime: modTime}
}

// Invalidate 清除时段缓存
func (c *Cache) Invalidate(slot model.Slot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, slot)
}

// ModTime 缓存中记录的源文件修改时间
func (c *Cache) ModTime(slot model.Slot) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[slot]
	return e.modTime, ok
}
