// Package watcher 监听数据目录，快照文件变化时预热缓存
package watcher

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"supervision/internal/dashboard"
	"supervision/internal/loader"
	"supervision/internal/logger"
	"supervision/internal/model"
)

// DefaultDebounce 写入结束后等待的时间
const DefaultDebounce = 500 * time.Millisecond

// Watcher 快照目录监听
type Watcher struct {
	dataDir  string
	loader   *loader.Loader
	debounce time.Duration
	onReload func(model.Slot, error) // 测试钩子

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	timers  map[model.Slot]*time.Timer
}

// New 创建监听器
func New(dataDir string, l *loader.Loader, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		dataDir:  dataDir,
		loader:   l,
		debounce: debounce,
		timers:   make(map[model.Slot]*time.Timer),
	}
}

// OnReload 设置每次预热后的回调
func (w *Watcher) OnReload(fn func(model.Slot, error)) {
	w.mu.Lock()
	w.onReload = fn
	w.mu.Unlock()
}

// Start 开始监听，ctx 结束时自动关闭；启动时先预热已有快照
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.watcher != nil {
		w.mu.Unlock()
		return errors.New("watcher already started")
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	w.watcher = fw
	w.mu.Unlock()

	if err := fw.Add(w.dataDir); err != nil {
		_ = w.Close()
		return err
	}

	for _, slot := range model.Slots() {
		w.warm(ctx, slot)
	}

	go w.loop(ctx, fw)
	return nil
}

func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher) {
	log := logger.FromContext(ctx)
	for {
		select {
		case <-ctx.Done():
			_ = w.Close()
			return
		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			slot, ok := slotFromName(event.Name)
			if !ok {
				continue
			}
			switch {
			case event.Op&(fsnotify.Create|fsnotify.Write) != 0:
				w.schedule(ctx, slot)
			case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				// 可能是替换为其他扩展名，重新检查
				w.loader.Cache().Invalidate(slot)
				w.schedule(ctx, slot)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			log.Warn("snapshot watcher error", zap.Error(err))
		}
	}
}

// schedule 去抖：同一时段的连续写入只触发一次加载
func (w *Watcher) schedule(ctx context.Context, slot model.Slot) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[slot]; ok {
		t.Stop()
	}
	w.timers[slot] = time.AfterFunc(w.debounce, func() {
		w.warm(ctx, slot)
	})
}

func (w *Watcher) warm(ctx context.Context, slot model.Slot) {
	path, ok := dashboard.SnapshotPath(w.dataDir, slot)
	var err error
	if ok {
		_, err = w.loader.Load(ctx, path, slot)
		if err != nil {
			logger.FromContext(ctx).Warn("snapshot warm-up failed", zap.String("slot", string(slot)), zap.Error(err))
		}
	}

	w.mu.Lock()
	fn := w.onReload
	w.mu.Unlock()
	if fn != nil && ok {
		fn(slot, err)
	}
}

// Close 停止监听
func (w *Watcher) Close() error {
	w.mu.Lock()
	fw := w.watcher
	w.watcher = nil
	for slot, t := range w.timers {
		t.Stop()
		delete(w.timers, slot)
	}
	w.mu.Unlock()
	if fw != nil {
		return fw.Close()
	}
	return nil
}

// slotFromName 从 snapshot_<slot>.<ext> 解析时段
func slotFromName(path string) (model.Slot, bool) {
	name := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(name))
	valid := false
	for _, e := range dashboard.SnapshotExtensions {
		if ext == e {
			valid = true
			break
		}
	}
	if !valid {
		return "", false
	}
	base := strings.TrimSuffix(name, filepath.Ext(name))
	for _, slot := range model.Slots() {
		if base == dashboard.SnapshotBase(slot) {
			return slot, true
		}
	}
	return "", false
}
