package dashboard

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"supervision/internal/model"
)

// SnapshotExtensions 支持的快照扩展名（查找顺序）
var SnapshotExtensions = []string{".csv", ".txt", ".xlsx"}

// SnapshotBase 时段快照的文件名（不含扩展名）
func SnapshotBase(slot model.Slot) string {
	return "snapshot_" + string(slot)
}

// SnapshotPath 返回时段快照路径；都不存在时返回 .csv 路径和 false
func SnapshotPath(dataDir string, slot model.Slot) (string, bool) {
	base := filepath.Join(dataDir, SnapshotBase(slot))
	for _, ext := range SnapshotExtensions {
		p := base + ext
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, true
		}
	}
	return base + SnapshotExtensions[0], false
}

// SnapshotInfo 快照文件状态
type SnapshotInfo struct {
	Slot     model.Slot `json:"slot"`
	Exists   bool       `json:"exists"`
	Path     string     `json:"path"`
	Size     int64      `json:"size"`
	Modified *time.Time `json:"modified"`
}

// Stat 查询时段快照状态
func Stat(dataDir string, slot model.Slot) (SnapshotInfo, error) {
	path, ok := SnapshotPath(dataDir, slot)
	info := SnapshotInfo{Slot: slot, Path: path}
	if !ok {
		return info, nil
	}

	st, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return info, nil
	}
	if err != nil {
		return info, err
	}
	mod := st.ModTime()
	info.Exists = true
	info.Size = st.Size()
	info.Modified = &mod
	return info, nil
}
