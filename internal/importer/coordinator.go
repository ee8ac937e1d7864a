// Package importer 校验并安装上传的快照文件
package importer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"supervision/internal/dashboard"
	"supervision/internal/loader"
	"supervision/internal/logger"
	"supervision/internal/model"
	"supervision/internal/parser"
	"supervision/internal/store"
	"supervision/internal/trace"
)

// MaxUploadSize 上传文件大小上限
const MaxUploadSize int64 = 50 << 20

var (
	ErrInvalidSlot     = errors.New("invalid snapshot slot")
	ErrUnsupportedFile = errors.New("unsupported snapshot file")
	ErrEmptySnapshot   = errors.New("snapshot has no valid records")
	ErrTooLarge        = errors.New("snapshot file too large")
)

// UploadLogger 上传日志记录（由 store.Store 实现）
type UploadLogger interface {
	CreateUploadLog(ctx context.Context, uploadID, slot, filename string, fileSize int64, fileHash string) (int64, error)
	CompleteUploadLog(ctx context.Context, id int64, storedPath string, totalRows, keptRows, droppedRows int, status, errorMessage string) error
}

// Coordinator 导入协调器
type Coordinator struct {
	dataDir string
	parser  *parser.SnapshotParser
	loader  *loader.Loader
	logs    UploadLogger
}

// NewCoordinator 创建导入协调器；logs 可为 nil
func NewCoordinator(dataDir string, p *parser.SnapshotParser, l *loader.Loader, logs UploadLogger) *Coordinator {
	if p == nil {
		p = parser.NewSnapshotParser(nil)
	}
	if l == nil {
		l = loader.New(p, nil)
	}
	return &Coordinator{dataDir: dataDir, parser: p, loader: l, logs: logs}
}

// Request 上传请求
type Request struct {
	Slot     string
	Filename string
	Body     io.Reader
}

// Result 导入结果
type Result struct {
	UploadID   string             `json:"uploadId"`
	Slot       model.Slot         `json:"slot"`
	Filename   string             `json:"filename"`
	StoredPath string             `json:"storedPath"`
	Size       int64              `json:"size"`
	SHA256     string             `json:"sha256"`
	Report     *parser.LoadReport `json:"report"`
	ImportedAt time.Time          `json:"importedAt"`
}

// AllowedExtension 是否为支持的快照扩展名
func AllowedExtension(filename string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range dashboard.SnapshotExtensions {
		if ext == allowed {
			return ext, true
		}
	}
	return ext, false
}

// Import 校验上传文件并原子替换时段快照，同时预热缓存
func (c *Coordinator) Import(ctx context.Context, req Request) (*Result, error) {
	ctx, span := trace.StartSpan(ctx, "importer.Import",
		attribute.String("slot", req.Slot),
		attribute.String("filename", req.Filename),
	)
	defer span.End()

	res, err := c.doImport(ctx, req)
	if err != nil {
		trace.RecordError(span, err)
		logger.FromContext(ctx).Warn("snapshot import failed",
			zap.String("slot", req.Slot),
			zap.String("filename", req.Filename),
			zap.Error(err),
		)
		return nil, err
	}

	logger.FromContext(ctx).Info("snapshot imported",
		zap.String("upload_id", res.UploadID),
		zap.String("slot", string(res.Slot)),
		zap.String("path", res.StoredPath),
		zap.Int64("size", res.Size),
		zap.Int("kept", res.Report.KeptRows),
	)
	return res, nil
}

func (c *Coordinator) doImport(ctx context.Context, req Request) (*Result, error) {
	slot, err := model.ParseSlot(req.Slot)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSlot, req.Slot)
	}
	filename := filepath.Base(req.Filename)
	ext, ok := AllowedExtension(filename)
	if !ok {
		return nil, fmt.Errorf("%w: %q (use .csv, .txt or .xlsx)", ErrUnsupportedFile, filename)
	}
	if err := os.MkdirAll(c.dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	res := &Result{
		UploadID:   uuid.NewString(),
		Slot:       slot,
		Filename:   filename,
		ImportedAt: time.Now(),
	}

	tmp, size, hash, err := c.writeTemp(req.Body, ext)
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp) // 重命名成功后为空操作
	res.Size, res.SHA256 = size, hash

	var logID int64
	if c.logs != nil {
		logID, err = c.logs.CreateUploadLog(ctx, res.UploadID, string(slot), filename, size, hash)
		if err != nil {
			return nil, err
		}
	}

	records, report, err := c.validate(tmp)
	if err == nil {
		err = c.install(ctx, tmp, slot, ext, records, report, res)
	}

	if c.logs != nil {
		status, msg := store.UploadCompleted, ""
		if err != nil {
			status, msg = store.UploadFailed, err.Error()
		}
		var total, kept int
		if report != nil {
			total, kept = report.TotalRows, report.KeptRows
		}
		if logErr := c.logs.CompleteUploadLog(ctx, logID, res.StoredPath, total, kept, total-kept, status, msg); logErr != nil {
			logger.FromContext(ctx).Warn("failed to complete upload log", zap.Error(logErr))
		}
	}
	if err != nil {
		return nil, err
	}

	res.Report = report
	return res, nil
}

// writeTemp 写入数据目录下的临时文件，同时计算大小和 SHA-256
func (c *Coordinator) writeTemp(body io.Reader, ext string) (string, int64, string, error) {
	f, err := os.CreateTemp(c.dataDir, ".upload-*"+ext)
	if err != nil {
		return "", 0, "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(io.MultiWriter(f, h), io.LimitReader(body, MaxUploadSize+1))
	if err == nil && n > MaxUploadSize {
		err = fmt.Errorf("%w: limit is %d MB", ErrTooLarge, MaxUploadSize>>20)
	}
	if err == nil {
		err = f.Sync()
	}
	if err != nil {
		f.Close()
		os.Remove(f.Name())
		if errors.Is(err, ErrTooLarge) {
			return "", 0, "", err
		}
		return "", 0, "", fmt.Errorf("failed to write upload: %w", err)
	}
	return f.Name(), n, hex.EncodeToString(h.Sum(nil)), nil
}

// validate 解析临时文件，至少保留一条记录
func (c *Coordinator) validate(path string) ([]model.Record, *parser.LoadReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	records, report, err := c.parser.Parse(f, parser.FormatFromPath(path))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnsupportedFile, err)
	}
	if len(records) == 0 {
		return nil, report, fmt.Errorf("%w: %d rows read", ErrEmptySnapshot, report.TotalRows)
	}
	return records, report, nil
}

// install 重命名为正式快照，删除其他扩展名的旧快照，并写入缓存
func (c *Coordinator) install(ctx context.Context, tmp string, slot model.Slot, ext string, records []model.Record, report *parser.LoadReport, res *Result) error {
	base := filepath.Join(c.dataDir, dashboard.SnapshotBase(slot))
	final := base + ext
	if err := os.Rename(tmp, final); err != nil {
		return fmt.Errorf("failed to install snapshot: %w", err)
	}
	res.StoredPath = final

	for _, other := range dashboard.SnapshotExtensions {
		if other == ext {
			continue
		}
		if err := os.Remove(base + other); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.FromContext(ctx).Warn("failed to remove stale snapshot", zap.String("path", base+other), zap.Error(err))
		}
	}

	st, err := os.Stat(final)
	if err != nil {
		return fmt.Errorf("failed to stat snapshot: %w", err)
	}
	c.loader.Cache().Put(slot, st.ModTime(), records, report)
	return nil
}
