package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// 上传状态
const (
	UploadProcessing = "processing"
	UploadCompleted  = "completed"
	UploadFailed     = "failed"
)

// UploadLog 快照上传记录
type UploadLog struct {
	ID           int64      `json:"id"`
	UploadID     string     `json:"uploadId"`
	Slot         string     `json:"slot"`
	Filename     string     `json:"filename"`
	StoredPath   string     `json:"storedPath"`
	FileSize     int64      `json:"fileSize"`
	FileHash     string     `json:"fileHash"`
	Status       string     `json:"status"`
	TotalRows    int        `json:"totalRows"`
	KeptRows     int        `json:"keptRows"`
	DroppedRows  int        `json:"droppedRows"`
	ErrorMessage string     `json:"errorMessage,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
}

// CreateUploadLog 创建上传日志，返回自增 id
func (s *Store) CreateUploadLog(ctx context.Context, uploadID, slot, filename string, fileSize int64, fileHash string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO upload_logs (upload_id, slot, filename, file_size, file_hash, status)
		VALUES (?, ?, ?, ?, ?, ?)
	`, uploadID, slot, filename, fileSize, fileHash, UploadProcessing)
	if err != nil {
		return 0, fmt.Errorf("failed to create upload log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get upload log id: %w", err)
	}
	return id, nil
}

// CompleteUploadLog 完成上传日志
func (s *Store) CompleteUploadLog(ctx context.Context, id int64, storedPath string, totalRows, keptRows, droppedRows int, status, errorMessage string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE upload_logs SET
			stored_path = ?,
			total_rows = ?,
			kept_rows = ?,
			dropped_rows = ?,
			status = ?,
			error_message = ?,
			completed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, storedPath, totalRows, keptRows, droppedRows, status, errorMessage, id)
	if err != nil {
		return fmt.Errorf("failed to update upload log: %w", err)
	}
	return nil
}

// ListUploadLogs 最近的上传日志（按 id 倒序）
func (s *Store) ListUploadLogs(ctx context.Context, limit int) ([]UploadLog, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, upload_id, slot, filename, stored_path, file_size, file_hash, status,
		       total_rows, kept_rows, dropped_rows, error_message, created_at, completed_at
		FROM upload_logs
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query upload logs failed: %w", err)
	}
	defer rows.Close()

	out := make([]UploadLog, 0, limit)
	for rows.Next() {
		var (
			it        UploadLog
			completed sql.NullTime
		)
		if err := rows.Scan(&it.ID, &it.UploadID, &it.Slot, &it.Filename, &it.StoredPath, &it.FileSize, &it.FileHash,
			&it.Status, &it.TotalRows, &it.KeptRows, &it.DroppedRows, &it.ErrorMessage, &it.CreatedAt, &completed); err != nil {
			return nil, fmt.Errorf("scan upload log failed: %w", err)
		}
		if completed.Valid {
			t := completed.Time
			it.CompletedAt = &t
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate upload logs failed: %w", err)
	}
	return out, nil
}
