package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"supervision/internal/model"
)

// ErrConfigNotFound 配置项不存在
var ErrConfigNotFound = errors.New("config key not found")

// 业务配置键
const (
	keyCurrentCycle = "current_cycle"
	keyActiveSlot   = "active_slot"
	keyWeights      = "weights"
	keyRiskPercent  = "risk_percent"
)

// GetConfig 获取配置项
func (s *Store) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%w: %s", ErrConfigNotFound, key)
		}
		return "", err
	}
	return value, nil
}

// SetConfig 设置配置项
func (s *Store) SetConfig(ctx context.Context, key, value string) error {
	return setConfig(ctx, s.db, key, value)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func setConfig(ctx context.Context, db execer, key, value string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = ?, updated_at = CURRENT_TIMESTAMP
	`, key, value, value)
	if err != nil {
		return fmt.Errorf("failed to set config %s: %w", key, err)
	}
	return nil
}

// GetAllConfig 获取所有配置项
func (s *Store) GetAllConfig(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM config")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	config := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		config[key] = value
	}

	return config, rows.Err()
}

// LoadSettings 读取业务配置；未保存的字段使用 defaults
func (s *Store) LoadSettings(ctx context.Context, defaults model.Settings) (model.Settings, error) {
	all, err := s.GetAllConfig(ctx)
	if err != nil {
		return model.Settings{}, fmt.Errorf("failed to read settings: %w", err)
	}

	out := defaults.Clone()
	if v, ok := all[keyCurrentCycle]; ok {
		out.CurrentCycle = v
	}
	if v, ok := all[keyActiveSlot]; ok {
		slot, err := model.ParseSlot(v)
		if err != nil {
			return model.Settings{}, fmt.Errorf("stored %s: %w", keyActiveSlot, err)
		}
		out.ActiveSlot = slot
	}
	if v, ok := all[keyRiskPercent]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return model.Settings{}, fmt.Errorf("stored %s: %w", keyRiskPercent, err)
		}
		out.RiskPercent = n
	}
	if v, ok := all[keyWeights]; ok {
		weights := make(map[string]float64)
		if err := json.Unmarshal([]byte(v), &weights); err != nil {
			return model.Settings{}, fmt.Errorf("stored %s: %w", keyWeights, err)
		}
		out.Weights = weights
	}
	return out, nil
}

// SaveSettings 在一个事务内保存全部业务配置
func (s *Store) SaveSettings(ctx context.Context, settings model.Settings) error {
	weights, err := json.Marshal(settings.Weights)
	if err != nil {
		return fmt.Errorf("failed to encode weights: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	values := [][2]string{
		{keyCurrentCycle, settings.CurrentCycle},
		{keyActiveSlot, string(settings.ActiveSlot)},
		{keyRiskPercent, strconv.Itoa(settings.RiskPercent)},
		{keyWeights, string(weights)},
	}
	for _, kv := range values {
		if err := setConfig(ctx, tx, kv[0], kv[1]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit settings: %w", err)
	}
	return nil
}
