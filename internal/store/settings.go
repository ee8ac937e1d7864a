package store

import (
	"context"
	"sync"

	"supervision/internal/model"
)

// SettingsStore 业务配置：默认值来自配置文件，修改持久化到 SQLite
type SettingsStore struct {
	store    *Store
	defaults model.Settings
	mu       sync.Mutex // 串行化读-改-写
}

// NewSettingsStore 创建配置存储
func NewSettingsStore(store *Store, defaults model.Settings) *SettingsStore {
	return &SettingsStore{store: store, defaults: defaults.Clone()}
}

// GetSettings 当前业务配置
func (s *SettingsStore) GetSettings(ctx context.Context) (model.Settings, error) {
	return s.store.LoadSettings(ctx, s.defaults)
}

// UpdateSettings 校验并保存局部更新
func (s *SettingsStore) UpdateSettings(ctx context.Context, patch model.SettingsPatch) (model.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.store.LoadSettings(ctx, s.defaults)
	if err != nil {
		return model.Settings{}, err
	}

	next := patch.Apply(current)
	if problems := model.ValidateSettings(next); len(problems) > 0 {
		return model.Settings{}, &model.ValidationError{Problems: problems}
	}
	if err := s.store.SaveSettings(ctx, next); err != nil {
		return model.Settings{}, err
	}
	return next, nil
}
