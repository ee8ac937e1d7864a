// Package config 应用配置：config.toml + 环境变量覆盖
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"supervision/internal/model"
)

// FileName 默认配置文件名
const FileName = "config.toml"

// AppConfig 应用配置
type AppConfig struct {
	Server   ServerConfig   `toml:"server"`
	Data     DataConfig     `toml:"data"`
	Log      LogConfig      `toml:"log"`
	Business BusinessConfig `toml:"business"`

	baseDir string // 相对路径的基准目录（配置文件所在目录）
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// DataConfig 数据配置
type DataConfig struct {
	DataDir string `toml:"data_dir"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level   string `toml:"level"`
	Format  string `toml:"format"` // json 或 console
	Tracing bool   `toml:"tracing"`
}

// BusinessConfig 业务配置默认值（运行中可通过 API 修改并保存到数据库）
type BusinessConfig struct {
	CurrentCycle string             `toml:"current_cycle"`
	ActiveSlot   string             `toml:"active_slot"`
	RiskPercent  int                `toml:"risk_percent"`
	Weights      map[string]float64 `toml:"weights"`
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	Path          string
	Found         bool
	PortSpecified bool
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    3001,
			DevMode: false,
		},
		Data: DataConfig{
			DataDir: "data",
		},
		Log: LogConfig{
			Level:  "INFO",
			Format: "json",
		},
		Business: BusinessConfig{
			CurrentCycle: "01/2026",
			ActiveSlot:   string(model.SlotAfternoon),
			RiskPercent:  30,
			Weights: map[string]float64{
				"01/2026": 8,
				"02/2026": 11,
				"03/2026": 11,
				"04/2026": 12,
				"05/2026": 11,
				"06/2026": 15,
				"07/2026": 10,
				"08/2026": 11,
				"09/2026": 10,
			},
		},
		baseDir: ".",
	}
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// DefaultPath 可执行文件同目录下的 config.toml
func DefaultPath() string {
	exeDir, err := GetExeDir()
	if err != nil {
		// 无法获取可执行文件目录，使用当前目录
		exeDir = "."
	}
	return filepath.Join(exeDir, FileName)
}

// LoadConfigWithInfo 加载配置；path 为空时使用 DefaultPath，文件不存在时使用默认配置
func LoadConfigWithInfo(path string) (*AppConfig, LoadConfigInfo, error) {
	if path == "" {
		path = DefaultPath()
	}
	info := LoadConfigInfo{Path: path}
	config := DefaultConfig()
	config.baseDir = filepath.Dir(path)

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// 配置文件不存在，使用默认配置
	case err != nil:
		return nil, info, fmt.Errorf("failed to read config: %w", err)
	default:
		info.Found = true
		info.PortSpecified = isPortSpecifiedInToml(data)
		defaults := config.Business.Weights
		config.Business.Weights = nil // 文件中的权重整体替换默认值
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if config.Business.Weights == nil {
			config.Business.Weights = defaults
		}
	}

	if err := applyEnv(config, &info); err != nil {
		return nil, info, err
	}
	if err := config.Validate(); err != nil {
		return nil, info, err
	}
	return config, info, nil
}

// LoadConfig 加载配置
func LoadConfig(path string) (*AppConfig, error) {
	config, _, err := LoadConfigWithInfo(path)
	return config, err
}

// applyEnv 环境变量覆盖（可由 .env 提供）
func applyEnv(config *AppConfig, info *LoadConfigInfo) error {
	if v := os.Getenv("SUPERVISION_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SUPERVISION_PORT %q: %w", v, err)
		}
		config.Server.Port = port
		info.PortSpecified = true
	}
	if v := os.Getenv("SUPERVISION_DATA_DIR"); v != "" {
		config.Data.DataDir = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		config.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		config.Log.Format = v
	}
	if v := os.Getenv("LOG_TRACING_ENABLED"); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid LOG_TRACING_ENABLED %q: %w", v, err)
		}
		config.Log.Tracing = on
	}
	return nil
}

// Validate 校验配置
func (c *AppConfig) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if strings.TrimSpace(c.Data.DataDir) == "" {
		return errors.New("data_dir must not be empty")
	}
	if problems := model.ValidateSettings(c.Settings()); len(problems) > 0 {
		return fmt.Errorf("invalid business config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Settings 业务配置默认值
func (c *AppConfig) Settings() model.Settings {
	slot, err := model.ParseSlot(c.Business.ActiveSlot)
	if err != nil {
		slot = model.Slot(c.Business.ActiveSlot)
	}
	s := model.Settings{
		CurrentCycle: c.Business.CurrentCycle,
		ActiveSlot:   slot,
		Weights:      c.Business.Weights,
		RiskPercent:  c.Business.RiskPercent,
	}
	return s.Clone()
}

// DataDir 数据目录的绝对路径；相对路径以配置文件所在目录为基准
func (c *AppConfig) DataDir() string {
	if filepath.IsAbs(c.Data.DataDir) {
		return c.Data.DataDir
	}
	base := c.baseDir
	if base == "" {
		base = "."
	}
	return filepath.Join(base, c.Data.DataDir)
}

// EnsureDataDir 确保数据目录及子目录存在
func EnsureDataDir(config *AppConfig) (string, error) {
	dataDir := config.DataDir()

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}

	// 创建子目录
	for _, subdir := range []string{"uploads"} {
		if err := os.MkdirAll(filepath.Join(dataDir, subdir), 0755); err != nil {
			return "", err
		}
	}

	return dataDir, nil
}
