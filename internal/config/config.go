package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// AppConfig 应用配置
type AppConfig struct {
	Server ServerConfig `toml:"server"`
	Data   DataConfig   `toml:"data"`
	Import ImportConfig `toml:"import"`
	Geo    GeoConfig    `toml:"geo"`
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

// ImportConfig 导入策略配置
// movement_policy: strict=未知动向跳过 / lenient=按始发目的列回退推断
// on_duplicate:   overwrite=整条覆盖 / skip=已存在则跳过
type ImportConfig struct {
	MovementPolicy string  `toml:"movement_policy"`
	OnDuplicate    string  `toml:"on_duplicate"`
	Atomic         bool    `toml:"atomic"`
	ScanDepth      int     `toml:"scan_depth"`
	FuzzyThreshold float64 `toml:"fuzzy_threshold"`
	Snapshots      bool    `toml:"snapshots"`
}

// GeoConfig 地址补全配置
type GeoConfig struct {
	Enabled   bool   `toml:"enabled"`
	BaseURL   string `toml:"base_url"`
	TimeoutMS int    `toml:"timeout_ms"`
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    20480,
			DevMode: false,
		},
		Data: DataConfig{
			DataDir: "data",
		},
		Import: ImportConfig{
			MovementPolicy: "strict",
			OnDuplicate:    "overwrite",
			Atomic:         false,
			ScanDepth:      200,
			FuzzyThreshold: 0.65,
			Snapshots:      true,
		},
		Geo: GeoConfig{
			Enabled:   false,
			BaseURL:   "https://nominatim.openstreetmap.org",
			TimeoutMS: 2000,
		},
	}
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// LoadConfig 从可执行文件同目录的 config.toml 加载配置
// 文件不存在时使用默认配置
func LoadConfig() (*AppConfig, error) {
	config := DefaultConfig()

	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	configPath := filepath.Join(exeDir, "config.toml")

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, err
	}
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, err
	}

	// 环境变量覆盖（用于 E2E / 本地运行）
	if v := os.Getenv("MOUHAB2B_GEO_URL"); v != "" {
		config.Geo.BaseURL = v
		config.Geo.Enabled = true
	}
	if v := os.Getenv("MOUHAB2B_DATA_DIR"); v != "" {
		config.Data.DataDir = v
	}

	return config, nil
}

// EnsureDataDir 确保数据目录存在，返回绝对路径
func EnsureDataDir(cfg *AppConfig) (string, error) {
	dir := cfg.Data.DataDir
	if !filepath.IsAbs(dir) {
		exeDir, err := GetExeDir()
		if err == nil {
			dir = filepath.Join(exeDir, dir)
		}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}
