package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"yoyboard/internal/calculator"
	"yoyboard/internal/parser"
)

// EnvPrefix 环境变量前缀，如 YOYBOARD_SERVER_PORT
const EnvPrefix = "YOYBOARD"

// FileName 默认配置文件名
const FileName = "config.toml"

// AppConfig 应用配置
type AppConfig struct {
	Server   ServerConfig   `toml:"server" json:"server"`
	Data     DataConfig     `toml:"data" json:"data"`
	Business BusinessConfig `toml:"business" json:"business"`
	Schema   SchemaConfig   `toml:"schema" json:"schema"`
	Log      LogConfig      `toml:"log" json:"log"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port    int  `toml:"port" json:"port"`
	DevMode bool `toml:"dev_mode" json:"devMode"`
}

// DataConfig 数据配置
type DataConfig struct {
	DataDir string `toml:"data_dir" json:"dataDir"`
}

// BusinessConfig 业务配置
type BusinessConfig struct {
	BaselineYear   int     `toml:"baseline_year" json:"baselineYear"`
	ComparisonYear int     `toml:"comparison_year" json:"comparisonYear"`
	SpikeThreshold float64 `toml:"spike_threshold" json:"spikeThreshold"`
	Period         string  `toml:"period" json:"period"` // 默认统计口径
}

// SchemaConfig 列识别配置
type SchemaConfig struct {
	Mode               string `toml:"mode" json:"mode"` // fixed/pattern
	StoreColumn        string `toml:"store_column" json:"storeColumn"`
	DateColumn         string `toml:"date_column" json:"dateColumn"`
	QtyColumnFormat    string `toml:"qty_column_format" json:"qtyColumnFormat"`
	AmountColumnFormat string `toml:"amount_column_format" json:"amountColumnFormat"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `toml:"level" json:"level"`
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	Path          string
	FileFound     bool
	PortSpecified bool
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port: 20262,
		},
		Data: DataConfig{
			DataDir: "data",
		},
		Business: BusinessConfig{
			BaselineYear:   2024,
			ComparisonYear: 2025,
			SpikeThreshold: calculator.DefaultSpikeThreshold,
			Period:         "Christmas (20–25 Dec)",
		},
		Schema: SchemaConfig{
			Mode:               string(parser.ModeFixed),
			StoreColumn:        parser.DefaultStoreColumn,
			DateColumn:         parser.DefaultDateColumn,
			QtyColumnFormat:    parser.DefaultQtyColumnFormat,
			AmountColumnFormat: parser.DefaultAmountColumnFormat,
		},
		Log: LogConfig{
			Level: "INFO",
		},
	}
}

// Validate 校验配置
func (c *AppConfig) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port: %d", c.Server.Port)
	}
	if c.Business.SpikeThreshold <= 0 {
		return fmt.Errorf("business.spike_threshold must be positive, got %v", c.Business.SpikeThreshold)
	}
	if c.Business.BaselineYear == c.Business.ComparisonYear {
		return fmt.Errorf("business.baseline_year and comparison_year must differ (%d)", c.Business.BaselineYear)
	}
	switch parser.ResolveMode(c.Schema.Mode) {
	case parser.ModeFixed, parser.ModePattern:
	default:
		return fmt.Errorf("invalid schema.mode: %q", c.Schema.Mode)
	}
	if !strings.Contains(c.Schema.QtyColumnFormat, "%d") || !strings.Contains(c.Schema.AmountColumnFormat, "%d") {
		return fmt.Errorf("schema column formats must contain %%d for the year")
	}
	return nil
}

// ParserSchema 列识别规则
func (c *AppConfig) ParserSchema() parser.Schema {
	return parser.Schema{
		Mode:               parser.ResolveMode(c.Schema.Mode),
		BaselineYear:       c.Business.BaselineYear,
		ComparisonYear:     c.Business.ComparisonYear,
		StoreColumn:        c.Schema.StoreColumn,
		DateColumn:         c.Schema.DateColumn,
		QtyColumnFormat:    c.Schema.QtyColumnFormat,
		AmountColumnFormat: c.Schema.AmountColumnFormat,
	}
}

// Thresholds 结论判定阈值
func (c *AppConfig) Thresholds() calculator.Thresholds {
	return calculator.Thresholds{SpikeThreshold: c.Business.SpikeThreshold}
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverMap, ok := raw["server"].(map[string]any)
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

// LoadConfigWithInfo 从 config.toml 加载配置，再叠加环境变量
//
// path 为空时使用 DefaultPath()；文件不存在时使用默认配置。
func LoadConfigWithInfo(path string) (*AppConfig, LoadConfigInfo, error) {
	if path == "" {
		path = DefaultPath()
	}
	info := LoadConfigInfo{Path: path}
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		info.FileFound = true
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, info, fmt.Errorf("read %s: %w", path, err)
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

// envKeys 可被环境变量覆盖的配置项
var envKeys = []string{
	"server.port",
	"server.dev_mode",
	"data.data_dir",
	"business.baseline_year",
	"business.comparison_year",
	"business.spike_threshold",
	"business.period",
	"schema.mode",
	"schema.store_column",
	"schema.date_column",
	"schema.qty_column_format",
	"schema.amount_column_format",
	"log.level",
}

// applyEnv 环境变量覆盖（YOYBOARD_SERVER_PORT 等）
func applyEnv(config *AppConfig, info *LoadConfigInfo) error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if v.IsSet("server.port") {
		config.Server.Port = v.GetInt("server.port")
		info.PortSpecified = true
	}
	if v.IsSet("server.dev_mode") {
		config.Server.DevMode = v.GetBool("server.dev_mode")
	}
	if v.IsSet("data.data_dir") {
		config.Data.DataDir = v.GetString("data.data_dir")
	}
	if v.IsSet("business.baseline_year") {
		config.Business.BaselineYear = v.GetInt("business.baseline_year")
	}
	if v.IsSet("business.comparison_year") {
		config.Business.ComparisonYear = v.GetInt("business.comparison_year")
	}
	if v.IsSet("business.spike_threshold") {
		config.Business.SpikeThreshold = v.GetFloat64("business.spike_threshold")
	}
	if v.IsSet("business.period") {
		config.Business.Period = v.GetString("business.period")
	}
	if v.IsSet("schema.mode") {
		config.Schema.Mode = v.GetString("schema.mode")
	}
	if v.IsSet("schema.store_column") {
		config.Schema.StoreColumn = v.GetString("schema.store_column")
	}
	if v.IsSet("schema.date_column") {
		config.Schema.DateColumn = v.GetString("schema.date_column")
	}
	if v.IsSet("schema.qty_column_format") {
		config.Schema.QtyColumnFormat = v.GetString("schema.qty_column_format")
	}
	if v.IsSet("schema.amount_column_format") {
		config.Schema.AmountColumnFormat = v.GetString("schema.amount_column_format")
	}
	if v.IsSet("log.level") {
		config.Log.Level = v.GetString("log.level")
	}
	return nil
}

// SaveConfig 保存配置到 path（为空时写入 DefaultPath()）
func SaveConfig(config *AppConfig, path string) error {
	if path == "" {
		path = DefaultPath()
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// EnsureDataDir 确保数据目录及子目录存在，返回数据目录绝对路径
//
// 相对路径相对于可执行文件所在目录。
func EnsureDataDir(config *AppConfig) (string, error) {
	dataDir := ResolveDataDir(config)

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}

	for _, subdir := range []string{"uploads", "exports"} {
		if err := os.MkdirAll(filepath.Join(dataDir, subdir), 0755); err != nil {
			return "", err
		}
	}

	return dataDir, nil
}

// ResolveDataDir 数据目录路径
func ResolveDataDir(config *AppConfig) string {
	if filepath.IsAbs(config.Data.DataDir) {
		return config.Data.DataDir
	}
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	return filepath.Join(exeDir, config.Data.DataDir)
}
