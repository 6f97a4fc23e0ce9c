/*
 * @module service/config/config_manager
 * @description 配置管理，负责默认配置、YAML 配置文件加载、环境变量覆盖和配置校验
 * @architecture 分层架构 - 配置层
 * @documentReference DESIGN.md
 * @stateFlow 默认配置 -> 配置文件 -> 环境变量覆盖 -> 校验
 * @rules 环境变量优先级最高；阈值必须位于 [0,1]
 * @dependencies gopkg.in/yaml.v3, github.com/spf13/cast
 * @refs service/init.go
 */

package config

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// Config 应用配置
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Cleaning CleaningConfig `yaml:"cleaning"`
	Database DatabaseConfig `yaml:"database"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	ListenPort     int    `yaml:"listen_port"`
	BaseContext    string `yaml:"base_context"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `yaml:"level"`
}

// CleaningConfig 清洗配置
type CleaningConfig struct {
	Threshold     float64  `yaml:"threshold"`
	MissingTokens []string `yaml:"missing_tokens"`
}

// DatabaseConfig 数据库配置，Driver 为空表示不启用数据库数据源
type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // postgres, sqlite
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
	Schema   string `yaml:"schema"`
}

// Enabled 是否配置了数据库
func (d DatabaseConfig) Enabled() bool {
	return d.Driver != ""
}

// DSN 生成连接字符串，优先使用 URL
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	if d.Driver == "sqlite" {
		return d.Name
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s search_path=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode, d.Schema)
}

// DefaultMissingTokens CSV 中视为缺失值的文本
var DefaultMissingTokens = []string{"", "NA", "NaN", "nan", "null", "NULL", "None"}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			ListenPort:     80,
			MaxUploadBytes: 32 << 20,
		},
		Log: LogConfig{Level: "debug"},
		Cleaning: CleaningConfig{
			Threshold:     0.05,
			MissingTokens: append([]string(nil), DefaultMissingTokens...),
		},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    "5432",
			User:    "postgres",
			Name:    "postgres",
			SSLMode: "disable",
			Schema:  "public",
		},
	}
}

// LoadConfig 加载配置：默认值，CONFIG_FILE 指定的 YAML 文件，最后是环境变量
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadConfigFromFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := applyEnvironmentOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadConfigFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("读取配置文件失败: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("解析配置文件失败: %w", err)
	}
	return nil
}

// applyEnvironmentOverrides 环境变量覆盖
func applyEnvironmentOverrides(cfg *Config) error {
	if val, ok := os.LookupEnv("LISTEN_PORT"); ok && val != "" {
		port, err := cast.ToIntE(val)
		if err != nil {
			return fmt.Errorf("LISTEN_PORT 非法: %w", err)
		}
		cfg.Server.ListenPort = port
	}
	if val := os.Getenv("BASE_CONTEXT"); val != "" {
		cfg.Server.BaseContext = val
	}
	if val := os.Getenv("MAX_UPLOAD_BYTES"); val != "" {
		size, err := cast.ToInt64E(val)
		if err != nil {
			return fmt.Errorf("MAX_UPLOAD_BYTES 非法: %w", err)
		}
		cfg.Server.MaxUploadBytes = size
	}
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		cfg.Log.Level = val
	}
	if val := os.Getenv("NAN_THRESHOLD"); val != "" {
		threshold, err := cast.ToFloat64E(val)
		if err != nil {
			return fmt.Errorf("NAN_THRESHOLD 非法: %w", err)
		}
		cfg.Cleaning.Threshold = threshold
	}
	// 设置为空串时只把空单元格视为缺失
	if val, ok := os.LookupEnv("MISSING_TOKENS"); ok {
		cfg.Cleaning.MissingTokens = strings.Split(val, ",")
	}

	db := &cfg.Database
	db.Driver = getEnvWithDefault("DB_DRIVER", db.Driver)
	db.URL = getEnvWithDefault("DATABASE_URL", db.URL)
	db.Host = getEnvWithDefault("DB_HOST", db.Host)
	db.Port = getEnvWithDefault("DB_PORT", db.Port)
	db.User = getEnvWithDefault("DB_USER", db.User)
	db.Password = getEnvWithDefault("DB_PASSWORD", db.Password)
	db.Name = getEnvWithDefault("DB_NAME", db.Name)
	db.SSLMode = getEnvWithDefault("DB_SSLMODE", db.SSLMode)
	db.Schema = getEnvWithDefault("DB_SCHEMA", db.Schema)
	return nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.Server.ListenPort <= 0 || c.Server.ListenPort > 65535 {
		return fmt.Errorf("监听端口非法: %d", c.Server.ListenPort)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("上传大小上限必须为正数: %d", c.Server.MaxUploadBytes)
	}
	t := c.Cleaning.Threshold
	if math.IsNaN(t) || t < 0 || t > 1 {
		return fmt.Errorf("缺失值阈值必须在 [0,1] 之间: %v", t)
	}
	switch c.Database.Driver {
	case "", "postgres", "sqlite":
	default:
		return fmt.Errorf("不支持的数据库驱动: %s", c.Database.Driver)
	}
	return nil
}

// getEnvWithDefault 获取环境变量，如果不存在则返回默认值
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
