// Package config 提供应用配置的加载与管理
// 基于viper实现，支持配置文件和环境变量两种来源
// 包含服务器、数据库、日志、扫描器等配置项
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config 应用总配置
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`   // HTTP服务器配置
	Database DatabaseConfig `mapstructure:"database"` // 数据库配置
	Logger   LoggerConfig   `mapstructure:"logger"`   // 日志配置
	Scanner  ScannerConfig  `mapstructure:"scanner"`  // 字体扫描器配置
}

// ServerConfig HTTP服务器配置
type ServerConfig struct {
	Port         int    `mapstructure:"port"`           // HTTP监听端口
	ReadTimeout  int    `mapstructure:"read_timeout"`   // 读超时（秒）
	WriteTimeout int    `mapstructure:"write_timeout"`  // 写超时（秒）
	EnableHTTPS  bool   `mapstructure:"enable_https"`   // 是否启用HTTPS
	EnableHTTP2  bool   `mapstructure:"enable_http2"`   // 是否启用HTTP/2（仅HTTPS下生效）
	HTTPSPort    int    `mapstructure:"https_port"`     // HTTPS监听端口
	TLSCertFile  string `mapstructure:"tls_cert_file"`  // TLS证书路径
	TLSKeyFile   string `mapstructure:"tls_key_file"`   // TLS私钥路径
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`            // 数据库驱动，目前仅支持sqlite
	DSN             string `mapstructure:"dsn"`               // 数据源名称（sqlite为文件路径）
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`    // 最大空闲连接数
	MaxOpenConns    int    `mapstructure:"max_open_conns"`    // 最大打开连接数
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // 连接最大生命周期（秒）
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level    string `mapstructure:"level"`     // 日志级别 (debug, info, warn, error)
	Format   string `mapstructure:"format"`    // 日志格式 (json, text)
	Output   string `mapstructure:"output"`    // 输出方式 (console, file, both)
	FilePath string `mapstructure:"file_path"` // 日志文件路径
}

// ScannerConfig 字体扫描器配置
type ScannerConfig struct {
	// Extensions 支持的字体容器扩展名（小写，不含点）
	Extensions []string `mapstructure:"extensions"`
	// Workers 全量扫描时单个分类内的并发处理数
	Workers int `mapstructure:"workers"`
	// WatchDebounceMs 文件变化事件的防抖窗口（毫秒）
	WatchDebounceMs int `mapstructure:"watch_debounce_ms"`
}

// Load 加载应用配置
// 查找顺序: ./config.yaml -> ./config/config.yaml，环境变量以FONTBASE_为前缀覆盖
// 返回:
//   *Config - 配置实例
//   error - 配置文件解析失败时返回错误（文件缺失不视为错误，使用默认值）
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("FONTBASE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// 配置文件不存在时使用默认配置
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults 设置默认配置项
func setDefaults(v *viper.Viper) {
	// 服务器默认配置
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("server.enable_https", false)
	v.SetDefault("server.enable_http2", false)
	v.SetDefault("server.https_port", 8443)

	// 数据库默认配置
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "data/fontbase.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 3600)

	// 日志默认配置
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "text")
	v.SetDefault("logger.output", "both")
	v.SetDefault("logger.file_path", "logs/fontbase.log")

	// 扫描器默认配置
	v.SetDefault("scanner.extensions", []string{"ttf", "otf", "woff", "woff2", "ttc"})
	v.SetDefault("scanner.workers", 4)
	v.SetDefault("scanner.watch_debounce_ms", 300)
}
