package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrMissingAPIKey 未配置 API 凭证（必须在任何网络调用之前失败）
var ErrMissingAPIKey = errors.New("NEXON_API_KEY 未配置")

// Config 全局配置结构体（匹配 config/config.yaml）
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`   // HTTP 服务配置
	Database DatabaseConfig `mapstructure:"database"` // 运行记录数据库（可选）
	API      APIConfig      `mapstructure:"api"`      // 拍卖行 API 配置
	Ingest   IngestConfig   `mapstructure:"ingest"`   // 采集流程配置
	Output   OutputConfig   `mapstructure:"output"`   // 输出目录配置
	Spaces   SpacesConfig   `mapstructure:"spaces"`   // 对象存储发布配置
	Log      LogConfig      `mapstructure:"log"`      // 日志配置
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port int    `mapstructure:"port"` // 服务端口
	Mode string `mapstructure:"mode"` // Gin运行模式：debug/release/test

	CORSOrigins []string `mapstructure:"cors_origins"` // 允许跨域读取 /data 的来源，为空则允许全部
}

// DatabaseConfig PostgreSQL 配置；DSN 为空时不记录运行历史
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`               // 连接DSN（URL 形式）
	MaxOpenConns    int           `mapstructure:"max_open_conns"`    // 最大打开连接数
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`    // 最大空闲连接数
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"` // 连接最大存活时间
}

// APIConfig 外部 API 配置
type APIConfig struct {
	BaseURL        string `mapstructure:"base_url"`         // 拍卖列表接口地址
	CategoryParam  string `mapstructure:"category_param"`   // 分类参数名
	CursorParam    string `mapstructure:"cursor_param"`     // 游标参数名
	KeyHeader      string `mapstructure:"key_header"`       // 凭证请求头
	APIKey         string `mapstructure:"api_key"`          // 凭证，仅从环境变量读取
	Timeout        int    `mapstructure:"timeout"`          // 请求超时（秒）
	Proxy          string `mapstructure:"proxy"`            // 代理地址
	DailyCallLimit int    `mapstructure:"daily_call_limit"` // 每日调用上限（按 UTC 日期）

	MaxIdleConns    int `mapstructure:"max_idle_conns"`    // 空闲连接上限（只访问同一主机，同时作为单主机上限）
	IdleConnTimeout int `mapstructure:"idle_conn_timeout"` // 空闲连接保留时间（秒），需覆盖退避等待
}

// MaxRetriesLimit 重试次数上限，退避时长按 2^attempt 增长
const MaxRetriesLimit = 10

// IngestConfig 采集流程配置
type IngestConfig struct {
	MinDelay       time.Duration `mapstructure:"min_delay"`       // 两次调用之间的最小间隔
	BaseBackoff    time.Duration `mapstructure:"base_backoff"`    // 退避基准时长，实际为 base × 2^attempt
	MaxRetries     int           `mapstructure:"max_retries"`     // 瞬时错误最大重试次数
	FatalThreshold int           `mapstructure:"fatal_threshold"` // 连续致命类错误阈值
	MaxPages       int           `mapstructure:"max_pages"`       // 单分类最大页数
	Categories     []string      `mapstructure:"categories"`      // 仅采集这些分类（为空则全部）
}

// OutputConfig 输出配置
type OutputConfig struct {
	Dir        string `mapstructure:"dir"`         // 输出根目录（items/ 与 meta/）
	XLSXReport bool   `mapstructure:"xlsx_report"` // 是否额外生成 meta/catalog.xlsx
}

// SpacesConfig S3 兼容对象存储（DigitalOcean Spaces 等）
type SpacesConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Key      string `mapstructure:"key"`
	Secret   string `mapstructure:"secret"`
	Region   string `mapstructure:"region"`
	Bucket   string `mapstructure:"bucket"`
	Endpoint string `mapstructure:"endpoint"` // 为空时使用 https://<region>.digitaloceanspaces.com
	Prefix   string `mapstructure:"prefix"`   // 对象键前缀
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `mapstructure:"level"` // debug/info/warn/error
}

// LoadConfig 加载配置文件（<dir>/config.yaml，可不存在），敏感项从 .env / 环境变量覆盖
func LoadConfig(dir string) (*Config, error) {
	// 1. 加载 .env（若存在），env 中的值会覆盖 config.yaml 中同名字段
	_ = godotenv.Load() // 忽略错误（.env 可不存在）

	v := viper.New()
	setDefaults(v)

	// 2. 读取 config.yaml
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir == "" {
		dir = "./config"
	}
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	v.SetTypeByDefaultValue(true)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 3. 敏感字段：用 env 覆盖（优先级 env > yaml）
	overrideFromEnv(&cfg)
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", time.Hour)

	v.SetDefault("api.base_url", "https://open.api.nexon.com/mabinogi/v1/auction/list")
	v.SetDefault("api.category_param", "auction_item_category")
	v.SetDefault("api.cursor_param", "cursor")
	v.SetDefault("api.key_header", "x-nxopen-api-key")
	v.SetDefault("api.timeout", 30)
	v.SetDefault("api.daily_call_limit", 100000)
	v.SetDefault("api.max_idle_conns", 2)
	v.SetDefault("api.idle_conn_timeout", 90)

	// 供应商限制 5 次/秒，留出余量
	v.SetDefault("ingest.min_delay", 250*time.Millisecond)
	v.SetDefault("ingest.base_backoff", time.Second)
	v.SetDefault("ingest.max_retries", 3)
	v.SetDefault("ingest.fatal_threshold", 3)
	v.SetDefault("ingest.max_pages", 100)

	v.SetDefault("output.dir", "./data")
	v.SetDefault("output.xlsx_report", false)

	v.SetDefault("spaces.enabled", false)
	v.SetDefault("spaces.prefix", "auction")

	v.SetDefault("log.level", "info")
}

// overrideFromEnv 用环境变量覆盖敏感配置
func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("NEXON_API_KEY"); v != "" {
		cfg.API.APIKey = strings.TrimSpace(v)
	}
	if v := os.Getenv("HTTP_PROXY_URL"); v != "" {
		cfg.API.Proxy = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("SPACES_KEY"); v != "" {
		cfg.Spaces.Key = v
	}
	if v := os.Getenv("SPACES_SECRET"); v != "" {
		cfg.Spaces.Secret = v
	}
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		cfg.Output.Dir = v
	}
}

// Validate 校验采集所需的配置
func (c *Config) Validate() error {
	if c.API.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url 不能为空")
	}
	if c.Ingest.MaxRetries < 0 {
		return fmt.Errorf("ingest.max_retries 不能为负数")
	}
	if c.Ingest.MaxRetries > MaxRetriesLimit {
		return fmt.Errorf("ingest.max_retries 不能超过 %d", MaxRetriesLimit)
	}
	if c.Ingest.FatalThreshold < 1 {
		return fmt.Errorf("ingest.fatal_threshold 至少为 1")
	}
	if c.Ingest.MaxPages < 1 {
		return fmt.Errorf("ingest.max_pages 至少为 1")
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir 不能为空")
	}
	if c.Spaces.Enabled && (c.Spaces.Bucket == "" || c.Spaces.Key == "" || c.Spaces.Secret == "") {
		return fmt.Errorf("spaces 已启用但 bucket/key/secret 不完整")
	}
	return nil
}

// MaskedAPIKey 返回隐藏大部分字符的凭证，用于日志
func (c *Config) MaskedAPIKey() string {
	return maskSecret(c.API.APIKey)
}

func maskSecret(s string) string {
	if len(s) <= 8 {
		if len(s) == 0 {
			return "(未设置)"
		}
		return "****"
	}
	return s[:4] + "****" + s[len(s)-4:]
}
