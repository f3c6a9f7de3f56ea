/*
 * @module service/config/config
 * @description 服务配置：默认值 -> 配置文件(yaml/json) -> 环境变量覆盖 -> 校验
 * @architecture 分层架构 - 基础设施层
 * @stateFlow 默认配置 -> 读取CONFIG_FILE -> 环境变量覆盖 -> 校验 -> 只读使用
 * @rules 环境变量优先级最高；配置文件缺失时使用默认值；不合法的配置在启动时报错
 * @dependencies gopkg.in/yaml.v3, github.com/spf13/cast
 * @refs service/init.go, main.go
 */

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// 导出缓存类型
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Config 服务配置
type Config struct {
	Server    ServerConfig    `json:"server" yaml:"server"`
	Logging   LoggingConfig   `json:"logging" yaml:"logging"`
	Dataset   DatasetConfig   `json:"dataset" yaml:"dataset"`
	Dashboard DashboardConfig `json:"dashboard" yaml:"dashboard"`
	Export    ExportConfig    `json:"export" yaml:"export"`
	Redis     RedisConfig     `json:"redis" yaml:"redis"`
	Scheduler SchedulerConfig `json:"scheduler" yaml:"scheduler"`
	Kafka     KafkaConfig     `json:"kafka" yaml:"kafka"`
}

// ServerConfig HTTP服务配置
type ServerConfig struct {
	Port           string   `json:"port" yaml:"port"`
	BaseContext    string   `json:"base_context" yaml:"base_context"`
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level string `json:"level" yaml:"level"`
}

// DatasetConfig 数据集加载配置
type DatasetConfig struct {
	DefaultPath string   `json:"default_path" yaml:"default_path"`
	DateColumns []string `json:"date_columns" yaml:"date_columns"`
	MaxUploadMB int64    `json:"max_upload_mb" yaml:"max_upload_mb"`
}

// DashboardConfig 展示配置
type DashboardConfig struct {
	CurrencySymbol string `json:"currency_symbol" yaml:"currency_symbol"`
	TopN           int    `json:"top_n" yaml:"top_n"`
	PageSize       int    `json:"page_size" yaml:"page_size"`
}

// ExportConfig 导出缓存配置
type ExportConfig struct {
	Cache      string        `json:"cache" yaml:"cache"`
	CacheTTL   time.Duration `json:"cache_ttl" yaml:"cache_ttl"`
	MaxEntries int           `json:"max_entries" yaml:"max_entries"`
}

// RedisConfig Redis连接配置
type RedisConfig struct {
	Host     string `json:"host" yaml:"host"`
	Port     string `json:"port" yaml:"port"`
	Password string `json:"password" yaml:"password"`
	DB       int    `json:"db" yaml:"db"`
}

// SchedulerConfig 定时刷新配置，Cron为空时不启用
type SchedulerConfig struct {
	ReloadCron string `json:"reload_cron" yaml:"reload_cron"`
}

// KafkaConfig 审计事件配置，Brokers为空时不启用
type KafkaConfig struct {
	Brokers []string `json:"brokers" yaml:"brokers"`
	Topic   string   `json:"topic" yaml:"topic"`
}

// Default 默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "8080",
			BaseContext:    "",
			AllowedOrigins: []string{"*"},
		},
		Logging: LoggingConfig{Level: "debug"},
		Dataset: DatasetConfig{
			DefaultPath: "sales_data.xlsx",
			DateColumns: []string{"Order Date", "Ship Date"},
			MaxUploadMB: 32,
		},
		Dashboard: DashboardConfig{
			CurrencySymbol: "₹",
			TopN:           10,
			PageSize:       50,
		},
		Export: ExportConfig{
			Cache:      CacheMemory,
			CacheTTL:   10 * time.Minute,
			MaxEntries: 64,
		},
		Redis: RedisConfig{
			Host: "localhost",
			Port: "6379",
		},
		Kafka: KafkaConfig{Topic: "sales-dashboard-events"},
	}
}

// Load 按优先级加载配置，getenv为nil时使用os.Getenv
func Load(getenv func(string) string) (*Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}

	cfg := Default()
	if path := getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("配置验证失败: %w", err)
	}
	return cfg, nil
}

// loadFile 读取配置文件，未出现的字段保留默认值
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("读取配置文件失败: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	case ".json":
		err = json.Unmarshal(data, c)
	default:
		return fmt.Errorf("不支持的配置文件格式: %s", ext)
	}
	if err != nil {
		return fmt.Errorf("解析配置文件失败: %w", err)
	}
	return nil
}

// applyEnv 环境变量覆盖
func (c *Config) applyEnv(getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	list := func(key string, dst *[]string) {
		if v := getenv(key); v != "" {
			*dst = splitList(v)
		}
	}
	var errs []string
	integer := func(key string, dst *int) {
		if v := getenv(key); v != "" {
			n, err := cast.ToIntE(v)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s=%q", key, v))
				return
			}
			*dst = n
		}
	}

	str("LISTEN_PORT", &c.Server.Port)
	str("BASE_CONTEXT", &c.Server.BaseContext)
	list("CORS_ALLOWED_ORIGINS", &c.Server.AllowedOrigins)
	str("LOG_LEVEL", &c.Logging.Level)

	str("DEFAULT_DATASET_PATH", &c.Dataset.DefaultPath)
	list("DATE_COLUMNS", &c.Dataset.DateColumns)
	if v := getenv("MAX_UPLOAD_MB"); v != "" {
		n, err := cast.ToInt64E(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("MAX_UPLOAD_MB=%q", v))
		} else {
			c.Dataset.MaxUploadMB = n
		}
	}

	str("CURRENCY_SYMBOL", &c.Dashboard.CurrencySymbol)
	integer("TOP_N", &c.Dashboard.TopN)
	integer("PAGE_SIZE", &c.Dashboard.PageSize)

	str("EXPORT_CACHE", &c.Export.Cache)
	if v := getenv("EXPORT_CACHE_TTL"); v != "" {
		d, err := cast.ToDurationE(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("EXPORT_CACHE_TTL=%q", v))
		} else {
			c.Export.CacheTTL = d
		}
	}
	integer("EXPORT_CACHE_MAX_ENTRIES", &c.Export.MaxEntries)

	str("REDIS_HOST", &c.Redis.Host)
	str("REDIS_PORT", &c.Redis.Port)
	str("REDIS_PASSWORD", &c.Redis.Password)
	integer("REDIS_DB", &c.Redis.DB)

	str("RELOAD_CRON", &c.Scheduler.ReloadCron)
	list("KAFKA_BROKERS", &c.Kafka.Brokers)
	str("KAFKA_TOPIC", &c.Kafka.Topic)

	if len(errs) > 0 {
		return fmt.Errorf("环境变量格式错误: %s", strings.Join(errs, ", "))
	}
	return nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	port, err := cast.ToIntE(c.Server.Port)
	if err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("服务端口无效: %q", c.Server.Port)
	}
	if c.Dashboard.TopN <= 0 {
		return fmt.Errorf("TOP_N必须大于0")
	}
	if c.Dataset.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB必须大于0")
	}
	switch c.Export.Cache {
	case CacheMemory, CacheRedis, CacheNone:
	default:
		return fmt.Errorf("不支持的导出缓存类型: %q", c.Export.Cache)
	}
	if c.Kafka.Enabled() && c.Kafka.Topic == "" {
		return fmt.Errorf("启用Kafka时必须配置KAFKA_TOPIC")
	}
	return nil
}

// Enabled 是否配置了Kafka
func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }

// MaxUploadBytes 上传大小上限（字节）
func (d DatasetConfig) MaxUploadBytes() int64 { return d.MaxUploadMB << 20 }

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
