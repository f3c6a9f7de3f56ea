package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(key string) string { return m[key] }
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(envMap(nil))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "sales_data.xlsx", cfg.Dataset.DefaultPath)
	assert.Equal(t, []string{"Order Date", "Ship Date"}, cfg.Dataset.DateColumns)
	assert.Equal(t, "₹", cfg.Dashboard.CurrencySymbol)
	assert.Equal(t, 10, cfg.Dashboard.TopN)
	assert.Equal(t, CacheMemory, cfg.Export.Cache)
	assert.Equal(t, int64(32<<20), cfg.Dataset.MaxUploadBytes())
	assert.False(t, cfg.Kafka.Enabled())
}

func TestLoadEnvOverrides(t *testing.T) {
	cfg, err := Load(envMap(map[string]string{
		"LISTEN_PORT":      "9090",
		"DATE_COLUMNS":     " Order Date , ,Ship Date",
		"TOP_N":            "5",
		"EXPORT_CACHE":     "redis",
		"EXPORT_CACHE_TTL": "90s",
		"REDIS_DB":         "2",
		"KAFKA_BROKERS":    "k1:9092,k2:9092",
		"RELOAD_CRON":      "0 */5 * * * *",
	}))
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, []string{"Order Date", "Ship Date"}, cfg.Dataset.DateColumns)
	assert.Equal(t, 5, cfg.Dashboard.TopN)
	assert.Equal(t, CacheRedis, cfg.Export.Cache)
	assert.Equal(t, 90*time.Second, cfg.Export.CacheTTL)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled())
	assert.Equal(t, "0 */5 * * * *", cfg.Scheduler.ReloadCron)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
dataset:
  default_path: /data/superstore.xlsx
dashboard:
  currency_symbol: "$"
  top_n: 20
export:
  cache: none
  cache_ttl: 5m
`), 0o644))

	cfg, err := Load(envMap(map[string]string{
		"CONFIG_FILE": path,
		"TOP_N":       "15",
	}))
	require.NoError(t, err)

	assert.Equal(t, "/data/superstore.xlsx", cfg.Dataset.DefaultPath)
	assert.Equal(t, "$", cfg.Dashboard.CurrencySymbol)
	assert.Equal(t, 15, cfg.Dashboard.TopN, "环境变量优先于配置文件")
	assert.Equal(t, CacheNone, cfg.Export.Cache)
	assert.Equal(t, 5*time.Minute, cfg.Export.CacheTTL)
	assert.Equal(t, []string{"Order Date", "Ship Date"}, cfg.Dataset.DateColumns, "文件未出现的字段保留默认值")
}

func TestLoadErrors(t *testing.T) {
	testCases := []struct {
		name string
		env  map[string]string
	}{
		{"端口无效", map[string]string{"LISTEN_PORT": "http"}},
		{"TOP_N格式错误", map[string]string{"TOP_N": "ten"}},
		{"TOP_N为0", map[string]string{"TOP_N": "0"}},
		{"缓存类型未知", map[string]string{"EXPORT_CACHE": "memcached"}},
		{"TTL格式错误", map[string]string{"EXPORT_CACHE_TTL": "soon"}},
		{"配置文件不存在", map[string]string{"CONFIG_FILE": "/nonexistent/config.yaml"}},
		{"配置文件格式不支持", map[string]string{"CONFIG_FILE": "config.toml"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(envMap(tc.env))
			assert.Error(t, err)
		})
	}
}
