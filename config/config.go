package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Database DatabaseConfig `mapstructure:"database"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Item     ItemConfig     `mapstructure:"item"`
	Audit    AuditConfig    `mapstructure:"audit"`
	Security SecurityConfig `mapstructure:"security"`
	Script   ScriptConfig   `mapstructure:"script"`
}

type ServerConfig struct {
	Port  int  `mapstructure:"port"`
	Debug bool `mapstructure:"debug"`
}

type CatalogConfig struct {
	DataPath string `mapstructure:"data_path"` // directory of item template JSON files
}

type DatabaseConfig struct {
	Mode         string        `mapstructure:"mode"` // sqlite | mysql
	SQLitePath   string        `mapstructure:"sqlite_path"`
	MySQLDSN     string        `mapstructure:"mysql_dsn"`
	MySQLMaxOpen int           `mapstructure:"mysql_max_open"`
	MySQLMaxIdle int           `mapstructure:"mysql_max_idle"`
	MySQLMaxLife time.Duration `mapstructure:"mysql_max_life"`
	SlowQuery    time.Duration `mapstructure:"slow_query"` // 0 disables slow-query warnings
}

type CacheConfig struct {
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	LocalGCInterval time.Duration `mapstructure:"local_gc_interval"`
	LocalMaxEntries int           `mapstructure:"local_max_entries"`
	KeyPrefix       string        `mapstructure:"key_prefix"` // applied to Redis keys only
}

type ItemConfig struct {
	DropLifetimeS int `mapstructure:"drop_lifetime_s"`
}

// DropLifetime returns how long a dropped item stays on the field.
func (c ItemConfig) DropLifetime() time.Duration {
	return time.Duration(c.DropLifetimeS) * time.Second
}

type AuditConfig struct {
	BufferSize    int           `mapstructure:"buffer_size"`
	BatchSize     int           `mapstructure:"batch_size"`
	FlushInterval time.Duration `mapstructure:"flush_interval"`
}

type SecurityConfig struct {
	RateLimitRPS   float64  `mapstructure:"rate_limit_rps"`
	RateLimitBurst int      `mapstructure:"rate_limit_burst"`
	AllowedOrigins []string `mapstructure:"allowed_origins"` // websocket origins; empty allows all
}

// ScriptConfig selects and tunes the gear score engine.
type ScriptConfig struct {
	Engine      string        `mapstructure:"engine"` // js | expr
	VMPoolSize  int           `mapstructure:"vm_pool_size"`
	Timeout     time.Duration `mapstructure:"timeout"`
	FormulaFile string        `mapstructure:"formula_file"`
	ExprBase    string        `mapstructure:"expr_base"`
	ExprBonus   string        `mapstructure:"expr_bonus"`
	MemoSize    int           `mapstructure:"memo_size"`
	MemoTTL     time.Duration `mapstructure:"memo_ttl"`
}

// EnvPrefix prefixes environment overrides, e.g. MMOITEMS_DATABASE_MODE.
const EnvPrefix = "MMOITEMS"

// Load reads config from the given YAML file path. Any key can be
// overridden from the environment.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.debug", false)
	v.SetDefault("catalog.data_path", "./data/items")
	v.SetDefault("database.mode", "sqlite")
	v.SetDefault("database.sqlite_path", "./data/items.db")
	v.SetDefault("database.mysql_max_open", 50)
	v.SetDefault("database.mysql_max_idle", 10)
	v.SetDefault("database.mysql_max_life", "1h")
	v.SetDefault("database.slow_query", "200ms")
	v.SetDefault("cache.local_gc_interval", "30s")
	v.SetDefault("cache.local_max_entries", 100000)
	v.SetDefault("cache.key_prefix", "mmoitems:")
	v.SetDefault("audit.buffer_size", 1024)
	v.SetDefault("audit.batch_size", 100)
	v.SetDefault("audit.flush_interval", "2s")
	v.SetDefault("item.drop_lifetime_s", 300)
	v.SetDefault("security.rate_limit_rps", 100)
	v.SetDefault("security.rate_limit_burst", 200)
	v.SetDefault("script.engine", "js")
	v.SetDefault("script.vm_pool_size", 8)
	v.SetDefault("script.timeout", "5s")
	v.SetDefault("script.formula_file", "./data/scripts/gearscore.js")
	v.SetDefault("script.expr_base", "Factor * RarityMul * 10")
	v.SetDefault("script.expr_bonus", "Factor * (EnchantLevel * 0.05 + LimitBreakLevel * 0.1) * 10")
	v.SetDefault("script.memo_size", 4096)
	v.SetDefault("script.memo_ttl", "10m")
}
