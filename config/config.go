package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Security SecurityConfig `mapstructure:"security"`
	App      AppConfig      `mapstructure:"app"`
	Admin    AdminConfig    `mapstructure:"admin"`
}

type ServerConfig struct {
	Port  int  `mapstructure:"port"`
	Debug bool `mapstructure:"debug"`
}

type DatabaseConfig struct {
	Mode         string        `mapstructure:"mode"` // sqlite | mysql
	SQLitePath   string        `mapstructure:"sqlite_path"`
	MySQLDSN     string        `mapstructure:"mysql_dsn"`
	MySQLMaxOpen int           `mapstructure:"mysql_max_open"`
	MySQLMaxIdle int           `mapstructure:"mysql_max_idle"`
	MySQLMaxLife time.Duration `mapstructure:"mysql_max_life"`
}

type CacheConfig struct {
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	LocalGCInterval time.Duration `mapstructure:"local_gc_interval"`
	LocalPubSubBuf  int           `mapstructure:"local_pubsub_buf"`
}

type SecurityConfig struct {
	JWTSecret        string        `mapstructure:"jwt_secret"`
	JWTTTLH          time.Duration `mapstructure:"jwt_ttl_h"`
	RateLimitRPS     float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst   int           `mapstructure:"rate_limit_burst"`
	RateLimitIdleTTL time.Duration `mapstructure:"rate_limit_idle_ttl"`
}

type AppConfig struct {
	ChatHistoryLimit   int           `mapstructure:"chat_history_limit"`
	ChatMaxMessageLen  int           `mapstructure:"chat_max_message_len"`
	NotificationLimit  int           `mapstructure:"notification_limit"`
	StatsCacheTTL      time.Duration `mapstructure:"stats_cache_ttl"`
	StatsRefreshEveryS int           `mapstructure:"stats_refresh_every_s"`
}

// AdminConfig seeds the first admin account on startup if none exists.
type AdminConfig struct {
	BootstrapID       string `mapstructure:"bootstrap_id"`
	BootstrapName     string `mapstructure:"bootstrap_name"`
	BootstrapPassword string `mapstructure:"bootstrap_password"`
}

// Load reads config from the given YAML file path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.debug", false)
	v.SetDefault("database.mode", "sqlite")
	v.SetDefault("database.sqlite_path", "./data/studyhive.db")
	v.SetDefault("database.mysql_max_open", 50)
	v.SetDefault("database.mysql_max_idle", 10)
	v.SetDefault("database.mysql_max_life", "1h")
	v.SetDefault("cache.local_gc_interval", "30s")
	v.SetDefault("cache.local_pubsub_buf", 256)
	v.SetDefault("security.jwt_ttl_h", "72h")
	v.SetDefault("security.rate_limit_rps", 100)
	v.SetDefault("security.rate_limit_burst", 200)
	v.SetDefault("security.rate_limit_idle_ttl", "10m")
	v.SetDefault("app.chat_history_limit", 50)
	v.SetDefault("app.chat_max_message_len", 500)
	v.SetDefault("app.notification_limit", 50)
	v.SetDefault("app.stats_cache_ttl", "60s")
	v.SetDefault("app.stats_refresh_every_s", 300)
	v.SetDefault("admin.bootstrap_name", "Administrator")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
