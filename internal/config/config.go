package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置（config.yaml，环境变量 ATS_ 前缀覆盖）
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Sentry   SentryConfig   `mapstructure:"sentry"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Mail     MailConfig     `mapstructure:"mail"`
	Board    BoardConfig    `mapstructure:"board"`
	Outbox   OutboxConfig   `mapstructure:"outbox"`
	Storage  StorageConfig  `mapstructure:"storage"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // postgres / sqlite
	DSN    string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type SentryConfig struct {
	DSN         string `mapstructure:"dsn"`
	Environment string `mapstructure:"environment"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type MailConfig struct {
	FromAddress     string   `mapstructure:"from_address"`
	OperationsInbox string   `mapstructure:"operations_inbox"`
	TestMode        bool     `mapstructure:"test_mode"`
	TestBcc         []string `mapstructure:"test_bcc"`
	RatePerSecond   float64  `mapstructure:"rate_per_second"`
	Burst           int      `mapstructure:"burst"`
}

type BoardConfig struct {
	// CutoffHour 当地时间超过该小时的 sendout 计入下一个工作日
	CutoffHour int      `mapstructure:"cutoff_hour"`
	Holidays   []string `mapstructure:"holidays"` // YYYY-MM-DD
}

type OutboxConfig struct {
	Workers      int           `mapstructure:"workers"`
	ClaimLimit   int           `mapstructure:"claim_limit"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

type StorageConfig struct {
	Root string `mapstructure:"root"`
}

// Load 加载配置
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if path != "" {
		v.AddConfigPath(path)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "ats.db")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("jwt.ttl", 24*time.Hour)
	v.SetDefault("mail.rate_per_second", 5.0)
	v.SetDefault("mail.burst", 10)
	v.SetDefault("board.cutoff_hour", 15)
	v.SetDefault("outbox.workers", 2)
	v.SetDefault("outbox.claim_limit", 64)
	v.SetDefault("outbox.poll_interval", 200*time.Millisecond)
	v.SetDefault("storage.root", "./storage")

	v.SetEnvPrefix("ATS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// 配置文件缺失时允许纯默认值 + 环境变量启动
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
