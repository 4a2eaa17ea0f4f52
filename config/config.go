package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"db"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Log       LogConfig       `mapstructure:"log"`
	Generator GeneratorConfig `mapstructure:"generator"`
	Cost      CostConfig      `mapstructure:"cost"`
	History   HistoryConfig   `mapstructure:"history"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port         int        `mapstructure:"port"`
	BodyMaxBytes int64      `mapstructure:"body_max_bytes"`
	CORS         CORSConfig `mapstructure:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // 连接最大生命周期（分钟）
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // 空闲连接最大存活时间（分钟）
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 缓存配置
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	FoodTTL  time.Duration `mapstructure:"food_ttl"` // 营养目录缓存有效期
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// GeneratorConfig 外部 AI 菜单生成服务配置
type GeneratorConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
}

// CostConfig 单价台账配置
type CostConfig struct {
	DefaultPrice  int                `mapstructure:"default_price"`
	BaseYear      int                `mapstructure:"base_year"`
	FallbackRate  float64            `mapstructure:"fallback_rate"`
	RateOverrides map[string]float64 `mapstructure:"rate_overrides"` // key 为四位年份
}

// YearRates 将 RateOverrides 的字符串年份转换为整数年份
// 调用前需先通过 Validate
func (c *CostConfig) YearRates() map[int]float64 {
	rates := make(map[int]float64, len(c.RateOverrides))
	for k, v := range c.RateOverrides {
		year, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		rates[year] = v
	}
	return rates
}

// HistoryConfig 修改历史配置
type HistoryConfig struct {
	Delimiter string `mapstructure:"delimiter"`
	PageSize  int    `mapstructure:"page_size"`
}

// RateLimitConfig 生成接口限流配置
type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.body_max_bytes", 10<<20)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "nutri_assistant")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "Asia/Seoul")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)  // 60分钟
	v.SetDefault("db.conn_max_idle_time", 30) // 30分钟

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.food_ttl", "6h")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("generator.base_url", "http://localhost:8000")
	v.SetDefault("generator.connect_timeout", "5s")
	v.SetDefault("generator.read_timeout", "120s")

	v.SetDefault("cost.default_price", 1000)
	v.SetDefault("cost.base_year", 2023)
	v.SetDefault("cost.fallback_rate", 0.025)
	v.SetDefault("cost.rate_overrides", map[string]float64{
		"2023": 0.036,
		"2024": 0.023,
		"2025": 0.021,
	})

	v.SetDefault("history.delimiter", ", ")
	v.SetDefault("history.page_size", 20)

	v.SetDefault("rate_limit.requests", 10)
	v.SetDefault("rate_limit.window", "1m")

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("NUTRI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在时仅依赖默认值和环境变量
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// ── 关键配置校验 ──
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	if c.Generator.BaseURL == "" {
		return fmt.Errorf("配置校验失败: generator.base_url 不能为空")
	}
	if c.Cost.BaseYear <= 0 {
		return fmt.Errorf("配置校验失败: cost.base_year 必须为正数")
	}
	if c.Cost.DefaultPrice < 0 {
		return fmt.Errorf("配置校验失败: cost.default_price 不能为负数")
	}
	for k := range c.Cost.RateOverrides {
		if len(k) != 4 {
			return fmt.Errorf("配置校验失败: cost.rate_overrides 的键 %q 不是四位年份", k)
		}
		if _, err := strconv.Atoi(k); err != nil {
			return fmt.Errorf("配置校验失败: cost.rate_overrides 的键 %q 不是四位年份", k)
		}
	}
	if c.History.PageSize <= 0 || c.History.PageSize > 100 {
		return fmt.Errorf("配置校验失败: history.page_size 必须在 1-100 之间")
	}
	return nil
}
