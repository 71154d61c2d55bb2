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

// Config 应用全局配置结构体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Log      LogConfig      `mapstructure:"log"`
	Upload   UploadConfig   `mapstructure:"upload"`
	Ticket   TicketConfig   `mapstructure:"ticket"`
	Policy   PolicyConfig   `mapstructure:"policy"`
	Workflow WorkflowConfig `mapstructure:"workflow"`
	Seed     SeedConfig     `mapstructure:"seed"`
	Limit    LimitConfig    `mapstructure:"rate_limit"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port         int        `mapstructure:"port"`
	BaseURL      string     `mapstructure:"base_url"`
	MaxBodyBytes int64      `mapstructure:"max_body_bytes"`
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
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // 分钟
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 配置（Token 黑名单 + 限流）
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig JWT 认证配置
type AuthConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// UploadConfig 投诉图片上传配置
type UploadConfig struct {
	Dir          string   `mapstructure:"dir"`           // 最终存储目录
	StagingDir   string   `mapstructure:"staging_dir"`   // 暂存目录，入库成功后再转正
	PublicPrefix string   `mapstructure:"public_prefix"` // 对外访问 URL 前缀
	MaxBytes     int64    `mapstructure:"max_bytes"`
	AllowedMIME  []string `mapstructure:"allowed_mime"`
}

// TicketConfig 工单号生成配置
type TicketConfig struct {
	Prefix      string `mapstructure:"prefix"`
	MaxAttempts int    `mapstructure:"max_attempts"`
}

// PolicyConfig 权限策略开关
type PolicyConfig struct {
	DirectorCanUpdate bool `mapstructure:"director_can_update"`
}

// WorkflowConfig 状态流转配置
type WorkflowConfig struct {
	StrictTransitions bool `mapstructure:"strict_transitions"`
}

// LimitConfig 公开接口限流（按 IP + 路由）
// Requests/Window 为默认规则，login/submit/track 未配置时沿用默认
type LimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
	Login    RateRule      `mapstructure:"login"`
	Submit   RateRule      `mapstructure:"submit"`
	Track    RateRule      `mapstructure:"track"`
}

// RateRule 单条限流规则
type RateRule struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// Rule 返回生效规则；r 未完整配置时回退到默认规则
func (l LimitConfig) Rule(r RateRule) RateRule {
	if r.Requests > 0 && r.Window > 0 {
		return r
	}
	return RateRule{Requests: l.Requests, Window: l.Window}
}

// SeedConfig 启动时初始化的默认管理员
type SeedConfig struct {
	AdminName     string `mapstructure:"admin_name"`
	AdminEmail    string `mapstructure:"admin_email"`
	AdminPassword string `mapstructure:"admin_password"`
}

// Load 从 .env、配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	// .env 仅用于本地开发，不存在时忽略
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("读取 .env 失败: %w", err)
	}

	v := viper.New()
	setDefaults(v)

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
	v.SetEnvPrefix("MU")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.max_body_bytes", 4<<20)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "mu_complaints")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.access_token_ttl", "8h")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("upload.dir", "./storage/complaints")
	v.SetDefault("upload.staging_dir", "./storage/staging")
	v.SetDefault("upload.public_prefix", "/storage/complaints")
	v.SetDefault("upload.max_bytes", 2<<20)
	v.SetDefault("upload.allowed_mime", []string{"image/jpeg", "image/png", "image/gif", "image/webp"})

	v.SetDefault("ticket.prefix", "COMP-")
	v.SetDefault("ticket.max_attempts", 5)

	v.SetDefault("policy.director_can_update", true)
	v.SetDefault("workflow.strict_transitions", false)

	v.SetDefault("rate_limit.requests", 10)
	v.SetDefault("rate_limit.window", "1m")
	v.SetDefault("rate_limit.submit.requests", 5)
	v.SetDefault("rate_limit.submit.window", "1m")
	v.SetDefault("rate_limit.track.requests", 30)
	v.SetDefault("rate_limit.track.window", "1m")

	v.SetDefault("seed.admin_name", "Admin User")
	v.SetDefault("seed.admin_email", "admin@university.edu")
	v.SetDefault("seed.admin_password", "")
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 不能为空")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 长度不能少于 16 字符")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("配置校验失败: upload.max_bytes 必须大于 0")
	}
	if len(c.Upload.AllowedMIME) == 0 {
		return fmt.Errorf("配置校验失败: upload.allowed_mime 不能为空")
	}
	if c.Ticket.MaxAttempts < 1 {
		return fmt.Errorf("配置校验失败: ticket.max_attempts 不能小于 1")
	}
	if c.Limit.Requests < 1 || c.Limit.Window <= 0 {
		return fmt.Errorf("配置校验失败: rate_limit.requests 与 rate_limit.window 必须为正数")
	}
	for name, r := range map[string]RateRule{"login": c.Limit.Login, "submit": c.Limit.Submit, "track": c.Limit.Track} {
		if r.Requests < 0 || r.Window < 0 {
			return fmt.Errorf("配置校验失败: rate_limit.%s 不能为负数", name)
		}
	}
	if c.Ticket.Prefix == "" {
		return fmt.Errorf("配置校验失败: ticket.prefix 不能为空")
	}
	return nil
}
