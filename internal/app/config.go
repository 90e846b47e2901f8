// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"os"
	"path/filepath"
	"time"

	"github.com/haierkeys/ecrit-note-service/pkg/cache"
	"github.com/haierkeys/ecrit-note-service/pkg/util"
	"github.com/haierkeys/ecrit-note-service/pkg/writequeue"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// 环境变量覆盖的敏感配置项
const (
	EnvAuthTokenKey     = "ECRIT_AUTH_TOKEN_KEY"
	EnvDatabasePassword = "ECRIT_DATABASE_PASSWORD"
	EnvCachePassword    = "ECRIT_CACHE_PASSWORD"
)

// AppConfig 应用配置
type AppConfig struct {
	File     string         `yaml:"-"` // 配置文件路径，不序列化
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Cache    CacheConfig    `yaml:"cache"`
	App      AppSettings    `yaml:"app"`
	Security SecurityConfig `yaml:"security"`
	Tracer   TracerConfig   `yaml:"tracer"`
}

// LogConfig 日志配置
type LogConfig struct {
	// Level 日志级别，参见 zapcore.ParseLevel
	Level string `yaml:"level" default:"warn"`
	// File 日志文件路径，为空时只输出到 stderr
	File string `yaml:"file" default:"storage/logs/log.log"`
	// Production 是否启用 JSON 输出
	Production bool `yaml:"production" default:"true"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	// RunMode 运行模式
	RunMode string `yaml:"run-mode" default:"release"`
	// HttpPort HTTP 端口
	HttpPort string `yaml:"http-port" default:":9000"`
	// ReadTimeout 读取超时（秒）
	ReadTimeout int `yaml:"read-timeout" default:"60"`
	// WriteTimeout 写入超时（秒）
	WriteTimeout int `yaml:"write-timeout" default:"60"`
	// PrivateHttpListen 私有 HTTP 监听地址（metrics、pprof），为空时不启动
	PrivateHttpListen string `yaml:"private-http-listen" default:"127.0.0.1:9001"`
	// PublicURL 分享链接使用的外部地址，为空时使用请求的 Host
	PublicURL string `yaml:"public-url"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	AuthTokenKey string `yaml:"auth-token-key" default:"ecrit-Auth-Token"`
	TokenExpiry  string `yaml:"token-expiry" default:"7d"` // 本地签发 Token 的有效期，支持格式：7d（天）、24h（小时）、30m（分钟）
	TokenIssuer  string `yaml:"token-issuer" default:"ecrit-note-service"`
	// PrivateToken 私有路由访问令牌，为空时不校验
	PrivateToken string `yaml:"private-token"`
	// ShareRateLimit 匿名分享接口每个 IP 每分钟的请求数，0 表示不限
	ShareRateLimit int `yaml:"share-rate-limit" default:"30"`
	// WriteRateLimit 每个用户在每个笔记写路由上每秒的请求数，0 表示不限
	WriteRateLimit int `yaml:"write-rate-limit" default:"0"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// Type 数据库类型 sqlite / mysql / postgres
	Type string `yaml:"type" default:"sqlite"`
	// Path SQLite 数据库文件路径
	Path string `yaml:"path" default:"storage/database/db.sqlite3"`
	// UserName 用户名
	UserName string `yaml:"username"`
	// Password 密码
	Password string `yaml:"password"`
	// Host 主机
	Host string `yaml:"host"`
	// Port 端口（postgres）
	Port int `yaml:"port"`
	// Name 数据库名
	Name string `yaml:"name"`
	// TablePrefix 表前缀
	TablePrefix string `yaml:"table-prefix"`
	// AutoMigrate 是否启用自动迁移
	AutoMigrate bool `yaml:"auto-migrate" default:"true"`
	// Charset 字符集
	Charset string `yaml:"charset"`
	// ParseTime 是否解析时间
	ParseTime bool `yaml:"parse-time" default:"true"`
	// SSLMode postgres sslmode
	SSLMode string `yaml:"ssl-mode"`
	// MaxIdleConns 最大闲置连接数，默认 10
	MaxIdleConns int `yaml:"max-idle-conns" default:"10"`
	// MaxOpenConns 最大打开连接数，默认 100
	MaxOpenConns int `yaml:"max-open-conns" default:"100"`
	// ConnMaxLifetime 连接最大生命周期，支持格式：30m（分钟）、1h（小时），默认 30m
	ConnMaxLifetime string `yaml:"conn-max-lifetime" default:"30m"`
	// ConnMaxIdleTime 空闲连接最大生命周期，支持格式：10m（分钟）、1h（小时），默认 10m
	ConnMaxIdleTime string `yaml:"conn-max-idle-time" default:"10m"`
}

// CacheConfig 缓存配置
type CacheConfig struct {
	// Driver memory / redis / none
	Driver string `yaml:"driver" default:"memory"`
	// MaxEntries 内存后端最大条目数
	MaxEntries int `yaml:"max-entries" default:"10000"`
	// Addr redis 地址
	Addr string `yaml:"addr" default:"127.0.0.1:6379"`
	// Password redis 密码
	Password string `yaml:"password"`
	// DB redis 库编号
	DB int `yaml:"db"`
	// KeyPrefix 键前缀
	KeyPrefix string `yaml:"key-prefix" default:"ecrit:"`
	// NoteTTL 单条笔记缓存时间
	NoteTTL string `yaml:"note-ttl" default:"10m"`
	// ListTTL 列表缓存时间
	ListTTL string `yaml:"list-ttl" default:"5m"`
	// SharedTTL 匿名读取缓存时间
	SharedTTL string `yaml:"shared-ttl" default:"5m"`
	// OpTimeout 单次缓存操作超时
	OpTimeout string `yaml:"op-timeout" default:"250ms"`
	// SweepSchedule 内存缓存过期清理的 cron 表达式
	SweepSchedule string `yaml:"sweep-schedule" default:"@every 1m"`
}

// AppSettings 应用设置
type AppSettings struct {
	// DefaultContextTimeout 默认上下文超时时间（秒）
	DefaultContextTimeout int `yaml:"default-context-timeout" default:"60"`

	// Write Queue 配置
	WriteQueueCapacity int    `yaml:"write-queue-capacity" default:"100"`
	WriteQueueTimeout  string `yaml:"write-queue-timeout" default:"30s"`
	WriteQueueIdleTime string `yaml:"write-queue-idle-time" default:"10m"`
}

// TracerConfig 请求追踪配置
type TracerConfig struct {
	// Enabled 是否启用追踪
	Enabled bool `yaml:"enabled" default:"true"`
	// Header 追踪 ID 请求头名称，默认 X-Trace-ID
	Header string `yaml:"header" default:"X-Trace-ID"`
}

// LoadConfig 从文件加载配置
// 返回配置实例和配置文件的绝对路径
func LoadConfig(f string) (*AppConfig, string, error) {
	realpath, err := filepath.Abs(f)
	if err != nil {
		return nil, "", err
	}
	realpath = filepath.Clean(realpath)

	c := new(AppConfig)
	c.File = realpath

	// 设置默认值
	if err := defaults.Set(c); err != nil {
		return nil, realpath, errors.Wrap(err, "set default config failed")
	}

	file, err := os.ReadFile(realpath)
	if err != nil {
		return nil, realpath, errors.Wrap(err, "read config file failed")
	}

	err = yaml.Unmarshal(file, c)
	if err != nil {
		return nil, realpath, errors.Wrap(err, "parse config file failed")
	}

	// 不再二次填充默认值：YAML 中显式写出的 false 与空字符串需要保留
	// （例如 tracer.enabled: false、log.file: ""）

	// .env 可选：配置文件目录优先，其次工作目录；已存在的环境变量不会被覆盖
	_ = godotenv.Load(filepath.Join(filepath.Dir(realpath), ".env"))
	_ = godotenv.Load()
	c.applyEnv()

	return c, realpath, nil
}

// applyEnv 环境变量覆盖敏感配置
func (c *AppConfig) applyEnv() {
	if v := os.Getenv(EnvAuthTokenKey); v != "" {
		c.Security.AuthTokenKey = v
	}
	if v := os.Getenv(EnvDatabasePassword); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv(EnvCachePassword); v != "" {
		c.Cache.Password = v
	}
}

// Save 保存配置到文件
func (c *AppConfig) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config failed")
	}

	err = os.WriteFile(c.File, data, 0644)
	if err != nil {
		return errors.Wrap(err, "write config file failed")
	}

	return nil
}

// GetWriteQueueConfig 获取 Write Queue 配置
func (c *AppConfig) GetWriteQueueConfig() writequeue.Config {
	cfg := writequeue.DefaultConfig()

	if c.App.WriteQueueCapacity > 0 {
		cfg.QueueCapacity = c.App.WriteQueueCapacity
	}
	if c.App.WriteQueueTimeout != "" {
		if timeout, err := util.ParseDuration(c.App.WriteQueueTimeout); err == nil {
			cfg.WriteTimeout = timeout
		}
	}
	if c.App.WriteQueueIdleTime != "" {
		if idleTime, err := util.ParseDuration(c.App.WriteQueueIdleTime); err == nil {
			cfg.IdleTimeout = idleTime
		}
	}

	return cfg
}

// GetCacheStoreConfig 获取缓存后端配置
func (c *AppConfig) GetCacheStoreConfig() cache.Config {
	return cache.Config{
		Driver:        c.Cache.Driver,
		MaxEntries:    c.Cache.MaxEntries,
		RedisAddr:     c.Cache.Addr,
		RedisPassword: c.Cache.Password,
		RedisDB:       c.Cache.DB,
		KeyPrefix:     c.Cache.KeyPrefix,
	}
}

// GetTokenExpiry 获取 Token 过期时间
func (c *AppConfig) GetTokenExpiry() time.Duration {
	return util.ParseDurationOr(c.Security.TokenExpiry, 7*24*time.Hour)
}
