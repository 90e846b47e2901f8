// Package dao 实现数据访问层
package dao

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/haierkeys/ecrit-note-service/internal/model"
	"github.com/haierkeys/ecrit-note-service/pkg/util"
	"github.com/haierkeys/ecrit-note-service/pkg/writequeue"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// DatabaseConfig 数据库配置（由 App 层注入）
type DatabaseConfig struct {
	Type            string // sqlite / mysql / postgres
	Path            string // SQLite 数据库文件路径
	UserName        string
	Password        string
	Host            string
	Port            int
	Name            string
	TablePrefix     string
	AutoMigrate     bool
	Charset         string
	ParseTime       bool
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime string // 例如 30m
	ConnMaxIdleTime string // 例如 10m
	RunMode         string
}

// Dao 数据访问对象
type Dao struct {
	Db            *gorm.DB
	ctx           context.Context
	config        *DatabaseConfig
	logger        *zap.Logger
	writeQueueMgr *writequeue.Manager
}

// DaoOption Dao 可选配置
type DaoOption func(*Dao)

// WithConfig 注入数据库配置
func WithConfig(cfg *DatabaseConfig) DaoOption {
	return func(d *Dao) { d.config = cfg }
}

// WithLogger 注入日志器
func WithLogger(l *zap.Logger) DaoOption {
	return func(d *Dao) { d.logger = l }
}

// WithWriteQueueManager 注入写队列管理器
func WithWriteQueueManager(m *writequeue.Manager) DaoOption {
	return func(d *Dao) { d.writeQueueMgr = m }
}

// New 创建 Dao 实例
func New(db *gorm.DB, ctx context.Context, opts ...DaoOption) *Dao {
	d := &Dao{Db: db, ctx: ctx}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = zap.NewNop()
	}
	if d.ctx == nil {
		d.ctx = context.Background()
	}
	return d
}

// DB 返回带 context 的数据库会话
func (d *Dao) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		ctx = d.ctx
	}
	return d.Db.WithContext(ctx)
}

// Logger 获取日志器
func (d *Dao) Logger() *zap.Logger {
	return d.logger
}

// ExecuteWrite runs fn through the per-owner write queue when one is configured, directly otherwise
// ExecuteWrite 配置了写队列时通过按用户串行的写队列执行 fn，否则直接执行
func (d *Dao) ExecuteWrite(ctx context.Context, ownerID string, fn func() error) error {
	if d.writeQueueMgr == nil {
		return fn()
	}
	return d.writeQueueMgr.Execute(ctx, ownerID, fn)
}

// AutoMigrate 自动迁移表结构
func (d *Dao) AutoMigrate(key string) error {
	return model.AutoMigrate(d.Db, key)
}

// NewDBEngineWithConfig 根据配置创建数据库连接
func NewDBEngineWithConfig(c DatabaseConfig, lg *zap.Logger) (*gorm.DB, error) {
	dialector, err := useDialector(c)
	if err != nil {
		return nil, err
	}

	level := "warn"
	if c.RunMode == "debug" {
		level = "info"
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: NewGormLogger(lg, level),
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   c.TablePrefix, // 表名前缀
			SingularTable: true,          // 使用单数表名
		},
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	// 获取通用数据库对象 sql.DB ，然后使用其提供的功能
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if c.Type == "sqlite" {
		// SQLite 只允许一个写连接
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(c.MaxIdleConns)
		sqlDB.SetMaxOpenConns(c.MaxOpenConns)
	}

	if d, err := util.ParseDuration(c.ConnMaxLifetime); err == nil && d > 0 {
		sqlDB.SetConnMaxLifetime(d)
	} else {
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
	if d, err := util.ParseDuration(c.ConnMaxIdleTime); err == nil && d > 0 {
		sqlDB.SetConnMaxIdleTime(d)
	}

	if c.AutoMigrate {
		if err := model.AutoMigrate(db, ""); err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
	}

	return db, nil
}

func useDialector(c DatabaseConfig) (gorm.Dialector, error) {
	switch c.Type {
	case "mysql":
		charset := c.Charset
		if charset == "" {
			charset = "utf8mb4"
		}
		return mysql.Open(fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=%s&parseTime=%t&loc=Local",
			c.UserName,
			c.Password,
			c.Host,
			c.Name,
			charset,
			c.ParseTime,
		)), nil
	case "postgres":
		port := c.Port
		if port == 0 {
			port = 5432
		}
		sslMode := c.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		return postgres.Open(fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
			c.Host, c.UserName, c.Password, c.Name, port, sslMode)), nil
	case "sqlite":
		if c.Path != ":memory:" && !isMemoryDSN(c.Path) {
			if err := os.MkdirAll(filepath.Dir(c.Path), os.ModePerm); err != nil {
				return nil, err
			}
		}
		return sqlite.Open(c.Path), nil
	}
	return nil, fmt.Errorf("unsupported database type %q", c.Type)
}

func isMemoryDSN(path string) bool {
	return len(path) >= 5 && path[:5] == "file:"
}
