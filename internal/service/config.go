// Package service implements the business logic layer
// Package service 实现业务逻辑层
package service

import "time"

// ServiceConfig service layer configuration
// ServiceConfig 服务层配置
type ServiceConfig struct {
	Cache CacheServiceConfig // Cache TTL policy // 缓存 TTL 策略
	Share ShareServiceConfig // Share related config // 分享相关配置
}

// CacheServiceConfig cache TTL policy per key family
// CacheServiceConfig 各类缓存键的 TTL
type CacheServiceConfig struct {
	NoteTTL   time.Duration // note:{owner}:{id} and note:slug:* // 单条笔记
	ListTTL   time.Duration // notes:list:* // 列表
	SharedTTL time.Duration // shared:note:{id} // 匿名读取
}

// ShareServiceConfig share service configuration
// ShareServiceConfig 分享服务配置
type ShareServiceConfig struct {
	PublicURL string // Base URL used to build share links // 生成分享链接使用的外部地址
}

const (
	defaultNoteTTL   = 10 * time.Minute
	defaultListTTL   = 5 * time.Minute
	defaultSharedTTL = 5 * time.Minute
)

// withDefaults fills zero TTLs
// withDefaults 填充未设置的 TTL
func (c *ServiceConfig) withDefaults() *ServiceConfig {
	out := ServiceConfig{}
	if c != nil {
		out = *c
	}
	if out.Cache.NoteTTL <= 0 {
		out.Cache.NoteTTL = defaultNoteTTL
	}
	if out.Cache.ListTTL <= 0 {
		out.Cache.ListTTL = defaultListTTL
	}
	if out.Cache.SharedTTL <= 0 {
		out.Cache.SharedTTL = defaultSharedTTL
	}
	return &out
}
