// Package model 定义数据模型
package model

import (
	"gorm.io/gorm"
)

// AutoMigrate migrates the table registered under key; empty key migrates every table
// AutoMigrate 迁移 key 对应的表，key 为空时迁移全部表
func AutoMigrate(db *gorm.DB, key string) error {
	switch key {
	case "Note":
		return db.AutoMigrate(Note{})
	case "":
		return db.AutoMigrate(Note{})
	}
	return nil
}
