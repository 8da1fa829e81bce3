package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/wfunc/game-library/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB 为测试套件设置测试数据库
func SetupTestDB() *gorm.DB {
	// 使用内存数据库进行测试（更快，不需要文件系统，在所有环境中都能工作）
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(err)
	}

	// 自动迁移模型
	if err := db.AutoMigrate(&models.Game{}); err != nil {
		panic(err)
	}

	return db
}

// CleanupTestDB 清理测试数据库
func CleanupTestDB(db *gorm.DB) {
	// 关闭数据库连接
	sqlDB, _ := db.DB()
	if sqlDB != nil {
		sqlDB.Close()
	}
}

// CreateTestGame 创建测试游戏记录
func CreateTestGame(title, level, skill string) *models.Game {
	return &models.Game{
		ID:        uuid.NewString(),
		Title:     title,
		Level:     level,
		Skill:     skill,
		FileName:  "gameFile-1700000000000-" + uuid.NewString() + ".zip",
		IconName:  "iconFile-1700000000000-" + uuid.NewString() + ".png",
		CreatedAt: time.Now(),
	}
}
