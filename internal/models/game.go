package models

import (
	"time"
)

// Game 游戏目录记录表
// ID 为服务端分配的UUID字符串，创建后不可变
type Game struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Level     string    `gorm:"size:100;not null" json:"level"`
	Skill     string    `gorm:"size:100;not null" json:"skill"`
	FileName  string    `gorm:"size:255;not null" json:"file"` // 游戏文件在games桶中的存储名
	IconName  string    `gorm:"size:255;not null" json:"icon"` // 图标文件在icons桶中的存储名
	CreatedAt time.Time `json:"created_at"`
}

// TableName 指定表名
func (Game) TableName() string {
	return "games"
}
