package repository

import (
	"context"

	"github.com/wfunc/game-library/internal/models"
)

// GameRepository 游戏目录仓储接口
// 两种实现：关系数据库（逐条插入）与JSON平面文件（整体重写，单写者锁保护）
type GameRepository interface {
	// Create 追加一条游戏记录
	Create(ctx context.Context, game *models.Game) error
	// ListAll 按创建顺序返回全部游戏记录
	ListAll(ctx context.Context) ([]*models.Game, error)
}
