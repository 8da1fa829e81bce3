package repository

import (
	"context"

	"github.com/wfunc/game-library/internal/models"
	"gorm.io/gorm"
)

// gameRepo 数据库后端的游戏目录仓储
type gameRepo struct {
	db *gorm.DB
}

// NewGameRepository 创建数据库后端仓储
func NewGameRepository(db *gorm.DB) GameRepository {
	return &gameRepo{db: db}
}

// Create 创建游戏记录
func (r *gameRepo) Create(ctx context.Context, game *models.Game) error {
	return r.db.WithContext(ctx).Create(game).Error
}

// ListAll 按创建时间升序返回全部游戏记录
func (r *gameRepo) ListAll(ctx context.Context) ([]*models.Game, error) {
	var games []*models.Game
	err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&games).Error
	return games, err
}
