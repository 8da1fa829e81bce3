package service

import (
	"github.com/wfunc/game-library/internal/repository"
	"go.uber.org/zap"
)

// Services 服务集合
type Services struct {
	Catalog CatalogService
}

// NewServices 创建服务集合
// 仓储由调用方构造并注入，服务层不感知后端类型
func NewServices(gameRepo repository.GameRepository, log *zap.Logger) *Services {
	return &Services{
		Catalog: NewCatalogService(gameRepo, log),
	}
}
