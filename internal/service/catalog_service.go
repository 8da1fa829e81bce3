package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wfunc/game-library/internal/errors"
	"github.com/wfunc/game-library/internal/models"
	"github.com/wfunc/game-library/internal/repository"
	"github.com/wfunc/game-library/internal/storage"
	"go.uber.org/zap"
)

// CreateGameInput 创建游戏记录的输入
// 资源存储名由资源存储层产生，此处只引用
type CreateGameInput struct {
	Title    string
	Level    string
	Skill    string
	FileName string
	IconName string
}

// DecoratedGame 读取时装配了下载URL的游戏记录
type DecoratedGame struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Level   string `json:"level"`
	Skill   string `json:"skill"`
	FileURL string `json:"fileUrl"`
	IconURL string `json:"iconUrl"`
}

// URLBuilder 由调用方（HTTP层）提供的URL构造函数
// 使用请求自身的协议与主机名，使同一份数据在任意部署地址下产出正确URL
type URLBuilder func(bucket storage.Bucket, storedName string) string

// CatalogService 游戏目录服务接口
type CatalogService interface {
	// CreateGame 校验输入并追加一条游戏记录
	CreateGame(ctx context.Context, input *CreateGameInput) (*models.Game, error)
	// ListGames 返回全部游戏记录，并用builder装配下载URL
	ListGames(ctx context.Context, build URLBuilder) ([]DecoratedGame, error)
}

// catalogService 游戏目录服务实现
type catalogService struct {
	gameRepo repository.GameRepository
	log      *zap.Logger
}

// NewCatalogService 创建游戏目录服务
func NewCatalogService(gameRepo repository.GameRepository, log *zap.Logger) CatalogService {
	return &catalogService{
		gameRepo: gameRepo,
		log:      log,
	}
}

// CreateGame 创建游戏记录
// 五个输入全部必填，校验先于任何持久化写入
func (s *catalogService) CreateGame(ctx context.Context, input *CreateGameInput) (*models.Game, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	game := &models.Game{
		ID:        uuid.NewString(),
		Title:     input.Title,
		Level:     input.Level,
		Skill:     input.Skill,
		FileName:  input.FileName,
		IconName:  input.IconName,
		CreatedAt: time.Now(),
	}

	if err := s.gameRepo.Create(ctx, game); err != nil {
		s.log.Error("创建游戏记录失败",
			zap.String("title", input.Title),
			zap.Error(err),
		)
		return nil, errors.Wrap(err, errors.ErrCatalogWrite)
	}

	s.log.Info("游戏记录已创建",
		zap.String("id", game.ID),
		zap.String("title", game.Title),
		zap.String("level", game.Level),
		zap.String("skill", game.Skill),
	)

	return game, nil
}

// ListGames 返回装配了URL的全部游戏记录
func (s *catalogService) ListGames(ctx context.Context, build URLBuilder) ([]DecoratedGame, error) {
	games, err := s.gameRepo.ListAll(ctx)
	if err != nil {
		s.log.Error("读取游戏目录失败", zap.Error(err))
		return nil, errors.Wrap(err, errors.ErrCatalogRead)
	}

	decorated := make([]DecoratedGame, 0, len(games))
	for _, game := range games {
		decorated = append(decorated, DecoratedGame{
			ID:      game.ID,
			Title:   game.Title,
			Level:   game.Level,
			Skill:   game.Skill,
			FileURL: build(storage.BucketGames, game.FileName),
			IconURL: build(storage.BucketIcons, game.IconName),
		})
	}

	return decorated, nil
}

// validateInput 校验创建输入，全部字段必填
func validateInput(input *CreateGameInput) error {
	fields := []struct {
		name  string
		value string
	}{
		{"title", input.Title},
		{"level", input.Level},
		{"skill", input.Skill},
		{"gameFile", input.FileName},
		{"iconFile", input.IconName},
	}

	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return errors.Newf(errors.ErrInvalidParam, "字段 %s 不能为空", f.name)
		}
	}

	return nil
}
