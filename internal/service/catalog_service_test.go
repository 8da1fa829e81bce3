package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/wfunc/game-library/internal/errors"
	"github.com/wfunc/game-library/internal/models"
	"github.com/wfunc/game-library/internal/repository"
	"github.com/wfunc/game-library/internal/storage"
	"go.uber.org/zap"
)

// CatalogServiceTestSuite 目录服务测试套件
type CatalogServiceTestSuite struct {
	suite.Suite
	catalog CatalogService
}

func (suite *CatalogServiceTestSuite) SetupTest() {
	gameRepo := repository.NewGameRepository(repository.SetupTestDB())
	suite.catalog = NewCatalogService(gameRepo, zap.NewNop())
}

// validInput 构造合法输入
func validInput() *CreateGameInput {
	return &CreateGameInput{
		Title:    "Math Quiz",
		Level:    "Grade 3",
		Skill:    "Arithmetic",
		FileName: "gameFile-1700000000000-abc.zip",
		IconName: "iconFile-1700000000000-def.png",
	}
}

// testURLBuilder 固定主机的URL构造器
func testURLBuilder(bucket storage.Bucket, storedName string) string {
	return "http://example.com/uploads/" + string(bucket) + "/" + storedName
}

// TestCreateGame 测试创建游戏记录
func (suite *CatalogServiceTestSuite) TestCreateGame() {
	ctx := context.Background()

	game, err := suite.catalog.CreateGame(ctx, validInput())
	suite.NoError(err)
	suite.NotEmpty(game.ID)
	suite.Equal("Math Quiz", game.Title)
	suite.False(game.CreatedAt.IsZero())
}

// TestCreateGame_Validation 测试每个缺失字段都被拒绝
func (suite *CatalogServiceTestSuite) TestCreateGame_Validation() {
	ctx := context.Background()

	mutations := []func(*CreateGameInput){
		func(in *CreateGameInput) { in.Title = "" },
		func(in *CreateGameInput) { in.Level = "" },
		func(in *CreateGameInput) { in.Skill = "" },
		func(in *CreateGameInput) { in.FileName = "" },
		func(in *CreateGameInput) { in.IconName = "" },
		func(in *CreateGameInput) { in.Title = "   " }, // 空白等同缺失
	}

	for _, mutate := range mutations {
		input := validInput()
		mutate(input)

		_, err := suite.catalog.CreateGame(ctx, input)
		suite.Error(err)
		suite.True(errors.Is(err, errors.ErrInvalidParam))
	}

	// 校验失败不产生任何记录
	games, err := suite.catalog.ListGames(ctx, testURLBuilder)
	suite.NoError(err)
	suite.Empty(games)
}

// TestListGames_Decoration 测试URL装配
func (suite *CatalogServiceTestSuite) TestListGames_Decoration() {
	ctx := context.Background()

	created, err := suite.catalog.CreateGame(ctx, validInput())
	suite.NoError(err)

	games, err := suite.catalog.ListGames(ctx, testURLBuilder)
	suite.NoError(err)
	suite.Len(games, 1)

	got := games[0]
	suite.Equal(created.ID, got.ID)
	suite.Equal("Math Quiz", got.Title)
	suite.Equal("Grade 3", got.Level)
	suite.Equal("Arithmetic", got.Skill)
	suite.Equal("http://example.com/uploads/games/"+created.FileName, got.FileURL)
	suite.Equal("http://example.com/uploads/icons/"+created.IconName, got.IconURL)
	suite.True(strings.HasSuffix(got.FileURL, ".zip"))
	suite.True(strings.HasSuffix(got.IconURL, ".png"))
}

// TestListGames_Empty 测试空目录
func (suite *CatalogServiceTestSuite) TestListGames_Empty() {
	ctx := context.Background()

	games, err := suite.catalog.ListGames(ctx, testURLBuilder)
	suite.NoError(err)
	suite.NotNil(games)
	suite.Empty(games)
}

// TestListGames_MultipleBuilders 测试同一数据在不同主机下产出各自的URL
func (suite *CatalogServiceTestSuite) TestListGames_MultipleBuilders() {
	ctx := context.Background()

	_, err := suite.catalog.CreateGame(ctx, validInput())
	suite.NoError(err)

	local, err := suite.catalog.ListGames(ctx, func(bucket storage.Bucket, name string) string {
		return "http://localhost:3000/uploads/" + string(bucket) + "/" + name
	})
	suite.NoError(err)

	public, err := suite.catalog.ListGames(ctx, func(bucket storage.Bucket, name string) string {
		return "https://lms.example.org/uploads/" + string(bucket) + "/" + name
	})
	suite.NoError(err)

	suite.True(strings.HasPrefix(local[0].FileURL, "http://localhost:3000/"))
	suite.True(strings.HasPrefix(public[0].FileURL, "https://lms.example.org/"))
}

// failingRepo 总是失败的仓储，用于模拟存储不可用
type failingRepo struct{}

func (r *failingRepo) Create(ctx context.Context, game *models.Game) error {
	return errors.New(errors.ErrCatalogConnect, "数据库不可达")
}

func (r *failingRepo) ListAll(ctx context.Context) ([]*models.Game, error) {
	return nil, errors.New(errors.ErrCatalogConnect, "数据库不可达")
}

// TestStoreFailure 测试存储不可用时错误透传
func (suite *CatalogServiceTestSuite) TestStoreFailure() {
	ctx := context.Background()
	catalog := NewCatalogService(&failingRepo{}, zap.NewNop())

	_, err := catalog.CreateGame(ctx, validInput())
	suite.Error(err)
	suite.True(errors.Is(err, errors.ErrCatalogConnect))

	_, err = catalog.ListGames(ctx, testURLBuilder)
	suite.Error(err)
	suite.True(errors.Is(err, errors.ErrCatalogConnect))
}

// TestCatalog_FileBackend 测试服务与平面文件后端的组合
func (suite *CatalogServiceTestSuite) TestCatalog_FileBackend() {
	ctx := context.Background()

	path := suite.T().TempDir() + "/games.json"
	catalog := NewCatalogService(repository.NewFileGameRepository(path), zap.NewNop())

	created, err := catalog.CreateGame(ctx, validInput())
	suite.NoError(err)

	games, err := catalog.ListGames(ctx, testURLBuilder)
	suite.NoError(err)
	suite.Len(games, 1)
	suite.Equal(created.ID, games[0].ID)
}

func TestCatalogServiceSuite(t *testing.T) {
	suite.Run(t, new(CatalogServiceTestSuite))
}
