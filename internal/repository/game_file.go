package repository

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/wfunc/game-library/internal/errors"
	"github.com/wfunc/game-library/internal/logger"
	"github.com/wfunc/game-library/internal/models"
)

// fileGameRepo 平面文件后端的游戏目录仓储
// 整个目录保存为单个JSON数组文件，每次追加整体重写
// 互斥锁串行化读-改-写序列，避免并发追加时的丢失更新
type fileGameRepo struct {
	path string
	mu   sync.Mutex
}

// NewFileGameRepository 创建平面文件后端仓储
func NewFileGameRepository(path string) GameRepository {
	return &fileGameRepo{path: path}
}

// Create 追加游戏记录并整体重写文件
func (r *fileGameRepo) Create(ctx context.Context, game *models.Game) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	defer func() {
		logger.LogStoreOperation("create", "file", time.Since(start), err)
	}()

	r.mu.Lock()
	defer r.mu.Unlock()

	games, err := r.load()
	if err != nil {
		return err
	}

	games = append(games, game)
	return r.save(games)
}

// ListAll 按追加顺序返回全部游戏记录
func (r *fileGameRepo) ListAll(ctx context.Context) (games []*models.Game, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() {
		logger.LogStoreOperation("list", "file", time.Since(start), err)
	}()

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.load()
}

// load 读取文件中的全部记录，文件不存在视为空目录
func (r *fileGameRepo) load() ([]*models.Game, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []*models.Game{}, nil
		}
		return nil, errors.Wrapf(err, errors.ErrCatalogRead, "读取目录文件失败: %s", r.path)
	}

	if len(data) == 0 {
		return []*models.Game{}, nil
	}

	var games []*models.Game
	if err := json.Unmarshal(data, &games); err != nil {
		return nil, errors.Wrapf(err, errors.ErrCatalogDecode, "解析目录文件失败: %s", r.path)
	}

	return games, nil
}

// save 整体重写目录文件
// 先写临时文件再原子替换，避免写入中断留下半个文件
func (r *fileGameRepo) save(games []*models.Game) error {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrCatalogWrite, "创建目录文件路径失败: %s", dir)
	}

	data, err := json.MarshalIndent(games, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrCatalogWrite)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".tmp-*")
	if err != nil {
		return errors.Wrapf(err, errors.ErrCatalogWrite, "创建临时文件失败: %s", dir)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrapf(err, errors.ErrCatalogWrite, "写入目录文件失败: %s", r.path)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, errors.ErrCatalogWrite, "关闭目录文件失败: %s", r.path)
	}

	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, errors.ErrCatalogWrite, "替换目录文件失败: %s", r.path)
	}

	return nil
}
