package storage

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/wfunc/game-library/internal/errors"
	"github.com/wfunc/game-library/internal/logger"
)

// Bucket 资源存储桶（逻辑分组，对应上传根目录下的一个子目录）
type Bucket string

const (
	// BucketGames 游戏文件桶
	BucketGames Bucket = "games"
	// BucketIcons 图标文件桶
	BucketIcons Bucket = "icons"
)

// fieldBuckets 上传字段名到存储桶的映射
// 未知字段一律拒绝，不允许落入未分类路径
var fieldBuckets = map[string]Bucket{
	"gameFile": BucketGames,
	"iconFile": BucketIcons,
}

// bucketRoles 存储桶到文件名前缀的映射
var bucketRoles = map[Bucket]string{
	BucketGames: "gameFile",
	BucketIcons: "iconFile",
}

// BucketForField 根据上传字段名解析存储桶
func BucketForField(field string) (Bucket, error) {
	bucket, ok := fieldBuckets[field]
	if !ok {
		return "", errors.Newf(errors.ErrInvalidBucket, "未知的上传字段: %s", field)
	}
	return bucket, nil
}

// Buckets 返回全部已知存储桶
func Buckets() []Bucket {
	return []Bucket{BucketGames, BucketIcons}
}

// Valid 检查存储桶是否已知
func (b Bucket) Valid() bool {
	_, ok := bucketRoles[b]
	return ok
}

// Store 磁盘资源存储
type Store struct {
	root string
}

// NewStore 创建资源存储
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Root 返回上传根目录
func (s *Store) Root() string {
	return s.root
}

// Dir 返回存储桶对应的物理目录
func (s *Store) Dir(bucket Bucket) string {
	return filepath.Join(s.root, string(bucket))
}

// EnsureBuckets 创建全部存储桶目录（幂等）
func (s *Store) EnsureBuckets() error {
	for _, bucket := range Buckets() {
		if err := os.MkdirAll(s.Dir(bucket), 0755); err != nil {
			return errors.Wrapf(err, errors.ErrStorageWrite, "创建存储桶目录失败: %s", bucket)
		}
	}
	return nil
}

// Save 将上传内容写入指定存储桶，返回存储名
// 存储名格式: <字段前缀>-<毫秒时间戳>-<UUID><原始扩展名>
// UUID令牌保证并发上传不会产生同名文件
func (s *Store) Save(bucket Bucket, originalFilename string, r io.Reader) (string, error) {
	role, ok := bucketRoles[bucket]
	if !ok {
		return "", errors.Newf(errors.ErrInvalidBucket, "未知的存储桶: %s", bucket)
	}

	storedName := role + "-" + uniqueToken() + filepath.Ext(originalFilename)

	// 确保目录存在
	dir := s.Dir(bucket)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrapf(err, errors.ErrStorageWrite, "创建存储桶目录失败: %s", bucket)
	}

	dst, err := os.OpenFile(filepath.Join(dir, storedName), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrStorageWrite, "创建资源文件失败: %s", storedName)
	}

	size, err := io.Copy(dst, r)
	if err != nil {
		dst.Close()
		return "", errors.Wrapf(err, errors.ErrStorageWrite, "写入资源文件失败: %s", storedName)
	}

	if err := dst.Close(); err != nil {
		return "", errors.Wrapf(err, errors.ErrStorageWrite, "关闭资源文件失败: %s", storedName)
	}

	logger.LogUpload(string(bucket), storedName, size)

	return storedName, nil
}

// uniqueToken 生成唯一性令牌（时间分量 + 随机分量）
func uniqueToken() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 10) + "-" + uuid.NewString()
}

// Open 按存储名打开资源文件
func (s *Store) Open(bucket Bucket, storedName string) (*os.File, error) {
	path, err := s.Path(bucket, storedName)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrNotFound, "资源不存在: %s/%s", bucket, storedName)
		}
		return nil, errors.Wrapf(err, errors.ErrStorageRead, "打开资源文件失败: %s", storedName)
	}
	return f, nil
}

// Exists 检查资源是否存在
func (s *Store) Exists(bucket Bucket, storedName string) bool {
	path, err := s.Path(bucket, storedName)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Path 返回资源的物理路径，拒绝路径穿越
func (s *Store) Path(bucket Bucket, storedName string) (string, error) {
	if !bucket.Valid() {
		return "", errors.Newf(errors.ErrInvalidBucket, "未知的存储桶: %s", bucket)
	}
	if storedName == "" || storedName != filepath.Base(storedName) {
		return "", errors.Newf(errors.ErrInvalidName, "非法的资源名称: %s", storedName)
	}
	return filepath.Join(s.Dir(bucket), storedName), nil
}
