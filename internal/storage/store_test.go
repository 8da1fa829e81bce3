package storage

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/game-library/internal/errors"
)

// 测试字段名到存储桶的映射
func TestBucketForField(t *testing.T) {
	bucket, err := BucketForField("gameFile")
	assert.NoError(t, err)
	assert.Equal(t, BucketGames, bucket)

	bucket, err = BucketForField("iconFile")
	assert.NoError(t, err)
	assert.Equal(t, BucketIcons, bucket)

	// 未知字段必须硬性拒绝
	_, err = BucketForField("avatarFile")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidBucket))

	_, err = BucketForField("")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidBucket))
}

// 测试写入并读回资源
func TestStore_SaveRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())

	content := []byte("PK\x03\x04 fake zip bytes")
	storedName, err := store.Save(BucketGames, "quiz.zip", bytes.NewReader(content))
	require.NoError(t, err)

	// 保留原始扩展名，带字段前缀
	assert.True(t, strings.HasPrefix(storedName, "gameFile-"))
	assert.True(t, strings.HasSuffix(storedName, ".zip"))

	// 读回内容一致
	f, err := store.Open(BucketGames, storedName)
	require.NoError(t, err)
	defer f.Close()

	got, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

// 测试存储桶目录按需创建
func TestStore_CreatesBucketDir(t *testing.T) {
	root := filepath.Join(t.TempDir(), "uploads")
	store := NewStore(root)

	// 目录尚不存在
	_, err := os.Stat(store.Dir(BucketIcons))
	assert.True(t, os.IsNotExist(err))

	storedName, err := store.Save(BucketIcons, "icon.png", strings.NewReader("png"))
	require.NoError(t, err)
	assert.True(t, store.Exists(BucketIcons, storedName))
}

// 测试EnsureBuckets幂等
func TestStore_EnsureBuckets(t *testing.T) {
	store := NewStore(t.TempDir())

	require.NoError(t, store.EnsureBuckets())
	require.NoError(t, store.EnsureBuckets())

	for _, bucket := range Buckets() {
		info, err := os.Stat(store.Dir(bucket))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

// 测试同一毫秒内大量写入不产生重名
func TestStore_UniqueNames(t *testing.T) {
	store := NewStore(t.TempDir())

	const n = 1000
	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		storedName, err := store.Save(BucketGames, "game.zip", strings.NewReader("x"))
		require.NoError(t, err)
		require.False(t, seen[storedName], "存储名重复: %s", storedName)
		seen[storedName] = true
	}
}

// 测试无扩展名文件
func TestStore_NoExtension(t *testing.T) {
	store := NewStore(t.TempDir())

	storedName, err := store.Save(BucketGames, "README", strings.NewReader("data"))
	require.NoError(t, err)
	assert.False(t, strings.Contains(storedName, "."))
	assert.True(t, store.Exists(BucketGames, storedName))
}

// 测试未知存储桶写入被拒绝
func TestStore_InvalidBucket(t *testing.T) {
	store := NewStore(t.TempDir())

	_, err := store.Save(Bucket("uploads"), "file.bin", strings.NewReader("x"))
	assert.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidBucket))
}

// 测试路径穿越被拒绝
func TestStore_PathTraversal(t *testing.T) {
	store := NewStore(t.TempDir())

	_, err := store.Path(BucketGames, "../secret")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidName))

	_, err = store.Open(BucketGames, "../../etc/passwd")
	assert.Error(t, err)

	assert.False(t, store.Exists(BucketGames, "../escape"))
}

// 测试打开不存在的资源
func TestStore_OpenMissing(t *testing.T) {
	store := NewStore(t.TempDir())
	require.NoError(t, store.EnsureBuckets())

	_, err := store.Open(BucketIcons, "iconFile-0-missing.png")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

// 测试写入失败（目录位置被文件占用）
func TestStore_WriteFailure(t *testing.T) {
	root := t.TempDir()
	// 用普通文件占住games目录的位置，使MkdirAll失败
	require.NoError(t, os.WriteFile(filepath.Join(root, "games"), []byte("not a dir"), 0644))

	store := NewStore(root)
	_, err := store.Save(BucketGames, "quiz.zip", strings.NewReader("x"))
	assert.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrStorageWrite))
}
