package api

import (
	"mime/multipart"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/game-library/internal/errors"
	"github.com/wfunc/game-library/internal/models"
	"github.com/wfunc/game-library/internal/service"
	"github.com/wfunc/game-library/internal/storage"
	"go.uber.org/zap"
)

// GameHandler 游戏目录处理器
type GameHandler struct {
	catalog service.CatalogService
	store   *storage.Store
	logger  *zap.Logger
}

// NewGameHandler 创建游戏目录处理器
func NewGameHandler(catalog service.CatalogService, store *storage.Store, logger *zap.Logger) *GameHandler {
	return &GameHandler{
		catalog: catalog,
		store:   store,
		logger:  logger,
	}
}

// UploadGameResponse 上传成功响应
type UploadGameResponse struct {
	Message string       `json:"message"`
	Game    *models.Game `json:"game"`
}

// ListGames 获取游戏列表
// @Summary 获取游戏列表
// @Description 返回全部游戏记录，附带以请求主机名装配的下载URL
// @Tags Games
// @Produce json
// @Success 200 {array} service.DecoratedGame
// @Failure 500 {object} map[string]string
// @Router /games [get]
func (h *GameHandler) ListGames(c *gin.Context) {
	scheme := requestScheme(c)
	host := c.Request.Host

	games, err := h.catalog.ListGames(c.Request.Context(), func(bucket storage.Bucket, storedName string) string {
		return scheme + "://" + host + "/uploads/" + string(bucket) + "/" + storedName
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(200, games)
}

// UploadGame 上传游戏
// @Summary 上传游戏
// @Description 接收multipart表单（title/level/skill字段与gameFile/iconFile文件），写入资源并追加目录记录
// @Tags Games
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "游戏标题"
// @Param level formData string true "难度/年级"
// @Param skill formData string true "技能/学科"
// @Param gameFile formData file true "游戏文件"
// @Param iconFile formData file true "图标文件"
// @Success 201 {object} UploadGameResponse
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /upload-game [post]
func (h *GameHandler) UploadGame(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(400, gin.H{"error": "无效的multipart表单"})
		return
	}

	title := c.PostForm("title")
	level := c.PostForm("level")
	skill := c.PostForm("skill")

	// 文本字段与文件字段全部校验完毕后才落盘，
	// 被拒绝的请求不留下任何文件；空白等同缺失，与服务层校验一致
	if strings.TrimSpace(title) == "" || strings.TrimSpace(level) == "" || strings.TrimSpace(skill) == "" {
		c.JSON(400, gin.H{"error": "缺少必填字段"})
		return
	}

	// 未知文件字段硬性拒绝，不落入未分类路径
	for field := range form.File {
		if _, err := storage.BucketForField(field); err != nil {
			h.logger.Warn("拒绝未知上传字段", zap.String("field", field))
			c.JSON(400, gin.H{"error": "未知的上传字段: " + field})
			return
		}
	}

	gameFiles := form.File["gameFile"]
	iconFiles := form.File["iconFile"]
	if len(gameFiles) == 0 || len(iconFiles) == 0 {
		c.JSON(400, gin.H{"error": "缺少必填字段"})
		return
	}

	// 写入游戏文件
	fileName, err := h.saveUpload(storage.BucketGames, gameFiles[0])
	if err != nil {
		h.respondError(c, err)
		return
	}

	// 写入图标文件
	iconName, err := h.saveUpload(storage.BucketIcons, iconFiles[0])
	if err != nil {
		// 游戏文件已落盘，记录失败时成为孤儿资源，不做补偿删除
		h.respondError(c, err)
		return
	}

	game, err := h.catalog.CreateGame(c.Request.Context(), &service.CreateGameInput{
		Title:    title,
		Level:    level,
		Skill:    skill,
		FileName: fileName,
		IconName: iconName,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(201, UploadGameResponse{
		Message: "上传成功",
		Game:    game,
	})
}

// ServeAsset 上传资源静态透传
// @Summary 下载资源
// @Description 按存储桶与存储名返回资源文件内容
// @Tags Assets
// @Produce octet-stream
// @Param bucket path string true "存储桶（games或icons）"
// @Param name path string true "存储名"
// @Success 200 {file} binary
// @Failure 404 {object} map[string]string
// @Router /uploads/{bucket}/{name} [get]
func (h *GameHandler) ServeAsset(c *gin.Context) {
	bucket := storage.Bucket(c.Param("bucket"))
	name := c.Param("name")

	path, err := h.store.Path(bucket, name)
	if err != nil {
		c.JSON(404, gin.H{"error": "资源不存在"})
		return
	}

	if !h.store.Exists(bucket, name) {
		c.JSON(404, gin.H{"error": "资源不存在"})
		return
	}

	c.File(path)
}

// saveUpload 将单个上传文件写入指定存储桶
func (h *GameHandler) saveUpload(bucket storage.Bucket, fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrStorageRead, "读取上传内容失败: %s", fh.Filename)
	}
	defer src.Close()

	return h.store.Save(bucket, fh.Filename, src)
}

// respondError 按错误码映射HTTP状态并返回JSON错误体
func (h *GameHandler) respondError(c *gin.Context, err error) {
	if appErr, ok := err.(*errors.AppError); ok {
		h.logger.Error("请求处理失败",
			zap.Int("code", int(appErr.Code)),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		c.JSON(appErr.HTTPStatus(), gin.H{"error": appErr.Message})
		return
	}

	h.logger.Error("请求处理失败", zap.String("path", c.Request.URL.Path), zap.Error(err))
	c.JSON(500, gin.H{"error": "内部错误"})
}

// requestScheme 推断请求协议（考虑反向代理头）
func requestScheme(c *gin.Context) string {
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		return proto
	}
	if c.Request.TLS != nil {
		return "https"
	}
	return "http"
}
