package filestore

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kiflomm/mu-maintainance/config"
)

var (
	ErrUnsupportedType = errors.New("不支持的文件类型")
	ErrTooLarge        = errors.New("文件过大")
	ErrInvalidName     = errors.New("非法文件名")
)

// LocalStore 本地磁盘图片存储
//
// 写入分两步：Stage 写入暂存目录 → Promote 移动到正式目录。
// 数据库写入成功前文件不会出现在对外目录中。
type LocalStore struct {
	dir          string
	stagingDir   string
	publicPrefix string
	maxBytes     int64
	allowed      map[string]bool
	logger       *zap.Logger
}

// NewLocalStore 创建本地存储并确保目录存在
func NewLocalStore(cfg *config.UploadConfig, logger *zap.Logger) (*LocalStore, error) {
	for _, dir := range []string{cfg.Dir, cfg.StagingDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("创建上传目录失败 %s: %w", dir, err)
		}
	}

	allowed := make(map[string]bool, len(cfg.AllowedMIME))
	for _, m := range cfg.AllowedMIME {
		allowed[strings.ToLower(strings.TrimSpace(m))] = true
	}

	return &LocalStore{
		dir:          cfg.Dir,
		stagingDir:   cfg.StagingDir,
		publicPrefix: strings.TrimRight(cfg.PublicPrefix, "/"),
		maxBytes:     cfg.MaxBytes,
		allowed:      allowed,
		logger:       logger,
	}, nil
}

// MaxBytes 单个文件大小上限
func (s *LocalStore) MaxBytes() int64 {
	return s.maxBytes
}

// Detect 按文件内容识别图片类型，返回扩展名（含点）
// 不信任客户端传入的 Content-Type 与文件名
func (s *LocalStore) Detect(data []byte) (string, error) {
	if int64(len(data)) > s.maxBytes {
		return "", ErrTooLarge
	}
	mt := mimetype.Detect(data)
	if !s.allowed[mt.String()] {
		return "", ErrUnsupportedType
	}
	return mt.Extension(), nil
}

// Stage 写入暂存目录，返回生成的文件名
func (s *LocalStore) Stage(data []byte, ext string) (string, error) {
	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(s.stagingDir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("写入暂存文件失败: %w", err)
	}
	return name, nil
}

// Promote 将暂存文件移动到正式目录
func (s *LocalStore) Promote(name string) error {
	if !validName(name) {
		return ErrInvalidName
	}
	if err := os.Rename(filepath.Join(s.stagingDir, name), filepath.Join(s.dir, name)); err != nil {
		return fmt.Errorf("转存文件失败: %w", err)
	}
	return nil
}

// Discard 删除暂存文件（不存在时忽略）
func (s *LocalStore) Discard(name string) {
	s.remove(filepath.Join(s.stagingDir, name))
}

// Remove 删除正式目录中的文件（补偿操作）
func (s *LocalStore) Remove(name string) {
	s.remove(filepath.Join(s.dir, name))
}

// PublicURL 文件对外访问地址
func (s *LocalStore) PublicURL(name string) string {
	if name == "" {
		return ""
	}
	return path.Join(s.publicPrefix, name)
}

// Root 正式目录（供静态文件路由挂载）
func (s *LocalStore) Root() string {
	return s.dir
}

func (s *LocalStore) remove(p string) {
	if !validName(filepath.Base(p)) {
		return
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("清理上传文件失败", zap.String("path", p), zap.Error(err))
	}
}

// validName 仅允许 Stage 生成的扁平文件名，防止路径穿越
func validName(name string) bool {
	return name != "" && name == filepath.Base(name) && !strings.HasPrefix(name, ".")
}
