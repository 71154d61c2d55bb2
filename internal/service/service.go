package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kiflomm/mu-maintainance/config"
	"github.com/kiflomm/mu-maintainance/internal/lifecycle"
	"github.com/kiflomm/mu-maintainance/internal/policy"
	"github.com/kiflomm/mu-maintainance/internal/repository"
	"github.com/kiflomm/mu-maintainance/pkg/jwt"
)

// TokenBlacklist 登出 Token 黑名单（Redis 实现）
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}

// FileStore 投诉图片存储
type FileStore interface {
	MaxBytes() int64
	Detect(data []byte) (string, error)
	Stage(data []byte, ext string) (string, error)
	Promote(name string) error
	Discard(name string)
	Remove(name string)
	PublicURL(name string) string
}

// Service 所有 Service 的聚合入口
type Service struct {
	Auth      AuthService
	User      UserService
	Reference ReferenceService
	Complaint ComplaintService
	Export    ExportService
}

// Deps Service 层依赖
type Deps struct {
	Config    *config.Config
	Repo      *repository.Repository
	JWT       *jwt.Manager
	Blacklist TokenBlacklist // Redis 不可用时为 nil
	Store     FileStore
	Logger    *zap.Logger
}

// NewService 创建 Service 聚合
func NewService(d Deps) *Service {
	engine := lifecycle.NewEngine(
		lifecycle.NewTicketGenerator(d.Config.Ticket.Prefix),
		d.Config.Ticket.MaxAttempts,
		d.Config.Workflow.StrictTransitions,
	)
	pol := policy.New(d.Config.Policy.DirectorCanUpdate)

	return &Service{
		Auth:      NewAuthService(d.Config, d.Repo, d.JWT, d.Blacklist, d.Logger),
		User:      NewUserService(d.Repo, d.Logger),
		Reference: NewReferenceService(d.Repo, d.Store, d.Logger),
		Complaint: NewComplaintService(d.Repo, engine, pol, d.Store, d.Logger),
		Export:    NewExportService(d.Repo, pol, d.Store, d.Logger),
	}
}
