package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/kiflomm/mu-maintainance/internal/dto"
	"github.com/kiflomm/mu-maintainance/internal/model"
	"github.com/kiflomm/mu-maintainance/internal/repository"
	pkgerrors "github.com/kiflomm/mu-maintainance/pkg/errors"
)

// ── 用户模块业务错误 ──

var (
	ErrUserSelfDelete   = errors.New("不能删除自己")
	ErrEmailExists      = errors.New("邮箱已被使用")
	ErrAdminRoleLocked  = errors.New("不能修改管理员的角色")
	ErrCampusNotFound   = errors.New("校区不存在")
	ErrCategoryNotFound = errors.New("分类不存在")
)

// UserService 工作人员管理（仅管理员）
type UserService interface {
	Create(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error)
	GetByID(ctx context.Context, id int64) (*dto.UserResponse, error)
	EditForm(ctx context.Context, id int64) (*dto.UserFormResponse, error)
	List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error)
	Update(ctx context.Context, id int64, req *dto.UpdateUserRequest) (*dto.UserResponse, error)
	Delete(ctx context.Context, id int64, callerID int64) error
	SeedAdmin(ctx context.Context, name, email, password string) error
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *userService) Create(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	role := model.Role(req.Role)
	if role == model.RoleAdmin || !role.Valid() {
		return nil, pkgerrors.NewValidationError("role", "角色只能是 coordinator / worker / stud_service_director")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.ensureEmailFree(ctx, email, 0); err != nil {
		return nil, err
	}
	if err := s.checkCampus(ctx, role, req.CampusID); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	user := &model.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CampusID:     req.CampusID,
	}
	if err := s.repo.User.Create(ctx, user); err != nil {
		if errors.Is(err, pkgerrors.ErrConflict) {
			return nil, ErrEmailExists
		}
		s.logger.Error("创建用户失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("创建工作人员",
		zap.Int64("user_id", user.ID), zap.String("role", string(role)))

	return s.GetByID(ctx, user.ID)
}

// ────────────────────── Read ──────────────────────

func (s *userService) GetByID(ctx context.Context, id int64) (*dto.UserResponse, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

// EditForm 编辑页数据：用户 + 可选角色 + 校区列表
func (s *userService) EditForm(ctx context.Context, id int64) (*dto.UserFormResponse, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	campuses, err := s.repo.Campus.List(ctx)
	if err != nil {
		s.logger.Error("查询校区失败", zap.Error(err))
		return nil, err
	}

	roles := make([]string, 0, len(model.Roles))
	for _, r := range model.Roles {
		if r != model.RoleAdmin {
			roles = append(roles, string(r))
		}
	}

	form := &dto.UserFormResponse{
		User:     toUserResponse(user),
		Roles:    roles,
		Campuses: make([]dto.CampusResponse, 0, len(campuses)),
	}
	for i := range campuses {
		form.Campuses = append(form.Campuses, *toCampusResponse(&campuses[i]))
	}
	return form, nil
}

func (s *userService) List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error) {
	filter := repository.UserFilter{
		Role:     model.Role(req.Role),
		CampusID: req.CampusID,
		Keyword:  strings.TrimSpace(req.Keyword),
	}
	users, total, err := s.repo.User.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询用户列表失败", zap.Error(err))
		return nil, 0, err
	}

	list := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		list = append(list, toUserResponse(&users[i]))
	}
	return list, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *userService) Update(ctx context.Context, id int64, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email != user.Email {
			if err := s.ensureEmailFree(ctx, email, user.ID); err != nil {
				return nil, err
			}
			user.Email = email
		}
	}
	if req.Role != nil {
		role := model.Role(*req.Role)
		if role != user.Role {
			if user.Role == model.RoleAdmin {
				return nil, ErrAdminRoleLocked
			}
			if role == model.RoleAdmin || !role.Valid() {
				return nil, pkgerrors.NewValidationError("role", "角色只能是 coordinator / worker / stud_service_director")
			}
			user.Role = role
		}
	}
	if req.CampusID != nil {
		user.CampusID = req.CampusID
		user.Campus = nil
	}
	if err := s.checkCampus(ctx, user.Role, user.CampusID); err != nil {
		return nil, err
	}

	// 密码留空表示不修改
	if req.Password != nil && *req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			s.logger.Error("密码哈希失败", zap.Error(err))
			return nil, err
		}
		user.PasswordHash = string(hash)
	}

	if err := s.repo.User.Update(ctx, user); err != nil {
		if errors.Is(err, pkgerrors.ErrConflict) {
			return nil, ErrEmailExists
		}
		s.logger.Error("更新用户失败", zap.Int64("user_id", id), zap.Error(err))
		return nil, err
	}

	return s.GetByID(ctx, id)
}

// ────────────────────── Delete ──────────────────────

// Delete 删除工作人员；其名下投诉单的 coordinator_id / worker_id 由外键置空
func (s *userService) Delete(ctx context.Context, id int64, callerID int64) error {
	if id == callerID {
		return ErrUserSelfDelete
	}
	if err := s.repo.User.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("删除用户失败", zap.Int64("user_id", id), zap.Error(err))
		return err
	}
	s.logger.Info("删除工作人员", zap.Int64("user_id", id), zap.Int64("by", callerID))
	return nil
}

// ────────────────────── Seed ──────────────────────

// SeedAdmin 系统中没有管理员时创建初始管理员
func (s *userService) SeedAdmin(ctx context.Context, name, email, password string) error {
	n, err := s.repo.User.CountByRole(ctx, model.RoleAdmin)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	if email == "" || password == "" {
		s.logger.Warn("未配置初始管理员账号，跳过创建")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if name == "" {
		name = "Administrator"
	}

	admin := &model.User{
		Name:         name,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
	}
	if err := s.repo.User.Create(ctx, admin); err != nil {
		return err
	}
	s.logger.Info("已创建初始管理员", zap.String("email", admin.Email))
	return nil
}

// ── 辅助函数 ──

func (s *userService) load(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Int64("user_id", id), zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (s *userService) ensureEmailFree(ctx context.Context, email string, selfID int64) error {
	existing, err := s.repo.User.GetByEmail(ctx, email)
	if err == nil && existing.ID != selfID {
		return ErrEmailExists
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}

// checkCampus 协调员/维修人员必须有校区；给定校区必须存在
func (s *userService) checkCampus(ctx context.Context, role model.Role, campusID *int64) error {
	if campusID == nil {
		if role.RequiresCampus() {
			return pkgerrors.NewValidationError("campus_id", "协调员与维修人员必须指定校区")
		}
		return nil
	}
	if _, err := s.repo.Campus.GetByID(ctx, *campusID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCampusNotFound
		}
		return err
	}
	return nil
}
