package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kiflomm/mu-maintainance/internal/dto"
	"github.com/kiflomm/mu-maintainance/internal/lifecycle"
	"github.com/kiflomm/mu-maintainance/internal/model"
	"github.com/kiflomm/mu-maintainance/internal/policy"
	"github.com/kiflomm/mu-maintainance/internal/repository"
	pkgerrors "github.com/kiflomm/mu-maintainance/pkg/errors"
	"github.com/kiflomm/mu-maintainance/pkg/filestore"
	"github.com/kiflomm/mu-maintainance/pkg/metrics"
)

// ── 投诉模块业务错误 ──

var (
	ErrComplaintNotFound = errors.New("投诉单不存在")
	ErrWorkerReassign    = errors.New("维修人员不能变更指派")
)

const ticketSavepoint = "issue_ticket"

// ComplaintService 投诉受理与处理：校验 → 权限 → 生命周期 → 持久化
type ComplaintService interface {
	Submit(ctx context.Context, req *dto.SubmitComplaintRequest, image []byte) (*dto.SubmitComplaintResponse, error)
	Track(ctx context.Context, ticketCode string) (int64, error)
	Get(ctx context.Context, id int64, viewer *policy.Viewer) (*dto.ComplaintResponse, error)
	List(ctx context.Context, viewer policy.Viewer, req *dto.ComplaintListRequest) ([]dto.ComplaintResponse, int64, error)
	Update(ctx context.Context, viewer policy.Viewer, id int64, req *dto.UpdateComplaintRequest) (*dto.ComplaintResponse, error)
	Dashboard(ctx context.Context, viewer policy.Viewer) (*dto.DashboardResponse, error)
}

type complaintService struct {
	repo   *repository.Repository
	engine *lifecycle.Engine
	policy *policy.Policy
	store  FileStore
	logger *zap.Logger
}

// NewComplaintService 创建 ComplaintService 实例
func NewComplaintService(
	repo *repository.Repository,
	engine *lifecycle.Engine,
	pol *policy.Policy,
	store FileStore,
	logger *zap.Logger,
) ComplaintService {
	return &complaintService{
		repo:   repo,
		engine: engine,
		policy: pol,
		store:  store,
		logger: logger,
	}
}

// ═══════════════════════════════════════════════════════════
// Submit：公开提交
// ═══════════════════════════════════════════════════════════
//
// 流程：
//  1. 字段校验（含图片类型与大小）
//  2. 校区 / 分类存在性
//  3. 图片写入暂存目录
//  4. 事务内签发工单号并插入，冲突时回滚到保存点换号重试
//  5. 提交前将图片移入正式目录；任一步失败则回滚并清理文件

func (s *complaintService) Submit(ctx context.Context, req *dto.SubmitComplaintRequest, image []byte) (*dto.SubmitComplaintResponse, error) {
	in := &lifecycle.CreateInput{
		CampusID:     req.CampusID,
		CategoryID:   req.CategoryID,
		Description:  req.Description,
		ContactName:  req.ContactName,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
	}

	ve := s.engine.ValidateCreate(in)
	if ve == nil {
		ve = &pkgerrors.ValidationError{}
	}

	var ext string
	if len(image) > 0 {
		var err error
		ext, err = s.store.Detect(image)
		switch {
		case errors.Is(err, filestore.ErrTooLarge):
			ve.Add("image", fmt.Sprintf("图片不能超过 %d KB", s.store.MaxBytes()/1024))
		case errors.Is(err, filestore.ErrUnsupportedType):
			ve.Add("image", "仅支持 JPEG / PNG / GIF / WEBP 图片")
		case err != nil:
			ve.Add("image", "无法识别图片")
		}
	}
	if ve.HasErrors() {
		return nil, ve
	}

	if err := s.checkReferences(ctx, in.CampusID, in.CategoryID); err != nil {
		return nil, err
	}

	var staged string
	if len(image) > 0 {
		name, err := s.store.Stage(image, ext)
		if err != nil {
			metrics.UploadFailures.Inc()
			s.logger.Error("图片暂存失败", zap.Error(err))
			return nil, fmt.Errorf("%w: %v", pkgerrors.ErrStorage, err)
		}
		staged = name
	}

	complaint := s.engine.NewComplaint(in)
	if staged != "" {
		complaint.ImagePath = &staged
	}

	if err := s.persistNew(ctx, complaint, staged); err != nil {
		return nil, err
	}

	metrics.ComplaintsSubmitted.WithLabelValues(strconv.FormatInt(complaint.CampusID, 10)).Inc()
	s.logger.Info("投诉已受理",
		zap.Int64("id", complaint.ID),
		zap.String("ticket_code", complaint.TicketCode),
		zap.Int64("campus_id", complaint.CampusID),
		zap.Bool("has_image", staged != ""),
	)

	return &dto.SubmitComplaintResponse{
		ID:         complaint.ID,
		TicketCode: complaint.TicketCode,
		Status:     string(complaint.Status),
	}, nil
}

// persistNew 事务内插入投诉单并转存图片
func (s *complaintService) persistNew(ctx context.Context, complaint *model.Complaint, staged string) error {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		if staged != "" {
			s.store.Discard(staged)
		}
		return err
	}

	committed := false
	promoted := false
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			s.cleanupImage(staged, promoted)
			panic(r)
		}
		if !committed {
			if tx != nil {
				tx.Rollback()
			}
			s.cleanupImage(staged, promoted)
		}
	}()

	txRepo := s.repo.WithTx(tx)

	// PostgreSQL 中唯一约束冲突会使事务失效，需借助保存点重试
	insert := func(ctx context.Context, c *model.Complaint) error {
		if tx != nil {
			if err := tx.SavePoint(ticketSavepoint).Error; err != nil {
				return err
			}
		}
		err := txRepo.Complaint.Create(ctx, c)
		if errors.Is(err, pkgerrors.ErrConflict) && tx != nil {
			if rbErr := tx.RollbackTo(ticketSavepoint).Error; rbErr != nil {
				return rbErr
			}
		}
		return err
	}

	collisions, err := s.engine.Issue(ctx, complaint, insert)
	if collisions > 0 {
		metrics.TicketCodeCollisions.Add(float64(collisions))
		s.logger.Warn("工单号冲突，已重试", zap.Int("collisions", collisions))
	}
	if err != nil {
		if !errors.Is(err, pkgerrors.ErrGenerationExhausted) {
			s.logger.Error("创建投诉单失败", zap.Error(err))
		}
		return err
	}

	if staged != "" {
		if err := s.store.Promote(staged); err != nil {
			metrics.UploadFailures.Inc()
			s.logger.Error("图片转存失败", zap.String("file", staged), zap.Error(err))
			return fmt.Errorf("%w: %v", pkgerrors.ErrStorage, err)
		}
		promoted = true
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return err
		}
	}
	committed = true
	return nil
}

func (s *complaintService) cleanupImage(name string, promoted bool) {
	if name == "" {
		return
	}
	if promoted {
		s.store.Remove(name)
		return
	}
	s.store.Discard(name)
}

func (s *complaintService) checkReferences(ctx context.Context, campusID, categoryID int64) error {
	if _, err := s.repo.Campus.GetByID(ctx, campusID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCampusNotFound
		}
		s.logger.Error("查询校区失败", zap.Error(err))
		return err
	}
	if _, err := s.repo.Category.GetByID(ctx, categoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		s.logger.Error("查询分类失败", zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Track ──────────────────────

// Track 按工单号精确匹配，返回投诉单 ID
func (s *complaintService) Track(ctx context.Context, ticketCode string) (int64, error) {
	code := lifecycle.NormalizeTicketCode(ticketCode)
	if !s.engine.Tickets().Valid(code) {
		return 0, ErrComplaintNotFound
	}

	complaint, err := s.repo.Complaint.GetByTicketCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrComplaintNotFound
		}
		s.logger.Error("按工单号查询失败", zap.Error(err))
		return 0, err
	}
	return complaint.ID, nil
}

// ────────────────────── Get ──────────────────────

// Get 公开详情；viewer 通过 view_one 判定时附带内部字段
func (s *complaintService) Get(ctx context.Context, id int64, viewer *policy.Viewer) (*dto.ComplaintResponse, error) {
	complaint, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	staff := viewer != nil && s.policy.Can(*viewer, policy.ActionViewOne, complaint)
	resp := toComplaintResponse(complaint, staff, s.store)
	return &resp, nil
}

// ────────────────────── List ──────────────────────

func (s *complaintService) List(ctx context.Context, viewer policy.Viewer, req *dto.ComplaintListRequest) ([]dto.ComplaintResponse, int64, error) {
	filter, ok := scopeFilter(s.policy, viewer)
	if !ok {
		return []dto.ComplaintResponse{}, 0, nil
	}
	filter.Status = model.Status(req.Status)

	complaints, total, err := s.repo.Complaint.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询投诉列表失败", zap.Error(err))
		return nil, 0, err
	}

	list := make([]dto.ComplaintResponse, 0, len(complaints))
	for i := range complaints {
		list = append(list, toComplaintResponse(&complaints[i], true, s.store))
	}
	return list, total, nil
}

// scopeFilter 将列表可见范围转换为查询条件；ok=false 表示无任何可见记录
func scopeFilter(pol *policy.Policy, viewer policy.Viewer) (repository.ComplaintFilter, bool) {
	if !pol.Can(viewer, policy.ActionViewList, nil) {
		return repository.ComplaintFilter{}, false
	}

	scope := pol.ListScope(viewer)
	switch scope.Kind {
	case policy.ScopeAll:
		return repository.ComplaintFilter{}, true
	case policy.ScopeCampus:
		campusID := scope.CampusID
		return repository.ComplaintFilter{CampusID: &campusID}, true
	case policy.ScopeWorker:
		workerID := scope.WorkerID
		return repository.ComplaintFilter{WorkerID: &workerID}, true
	}
	return repository.ComplaintFilter{}, false
}

// ────────────────────── Update ──────────────────────

func (s *complaintService) Update(ctx context.Context, viewer policy.Viewer, id int64, req *dto.UpdateComplaintRequest) (*dto.ComplaintResponse, error) {
	complaint, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if !s.policy.Can(viewer, policy.ActionUpdate, complaint) {
		s.logger.Info("投诉单更新被拒绝",
			zap.Int64("complaint_id", id),
			zap.Int64("user_id", viewer.ID),
			zap.String("role", string(viewer.Role)))
		return nil, pkgerrors.ErrForbidden
	}

	from := complaint.Status
	changed := false
	if req.Status != nil {
		changed, err = s.engine.Transition(complaint, model.Status(*req.Status))
		if err != nil {
			return nil, err
		}
	}

	if req.InternalNotes != nil {
		notes := strings.TrimSpace(*req.InternalNotes)
		if notes == "" {
			complaint.InternalNotes = nil
		} else {
			complaint.InternalNotes = &notes
		}
	}

	if req.WorkerID != nil {
		if err := s.applyAssignment(ctx, viewer, complaint, *req.WorkerID); err != nil {
			return nil, err
		}
	}

	s.engine.Touch(complaint)
	if err := s.repo.Complaint.Update(ctx, complaint); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrComplaintNotFound
		}
		s.logger.Error("更新投诉单失败", zap.Int64("complaint_id", id), zap.Error(err))
		return nil, err
	}

	if changed {
		metrics.ComplaintStatusTransitions.WithLabelValues(string(from), string(complaint.Status)).Inc()
		s.logger.Info("投诉状态变更",
			zap.Int64("complaint_id", id),
			zap.String("from", string(from)),
			zap.String("to", string(complaint.Status)),
			zap.Int64("by", viewer.ID))
	}

	updated, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toComplaintResponse(updated, true, s.store)
	return &resp, nil
}

// applyAssignment workerID 为 0 表示取消指派
func (s *complaintService) applyAssignment(ctx context.Context, viewer policy.Viewer, complaint *model.Complaint, workerID int64) error {
	current := int64(0)
	if complaint.WorkerID != nil {
		current = *complaint.WorkerID
	}
	if workerID == current {
		return nil
	}
	if viewer.Role == model.RoleWorker {
		return ErrWorkerReassign
	}

	if workerID == 0 {
		s.engine.Assign(complaint, nil)
		complaint.Worker = nil
		return nil
	}

	worker, err := s.repo.User.GetByID(ctx, workerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.NewValidationError("worker_id", "指派的维修人员不存在")
		}
		return err
	}
	if worker.Role != model.RoleWorker {
		return pkgerrors.NewValidationError("worker_id", "只能指派给维修人员")
	}

	s.engine.Assign(complaint, &worker.ID)
	complaint.Worker = worker
	if viewer.Role == model.RoleCoordinator {
		coordinatorID := viewer.ID
		complaint.CoordinatorID = &coordinatorID
	}
	return nil
}

// ────────────────────── Dashboard ──────────────────────

// Dashboard 工作台：按角色给出落地页，并统计可见投诉单
func (s *complaintService) Dashboard(ctx context.Context, viewer policy.Viewer) (*dto.DashboardResponse, error) {
	resp := &dto.DashboardResponse{
		Landing:  "/complaints",
		ByStatus: make(map[string]int64, len(model.Statuses)),
		Recent:   []dto.ComplaintResponse{},
	}
	if viewer.Role == model.RoleAdmin {
		resp.Landing = "/users"
	}
	for _, st := range model.Statuses {
		resp.ByStatus[string(st)] = 0
	}

	filter, ok := scopeFilter(s.policy, viewer)
	if !ok {
		return resp, nil
	}

	counts, err := s.repo.Complaint.CountByStatus(ctx, filter)
	if err != nil {
		s.logger.Error("统计投诉单失败", zap.Error(err))
		return nil, err
	}
	for st, n := range counts {
		resp.ByStatus[string(st)] = n
		resp.Total += n
	}

	recent, _, err := s.repo.Complaint.List(ctx, filter, 0, 5)
	if err != nil {
		s.logger.Error("查询最近投诉单失败", zap.Error(err))
		return nil, err
	}
	for i := range recent {
		resp.Recent = append(resp.Recent, toComplaintResponse(&recent[i], true, s.store))
	}
	return resp, nil
}

// ── 辅助函数 ──

func (s *complaintService) load(ctx context.Context, id int64) (*model.Complaint, error) {
	complaint, err := s.repo.Complaint.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrComplaintNotFound
		}
		s.logger.Error("查询投诉单失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return complaint, nil
}
