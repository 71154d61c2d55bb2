package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/kiflomm/mu-maintainance/internal/model"
	pkgerrors "github.com/kiflomm/mu-maintainance/pkg/errors"
)

// ComplaintFilter 投诉单查询条件
// CampusID / WorkerID 为 nil 表示不限制
type ComplaintFilter struct {
	CampusID *int64
	WorkerID *int64
	Status   model.Status
}

// ComplaintRepository 投诉单数据访问接口
type ComplaintRepository interface {
	Create(ctx context.Context, complaint *model.Complaint) error
	GetByID(ctx context.Context, id int64) (*model.Complaint, error)
	GetByTicketCode(ctx context.Context, code string) (*model.Complaint, error)
	Update(ctx context.Context, complaint *model.Complaint) error
	List(ctx context.Context, filter ComplaintFilter, offset, limit int) ([]model.Complaint, int64, error)
	ListAll(ctx context.Context, filter ComplaintFilter) ([]model.Complaint, error)
	CountByStatus(ctx context.Context, filter ComplaintFilter) (map[model.Status]int64, error)
}

type complaintRepo struct {
	db *gorm.DB
}

// NewComplaintRepo 创建 ComplaintRepository 实例
func NewComplaintRepo(db *gorm.DB) ComplaintRepository {
	return &complaintRepo{db: db}
}

// Create 工单号唯一索引冲突映射为 ErrConflict，由上层换号重试
func (r *complaintRepo) Create(ctx context.Context, complaint *model.Complaint) error {
	err := r.db.WithContext(ctx).
		Omit("Campus", "Category", "Coordinator", "Worker").
		Create(complaint).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return pkgerrors.ErrConflict
	}
	return err
}

func (r *complaintRepo) GetByID(ctx context.Context, id int64) (*model.Complaint, error) {
	var complaint model.Complaint
	err := r.preloaded(ctx).First(&complaint, id).Error
	if err != nil {
		return nil, err
	}
	return &complaint, nil
}

func (r *complaintRepo) GetByTicketCode(ctx context.Context, code string) (*model.Complaint, error) {
	var complaint model.Complaint
	err := r.preloaded(ctx).
		Where("ticket_code = ?", code).
		First(&complaint).Error
	if err != nil {
		return nil, err
	}
	return &complaint, nil
}

// Update 仅写回可变字段；ticket_code / campus_id / category_id / created_at 不参与更新
func (r *complaintRepo) Update(ctx context.Context, complaint *model.Complaint) error {
	result := r.db.WithContext(ctx).
		Model(&model.Complaint{ID: complaint.ID}).
		Select("status", "internal_notes", "worker_id", "coordinator_id", "updated_at").
		Updates(map[string]interface{}{
			"status":         complaint.Status,
			"internal_notes": complaint.InternalNotes,
			"worker_id":      complaint.WorkerID,
			"coordinator_id": complaint.CoordinatorID,
			"updated_at":     complaint.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *complaintRepo) List(ctx context.Context, filter ComplaintFilter, offset, limit int) ([]model.Complaint, int64, error) {
	var complaints []model.Complaint
	var total int64

	db := applyComplaintFilter(r.db.WithContext(ctx).Model(&model.Complaint{}), filter)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := applyComplaintFilter(r.preloaded(ctx), filter).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&complaints).Error
	if err != nil {
		return nil, 0, err
	}
	return complaints, total, nil
}

// ListAll 不分页，用于导出
func (r *complaintRepo) ListAll(ctx context.Context, filter ComplaintFilter) ([]model.Complaint, error) {
	var complaints []model.Complaint
	err := applyComplaintFilter(r.preloaded(ctx), filter).
		Order("created_at DESC, id DESC").
		Find(&complaints).Error
	return complaints, err
}

func (r *complaintRepo) CountByStatus(ctx context.Context, filter ComplaintFilter) (map[model.Status]int64, error) {
	var rows []struct {
		Status model.Status
		Count  int64
	}
	err := applyComplaintFilter(r.db.WithContext(ctx).Model(&model.Complaint{}), filter).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[model.Status]int64, len(model.Statuses))
	for _, st := range model.Statuses {
		counts[st] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *complaintRepo) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Campus").
		Preload("Category").
		Preload("Coordinator").
		Preload("Worker")
}

func applyComplaintFilter(db *gorm.DB, filter ComplaintFilter) *gorm.DB {
	if filter.CampusID != nil {
		db = db.Where("campus_id = ?", *filter.CampusID)
	}
	if filter.WorkerID != nil {
		db = db.Where("worker_id = ?", *filter.WorkerID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	return db
}
