package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/kiflomm/mu-maintainance/internal/model"
)

// CampusRepository 校区数据访问接口
type CampusRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Campus, error)
	List(ctx context.Context) ([]model.Campus, error)
}

type campusRepo struct {
	db *gorm.DB
}

// NewCampusRepo 创建 CampusRepository 实例
func NewCampusRepo(db *gorm.DB) CampusRepository {
	return &campusRepo{db: db}
}

func (r *campusRepo) GetByID(ctx context.Context, id int64) (*model.Campus, error) {
	var campus model.Campus
	if err := r.db.WithContext(ctx).First(&campus, id).Error; err != nil {
		return nil, err
	}
	return &campus, nil
}

func (r *campusRepo) List(ctx context.Context) ([]model.Campus, error) {
	var campuses []model.Campus
	err := r.db.WithContext(ctx).Order("name ASC").Find(&campuses).Error
	return campuses, err
}
