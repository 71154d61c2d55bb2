package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/kiflomm/mu-maintainance/internal/dto"
	"github.com/kiflomm/mu-maintainance/internal/repository"
)

// ReferenceService 校区与分类（只读基础数据）
type ReferenceService interface {
	Campuses(ctx context.Context) ([]dto.CampusResponse, error)
	Categories(ctx context.Context) ([]dto.CategoryResponse, error)
	SubmitForm(ctx context.Context) (*dto.SubmitFormResponse, error)
}

type referenceService struct {
	repo   *repository.Repository
	store  FileStore
	logger *zap.Logger
}

// NewReferenceService 创建 ReferenceService 实例
func NewReferenceService(repo *repository.Repository, store FileStore, logger *zap.Logger) ReferenceService {
	return &referenceService{repo: repo, store: store, logger: logger}
}

func (s *referenceService) Campuses(ctx context.Context) ([]dto.CampusResponse, error) {
	campuses, err := s.repo.Campus.List(ctx)
	if err != nil {
		s.logger.Error("查询校区失败", zap.Error(err))
		return nil, err
	}
	list := make([]dto.CampusResponse, 0, len(campuses))
	for i := range campuses {
		list = append(list, *toCampusResponse(&campuses[i]))
	}
	return list, nil
}

func (s *referenceService) Categories(ctx context.Context) ([]dto.CategoryResponse, error) {
	categories, err := s.repo.Category.List(ctx)
	if err != nil {
		s.logger.Error("查询分类失败", zap.Error(err))
		return nil, err
	}
	list := make([]dto.CategoryResponse, 0, len(categories))
	for i := range categories {
		list = append(list, *toCategoryResponse(&categories[i]))
	}
	return list, nil
}

// SubmitForm 公开提交页数据
func (s *referenceService) SubmitForm(ctx context.Context) (*dto.SubmitFormResponse, error) {
	campuses, err := s.Campuses(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := s.Categories(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.SubmitFormResponse{
		Campuses:   campuses,
		Categories: categories,
		MaxImage:   s.store.MaxBytes(),
	}, nil
}
