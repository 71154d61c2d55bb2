package handler

import (
	"github.com/kiflomm/mu-maintainance/config"
	"github.com/kiflomm/mu-maintainance/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth      *AuthHandler
	User      *UserHandler
	Reference *ReferenceHandler
	Complaint *ComplaintHandler
	Export    *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(cfg *config.Config, svc *service.Service) *Handler {
	return &Handler{
		Auth:      NewAuthHandler(svc.Auth),
		User:      NewUserHandler(svc.User),
		Reference: NewReferenceHandler(svc.Reference),
		Complaint: NewComplaintHandler(svc.Complaint, cfg.Upload.MaxBytes),
		Export:    NewExportHandler(svc.Export),
	}
}
