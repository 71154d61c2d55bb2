package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kiflomm/mu-maintainance/internal/service"
	"github.com/kiflomm/mu-maintainance/pkg/response"
)

// ReferenceHandler 校区 / 分类 / 提交表单数据
type ReferenceHandler struct {
	refSvc service.ReferenceService
}

// NewReferenceHandler 创建 ReferenceHandler
func NewReferenceHandler(refSvc service.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{refSvc: refSvc}
}

// SubmitForm 首页表单数据
// GET /
func (h *ReferenceHandler) SubmitForm(c *gin.Context) {
	form, err := h.refSvc.SubmitForm(c.Request.Context())
	if err != nil {
		respondCommonError(c, err)
		return
	}
	response.OK(c, form)
}

// ListCampuses GET /campuses
func (h *ReferenceHandler) ListCampuses(c *gin.Context) {
	list, err := h.refSvc.Campuses(c.Request.Context())
	if err != nil {
		respondCommonError(c, err)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// ListCategories GET /categories
func (h *ReferenceHandler) ListCategories(c *gin.Context) {
	list, err := h.refSvc.Categories(c.Request.Context())
	if err != nil {
		respondCommonError(c, err)
		return
	}
	response.OK(c, gin.H{"list": list})
}
