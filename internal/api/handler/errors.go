package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/kiflomm/mu-maintainance/internal/service"
	pkgerrors "github.com/kiflomm/mu-maintainance/pkg/errors"
	"github.com/kiflomm/mu-maintainance/pkg/response"
)

// respondCommonError 各模块 handleXxxError 未命中时的通用映射
func respondCommonError(c *gin.Context, err error) {
	if ve, ok := pkgerrors.IsValidation(err); ok {
		respondValidation(c, ve)
		return
	}
	switch {
	case errors.Is(err, pkgerrors.ErrForbidden):
		response.Forbidden(c, 10003, "无权限访问")
	case errors.Is(err, service.ErrCampusNotFound):
		response.NotFound(c, 30002, "校区不存在")
	case errors.Is(err, service.ErrCategoryNotFound):
		response.NotFound(c, 30003, "分类不存在")
	case errors.Is(err, pkgerrors.ErrNotFound):
		response.NotFound(c, 10006, "资源不存在")
	case errors.Is(err, pkgerrors.ErrConflict):
		response.Conflict(c, 10007, "数据冲突")
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}
