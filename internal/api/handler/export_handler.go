package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/kiflomm/mu-maintainance/internal/model"
	"github.com/kiflomm/mu-maintainance/internal/service"
	"github.com/kiflomm/mu-maintainance/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportComplaints 导出当前用户可见的投诉单
// GET /complaints/export?status=pending
func (h *ExportHandler) ExportComplaints(c *gin.Context) {
	viewer, ok := MustGetViewer(c)
	if !ok {
		return
	}

	status := model.Status(c.Query("status"))
	if status != "" && !status.Valid() {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败",
			map[string]string{"status": "状态只能是 pending / in_progress / resolved"})
		return
	}

	buf, filename, err := h.exportSvc.ExportComplaints(c.Request.Context(), viewer, status)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportGenerateFail):
		_ = c.Error(err)
		response.InternalError(c)
	default:
		respondCommonError(c, err)
	}
}
