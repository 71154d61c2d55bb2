package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kiflomm/mu-maintainance/internal/dto"
	"github.com/kiflomm/mu-maintainance/internal/service"
	pkgerrors "github.com/kiflomm/mu-maintainance/pkg/errors"
	"github.com/kiflomm/mu-maintainance/pkg/response"
)

// ComplaintHandler 投诉单 HTTP 处理器
type ComplaintHandler struct {
	complaintSvc  service.ComplaintService
	maxImageBytes int64
}

// NewComplaintHandler 创建 ComplaintHandler
func NewComplaintHandler(complaintSvc service.ComplaintService, maxImageBytes int64) *ComplaintHandler {
	return &ComplaintHandler{complaintSvc: complaintSvc, maxImageBytes: maxImageBytes}
}

func complaintLocation(id int64) string {
	return fmt.Sprintf("/complaints/%d", id)
}

// Submit 公开提交投诉
// POST /complaints  (application/json 或 multipart/form-data，图片字段 image)
func (h *ComplaintHandler) Submit(c *gin.Context) {
	var req dto.SubmitComplaintRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}
	// 表单中留空的可选字段绑定为 ""
	req.ContactName = optionalField(req.ContactName)
	req.ContactEmail = optionalField(req.ContactEmail)
	req.ContactPhone = optionalField(req.ContactPhone)

	image, err := h.readImage(c)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
			return
		}
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败",
			map[string]string{"image": "图片读取失败"})
		return
	}

	result, err := h.complaintSvc.Submit(c.Request.Context(), &req, image)
	if err != nil {
		h.handleComplaintError(c, err)
		return
	}

	response.SeeOther(c, complaintLocation(result.ID),
		fmt.Sprintf("投诉已提交，工单号 %s，请妥善保存", result.TicketCode), result)
}

func optionalField(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// readImage 读取可选的 image 文件；非 multipart 请求或未上传时返回 nil
// 最多读取 maxImageBytes+1 字节，超限由存储层判定
func (h *ComplaintHandler) readImage(c *gin.Context) ([]byte, error) {
	if c.ContentType() != gin.MIMEMultipartPOSTForm {
		return nil, nil
	}

	fh, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}

	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(io.LimitReader(f, h.maxImageBytes+1))
}

// Track 按工单号跳转到详情
// POST /complaints/track
func (h *ComplaintHandler) Track(c *gin.Context) {
	var req dto.TrackComplaintRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	id, err := h.complaintSvc.Track(c.Request.Context(), req.TicketCode)
	if err != nil {
		if errors.Is(err, service.ErrComplaintNotFound) {
			response.NotFound(c, 30001, "未找到该工单号对应的投诉")
			return
		}
		h.handleComplaintError(c, err)
		return
	}

	response.SeeOther(c, complaintLocation(id), "已找到投诉", gin.H{"id": id})
}

// Get 投诉详情（公开；登录工作人员可见内部字段）
// GET /complaints/:id
func (h *ComplaintHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	complaint, err := h.complaintSvc.Get(c.Request.Context(), id, OptionalViewer(c))
	if err != nil {
		h.handleComplaintError(c, err)
		return
	}

	response.OK(c, complaint)
}

// List 按角色过滤的投诉列表
// GET /complaints?status=&page=&page_size=
func (h *ComplaintHandler) List(c *gin.Context) {
	viewer, ok := MustGetViewer(c)
	if !ok {
		return
	}

	var req dto.ComplaintListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	list, total, err := h.complaintSvc.List(c.Request.Context(), viewer, &req)
	if err != nil {
		h.handleComplaintError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// Update 更新状态 / 内部备注 / 指派
// PATCH /complaints/:id
func (h *ComplaintHandler) Update(c *gin.Context) {
	viewer, ok := MustGetViewer(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req dto.UpdateComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	complaint, err := h.complaintSvc.Update(c.Request.Context(), viewer, id, &req)
	if err != nil {
		h.handleComplaintError(c, err)
		return
	}

	response.OK(c, complaint)
}

// Dashboard 登录后的落地页与统计
// GET /dashboard
func (h *ComplaintHandler) Dashboard(c *gin.Context) {
	viewer, ok := MustGetViewer(c)
	if !ok {
		return
	}

	dash, err := h.complaintSvc.Dashboard(c.Request.Context(), viewer)
	if err != nil {
		h.handleComplaintError(c, err)
		return
	}

	response.OK(c, dash)
}

func (h *ComplaintHandler) handleComplaintError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrComplaintNotFound):
		response.NotFound(c, 30001, "投诉单不存在")
	case errors.Is(err, service.ErrWorkerReassign):
		response.Forbidden(c, 30005, "维修人员不能变更指派")
	case errors.Is(err, pkgerrors.ErrGenerationExhausted):
		response.Error(c, http.StatusServiceUnavailable, 30004, "工单号生成失败，请稍后重试")
	case errors.Is(err, pkgerrors.ErrStorage):
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, 50001, "图片保存失败，请稍后重试")
	default:
		respondCommonError(c, err)
	}
}
