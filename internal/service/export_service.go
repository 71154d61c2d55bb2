package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/kiflomm/mu-maintainance/internal/model"
	"github.com/kiflomm/mu-maintainance/internal/policy"
	"github.com/kiflomm/mu-maintainance/internal/repository"
	pkgerrors "github.com/kiflomm/mu-maintainance/pkg/errors"
)

// ── 导出模块业务错误 ──

var (
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 导出范围与列表一致（按查看者可见范围过滤），以 bytes.Buffer 返回，
// 由 Handler 设置下载响应头。
type ExportService interface {
	ExportComplaints(ctx context.Context, viewer policy.Viewer, status model.Status) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	policy *policy.Policy
	store  FileStore
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, pol *policy.Policy, store FileStore, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, policy: pol, store: store, logger: logger}
}

var exportHeaders = []string{
	"工单号", "校区", "分类", "状态", "描述",
	"联系人", "联系邮箱", "联系电话", "协调员", "维修人员",
	"内部备注", "图片", "创建时间", "更新时间",
}

// ═══════════════════════════════════════════════════════════
// ExportComplaints：导出投诉单为 Excel
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportComplaints(ctx context.Context, viewer policy.Viewer, status model.Status) (*bytes.Buffer, string, error) {
	filter, ok := scopeFilter(s.policy, viewer)
	if !ok {
		return nil, "", pkgerrors.ErrForbidden
	}
	filter.Status = status

	complaints, err := s.repo.Complaint.ListAll(ctx, filter)
	if err != nil {
		s.logger.Error("查询导出数据失败", zap.Error(err))
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "投诉单"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	for i, h := range exportHeaders {
		f.SetCellValue(sheetName, cell(colName(i), 1), h)
	}
	f.SetCellStyle(sheetName, "A1", cell(colName(len(exportHeaders)-1), 1), headerStyle)
	f.SetColWidth(sheetName, "A", "A", 18)
	f.SetColWidth(sheetName, "E", "E", 48)
	f.SetColWidth(sheetName, "K", "K", 36)

	for i := range complaints {
		c := &complaints[i]
		row := i + 2
		values := []interface{}{
			c.TicketCode,
			campusName(c),
			categoryName(c),
			string(c.Status),
			c.Description,
			deref(c.ContactName),
			deref(c.ContactEmail),
			deref(c.ContactPhone),
			userName(c.Coordinator),
			userName(c.Worker),
			deref(c.InternalNotes),
			imageURL(c, s.store),
			c.CreatedAt.Format("2006-01-02 15:04"),
			c.UpdatedAt.Format("2006-01-02 15:04"),
		}
		for col, v := range values {
			f.SetCellValue(sheetName, cell(colName(col), row), v)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("complaints_%s.xlsx", time.Now().Format("20060102_1504"))
	return buf, filename, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func userName(u *model.User) string {
	if u == nil {
		return ""
	}
	return u.Name
}

func campusName(c *model.Complaint) string {
	if c.Campus == nil {
		return ""
	}
	return c.Campus.Name
}

func categoryName(c *model.Complaint) string {
	if c.Category == nil {
		return ""
	}
	return c.Category.Name
}

func imageURL(c *model.Complaint, store FileStore) string {
	if c.ImagePath == nil || store == nil {
		return ""
	}
	return store.PublicURL(*c.ImagePath)
}
