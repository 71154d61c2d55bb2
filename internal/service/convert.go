package service

import (
	"time"

	"github.com/kiflomm/mu-maintainance/internal/dto"
	"github.com/kiflomm/mu-maintainance/internal/model"
)

// ── 模型 → DTO 转换 ──

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func toCampusResponse(c *model.Campus) *dto.CampusResponse {
	if c == nil {
		return nil
	}
	return &dto.CampusResponse{ID: c.ID, Name: c.Name, Code: c.Code}
}

func toCategoryResponse(c *model.Category) *dto.CategoryResponse {
	if c == nil {
		return nil
	}
	return &dto.CategoryResponse{ID: c.ID, Name: c.Name, Slug: c.Slug, Description: c.Description}
}

func toUserResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		Campus:    toCampusResponse(u.Campus),
		CreatedAt: formatTime(u.CreatedAt),
	}
}

func toStaffRef(u *model.User) *dto.StaffRef {
	if u == nil {
		return nil
	}
	return &dto.StaffRef{ID: u.ID, Name: u.Name}
}

// toComplaintResponse staff 为 false 时隐藏联系方式、指派与内部备注
func toComplaintResponse(c *model.Complaint, staff bool, store FileStore) dto.ComplaintResponse {
	resp := dto.ComplaintResponse{
		ID:          c.ID,
		TicketCode:  c.TicketCode,
		Campus:      toCampusResponse(c.Campus),
		Category:    toCategoryResponse(c.Category),
		Description: c.Description,
		Status:      string(c.Status),
		CreatedAt:   formatTime(c.CreatedAt),
		UpdatedAt:   formatTime(c.UpdatedAt),
	}
	if c.ImagePath != nil && store != nil {
		resp.ImageURL = store.PublicURL(*c.ImagePath)
	}
	if staff {
		resp.ContactName = c.ContactName
		resp.ContactEmail = c.ContactEmail
		resp.ContactPhone = c.ContactPhone
		resp.Coordinator = toStaffRef(c.Coordinator)
		resp.Worker = toStaffRef(c.Worker)
		resp.InternalNotes = c.InternalNotes
	}
	return resp
}
