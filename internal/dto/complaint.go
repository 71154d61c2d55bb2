package dto

// ── 投诉单 DTO ──

// SubmitComplaintRequest 公开提交投诉（JSON 或 multipart/form-data）
// 图片字段 image 由 Handler 单独读取；描述长度与联系方式格式由生命周期引擎校验
type SubmitComplaintRequest struct {
	CampusID     int64   `json:"campus_id"     form:"campus_id"     binding:"required,min=1"`
	CategoryID   int64   `json:"category_id"   form:"category_id"   binding:"required,min=1"`
	Description  string  `json:"description"   form:"description"`
	ContactName  *string `json:"contact_name"  form:"contact_name"`
	ContactEmail *string `json:"contact_email" form:"contact_email"`
	ContactPhone *string `json:"contact_phone" form:"contact_phone"`
}

// SubmitComplaintResponse 提交成功响应
type SubmitComplaintResponse struct {
	ID         int64  `json:"id"`
	TicketCode string `json:"ticket_code"`
	Status     string `json:"status"`
}

// TrackComplaintRequest 按工单号查询
type TrackComplaintRequest struct {
	TicketCode string `json:"ticket_code" form:"ticket_code" binding:"required,max=64"`
}

// ComplaintListRequest 工作人员投诉列表
type ComplaintListRequest struct {
	PaginationRequest
	Status string `form:"status" binding:"omitempty,complaint_status"`
}

// UpdateComplaintRequest 工作人员更新投诉单
// 字段均可选；worker_id 传 0 表示取消指派
type UpdateComplaintRequest struct {
	Status        *string `json:"status"         binding:"omitempty,complaint_status"`
	InternalNotes *string `json:"internal_notes" binding:"omitempty,max=5000"`
	WorkerID      *int64  `json:"worker_id"      binding:"omitempty,min=0"`
}

// StaffRef 工作人员简要信息
type StaffRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ComplaintResponse 投诉单视图
// 内部备注与指派信息仅对有权限的工作人员返回
type ComplaintResponse struct {
	ID            int64             `json:"id"`
	TicketCode    string            `json:"ticket_code"`
	Campus        *CampusResponse   `json:"campus,omitempty"`
	Category      *CategoryResponse `json:"category,omitempty"`
	Description   string            `json:"description"`
	ImageURL      string            `json:"image_url,omitempty"`
	Status        string            `json:"status"`
	ContactName   *string           `json:"contact_name,omitempty"`
	ContactEmail  *string           `json:"contact_email,omitempty"`
	ContactPhone  *string           `json:"contact_phone,omitempty"`
	Coordinator   *StaffRef         `json:"coordinator,omitempty"`
	Worker        *StaffRef         `json:"worker,omitempty"`
	InternalNotes *string           `json:"internal_notes,omitempty"`
	CreatedAt     string            `json:"created_at"`
	UpdatedAt     string            `json:"updated_at"`
}

// DashboardResponse 工作台：落地页 + 可见投诉单统计
type DashboardResponse struct {
	Landing  string              `json:"landing"`
	Total    int64               `json:"total"`
	ByStatus map[string]int64    `json:"by_status"`
	Recent   []ComplaintResponse `json:"recent"`
}
