package model

// Status 投诉处理状态
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
)

// Statuses 全部合法状态（按处理顺序）
var Statuses = []Status{StatusPending, StatusInProgress, StatusResolved}

// Valid 是否为合法状态
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusResolved:
		return true
	}
	return false
}

// Complaint 投诉单表 complaints
type Complaint struct {
	ID            int64   `gorm:"primaryKey;autoIncrement"                     json:"id"`
	TicketCode    string  `gorm:"type:varchar(32);not null;uniqueIndex"         json:"ticket_code"`
	CampusID      int64   `gorm:"not null;index"                                json:"campus_id"`
	CategoryID    int64   `gorm:"not null"                                      json:"category_id"`
	Description   string  `gorm:"type:text;not null"                            json:"description"`
	ImagePath     *string `gorm:"type:varchar(255)"                             json:"image_path,omitempty"`
	ContactName   *string `gorm:"type:varchar(255)"                             json:"contact_name,omitempty"`
	ContactEmail  *string `gorm:"type:varchar(255)"                             json:"contact_email,omitempty"`
	ContactPhone  *string `gorm:"type:varchar(20)"                              json:"contact_phone,omitempty"`
	Status        Status  `gorm:"type:varchar(20);not null;default:'pending'"   json:"status"`
	CoordinatorID *int64  `gorm:"index"                                         json:"coordinator_id,omitempty"`
	WorkerID      *int64  `gorm:"index"                                         json:"worker_id,omitempty"`
	InternalNotes *string `gorm:"type:text"                                     json:"internal_notes,omitempty"`
	Timestamps

	// 关联
	Campus      *Campus   `gorm:"foreignKey:CampusID"      json:"campus,omitempty"`
	Category    *Category `gorm:"foreignKey:CategoryID"    json:"category,omitempty"`
	Coordinator *User     `gorm:"foreignKey:CoordinatorID" json:"coordinator,omitempty"`
	Worker      *User     `gorm:"foreignKey:WorkerID"      json:"worker,omitempty"`
}

// TableName 指定表名
func (Complaint) TableName() string { return "complaints" }
