package model

// Role 工作人员角色（封闭枚举）
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleCoordinator Role = "coordinator"
	RoleWorker      Role = "worker"
	RoleDirector    Role = "stud_service_director"
)

// Roles 全部合法角色
var Roles = []Role{RoleAdmin, RoleCoordinator, RoleWorker, RoleDirector}

// Valid 是否为合法角色
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleCoordinator, RoleWorker, RoleDirector:
		return true
	}
	return false
}

// RequiresCampus 协调员与维修人员必须归属校区
func (r Role) RequiresCampus() bool {
	return r == RoleCoordinator || r == RoleWorker
}

// User 工作人员表 users
type User struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"              json:"id"`
	Name         string `gorm:"type:varchar(255);not null"             json:"name"`
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null"             json:"-"`
	Role         Role   `gorm:"type:varchar(32);not null"              json:"role"`
	CampusID     *int64 `gorm:"index"                                  json:"campus_id,omitempty"`
	Timestamps

	// 关联
	Campus *Campus `gorm:"foreignKey:CampusID" json:"campus,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }
