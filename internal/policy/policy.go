// Package policy 投诉单访问控制
//
// 纯函数判定，不访问数据库。校区归属通过投诉单 campus_id 与
// 查看者 campus_id 比较得出，coordinator_id 仅用于审计。
package policy

import (
	"github.com/kiflomm/mu-maintainance/internal/model"
)

// Action 受控操作
type Action int

const (
	ActionViewList Action = iota
	ActionViewOne
	ActionUpdate
)

func (a Action) String() string {
	switch a {
	case ActionViewList:
		return "view_list"
	case ActionViewOne:
		return "view_one"
	case ActionUpdate:
		return "update"
	}
	return "unknown"
}

// Viewer 已认证的工作人员
type Viewer struct {
	ID       int64
	Role     model.Role
	CampusID *int64
}

// ViewerFromUser 由用户记录构造查看者
func ViewerFromUser(u *model.User) Viewer {
	return Viewer{ID: u.ID, Role: u.Role, CampusID: u.CampusID}
}

// ScopeKind 列表可见范围
type ScopeKind int

const (
	ScopeNone ScopeKind = iota
	ScopeAll
	ScopeCampus
	ScopeWorker
)

// Scope 列表过滤条件，与 ActionViewOne 判定保持一致
type Scope struct {
	Kind     ScopeKind
	CampusID int64
	WorkerID int64
}

// Policy 访问策略
type Policy struct {
	// DirectorCanUpdate 学生服务主任是否可修改投诉单
	DirectorCanUpdate bool
}

// New 创建访问策略
func New(directorCanUpdate bool) *Policy {
	return &Policy{DirectorCanUpdate: directorCanUpdate}
}

// Can 判定 viewer 是否可对 c 执行 action
// ActionViewList 不针对单条记录，c 可为 nil
func (p *Policy) Can(v Viewer, action Action, c *model.Complaint) bool {
	switch v.Role {
	case model.RoleAdmin:
		return true

	case model.RoleDirector:
		switch action {
		case ActionViewList, ActionViewOne:
			return true
		case ActionUpdate:
			return p.DirectorCanUpdate
		}
		return false

	case model.RoleCoordinator:
		if action == ActionViewList {
			return v.CampusID != nil
		}
		if c == nil || !sameCampus(v.CampusID, c.CampusID) {
			return false
		}
		switch action {
		case ActionViewOne:
			return true
		case ActionUpdate:
			return c.Status == model.StatusPending
		}
		return false

	case model.RoleWorker:
		if action == ActionViewList {
			return true
		}
		if c == nil || c.WorkerID == nil || *c.WorkerID != v.ID {
			return false
		}
		return action == ActionViewOne || action == ActionUpdate
	}

	// 未知角色一律拒绝
	return false
}

// ListScope 列表查询范围
func (p *Policy) ListScope(v Viewer) Scope {
	switch v.Role {
	case model.RoleAdmin, model.RoleDirector:
		return Scope{Kind: ScopeAll}
	case model.RoleCoordinator:
		if v.CampusID == nil {
			return Scope{Kind: ScopeNone}
		}
		return Scope{Kind: ScopeCampus, CampusID: *v.CampusID}
	case model.RoleWorker:
		return Scope{Kind: ScopeWorker, WorkerID: v.ID}
	}
	return Scope{Kind: ScopeNone}
}

func sameCampus(viewerCampus *int64, complaintCampus int64) bool {
	return viewerCampus != nil && *viewerCampus == complaintCampus
}
