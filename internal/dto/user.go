package dto

// ── 用户管理 DTO ──

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	PaginationRequest
	Role     string `form:"role"      binding:"omitempty,user_role"`
	CampusID int64  `form:"campus_id" binding:"omitempty,min=1"`
	Keyword  string `form:"keyword"   binding:"omitempty,max=50"`
}

// CreateUserRequest 管理员创建工作人员
type CreateUserRequest struct {
	Name     string `json:"name"      binding:"required,min=2,max=255"`
	Email    string `json:"email"     binding:"required,email,max=255"`
	Password string `json:"password"  binding:"required,min=8,max=72"`
	Role     string `json:"role"      binding:"required,staff_role"`
	CampusID *int64 `json:"campus_id" binding:"omitempty,min=1"`
}

// UpdateUserRequest 管理员更新工作人员；密码留空表示不修改
type UpdateUserRequest struct {
	Name     *string `json:"name"      binding:"omitempty,min=2,max=255"`
	Email    *string `json:"email"     binding:"omitempty,email,max=255"`
	Password *string `json:"password"  binding:"omitempty,min=8,max=72"`
	Role     *string `json:"role"      binding:"omitempty,staff_role"`
	CampusID *int64  `json:"campus_id" binding:"omitempty,min=1"`
}

// UserResponse 用户信息（脱敏）
type UserResponse struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Role      string          `json:"role"`
	Campus    *CampusResponse `json:"campus,omitempty"`
	CreatedAt string          `json:"created_at,omitempty"`
}

// UserFormResponse 编辑表单数据（GET /users/:id/edit）
type UserFormResponse struct {
	User     UserResponse     `json:"user"`
	Roles    []string         `json:"roles"`
	Campuses []CampusResponse `json:"campuses"`
}
