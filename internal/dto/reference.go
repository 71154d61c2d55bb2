package dto

// CampusResponse 校区
type CampusResponse struct {
	ID   int64   `json:"id"`
	Name string  `json:"name"`
	Code *string `json:"code,omitempty"`
}

// CategoryResponse 投诉分类
type CategoryResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}

// SubmitFormResponse 提交页所需参考数据
type SubmitFormResponse struct {
	Campuses   []CampusResponse   `json:"campuses"`
	Categories []CategoryResponse `json:"categories"`
	MaxImage   int64              `json:"max_image_bytes"`
}
