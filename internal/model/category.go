package model

// Category 投诉分类表 categories
type Category struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"              json:"id"`
	Name        string `gorm:"type:varchar(255);not null"             json:"name"`
	Slug        string `gorm:"type:varchar(255);not null;uniqueIndex" json:"slug"`
	Description string `gorm:"type:text;not null;default:''"          json:"description"`
	Timestamps
}

// TableName 指定表名
func (Category) TableName() string { return "categories" }
