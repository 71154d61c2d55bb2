package model

// Campus 校区表 campuses（只读参考数据，迁移时初始化）
type Campus struct {
	ID   int64   `gorm:"primaryKey;autoIncrement"   json:"id"`
	Name string  `gorm:"type:varchar(255);not null" json:"name"`
	Code *string `gorm:"type:varchar(20)"           json:"code,omitempty"`
	Timestamps
}

// TableName 指定表名
func (Campus) TableName() string { return "campuses" }
