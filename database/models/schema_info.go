package models

import "time"

// SchemaInfo 数据集元信息，只读
type SchemaInfo struct {
	ID           string    `gorm:"primaryKey;size:36" bson:"_id" json:"_id"`
	Version      string    `gorm:"size:64;not null" bson:"version" json:"version"`
	LoadDateTime time.Time `gorm:"not null" bson:"load_date_time" json:"load_date_time"`
}

// TableName 与原数据集的集合名保持一致
func (SchemaInfo) TableName() string {
	return "schema_info"
}

// Counts 各集合记录数
type Counts struct {
	User       int64 `json:"user"`
	Photo      int64 `json:"photo"`
	SchemaInfo int64 `json:"schemaInfo"`
}

// All 需要迁移的全部模型
func All() []interface{} {
	return []interface{}{
		&User{},
		&Photo{},
		&Comment{},
		&SchemaInfo{},
	}
}
