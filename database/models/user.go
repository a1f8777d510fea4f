package models

import (
	"strings"
	"time"
)

// User 用户
type User struct {
	ID           string    `gorm:"primaryKey;size:36" bson:"_id" json:"_id"`
	LoginName    string    `gorm:"size:128;not null" bson:"login_name" json:"login_name"`
	LoginNameKey string    `gorm:"size:128;not null;uniqueIndex" bson:"login_name_key" json:"-"`
	Password     string    `gorm:"size:255;not null" bson:"password" json:"-"`
	FirstName    string    `gorm:"size:128;not null" bson:"first_name" json:"first_name"`
	LastName     string    `gorm:"size:128;not null" bson:"last_name" json:"last_name"`
	Location     string    `gorm:"size:255" bson:"location" json:"location"`
	Description  string    `gorm:"type:text" bson:"description" json:"description"`
	Occupation   string    `gorm:"size:255" bson:"occupation" json:"occupation"`
	CreatedAt    time.Time `bson:"created_at" json:"-"`
}

// LoginNameKey 登录名唯一键：去除首尾空白并转小写
func LoginNameKey(loginName string) string {
	return strings.ToLower(strings.TrimSpace(loginName))
}
