package models

import "time"

// Photo 图片聚合，内嵌按插入顺序排列的评论
type Photo struct {
	ID       string    `gorm:"primaryKey;size:36" bson:"_id" json:"_id"`
	FileName string    `gorm:"size:255;not null;uniqueIndex" bson:"file_name" json:"file_name"`
	DateTime time.Time `gorm:"not null;index" bson:"date_time" json:"date_time"`
	UserID   string    `gorm:"size:36;not null;index" bson:"user_id" json:"user_id"`
	Comments []Comment `gorm:"foreignKey:PhotoID" bson:"comments" json:"comments"`
}

// Comment 评论，只能追加或删除
type Comment struct {
	ID       string    `gorm:"primaryKey;size:36" bson:"_id" json:"_id"`
	PhotoID  string    `gorm:"size:36;not null;index" bson:"-" json:"-"`
	Seq      int64     `gorm:"not null;index" bson:"-" json:"-"`
	Comment  string    `gorm:"type:text;not null" bson:"comment" json:"comment"`
	DateTime time.Time `gorm:"not null" bson:"date_time" json:"date_time"`
	UserID   string    `gorm:"size:36;not null;index" bson:"user_id" json:"user_id"`
}

// FindComment 按 ID 查找评论
func (p *Photo) FindComment(commentID string) (*Comment, bool) {
	for i := range p.Comments {
		if p.Comments[i].ID == commentID {
			return &p.Comments[i], true
		}
	}
	return nil, false
}
