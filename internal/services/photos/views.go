package photos

import (
	"time"

	"github.com/anoixa/photo-share/database/models"
)

// Author 评论作者的公开信息
type Author struct {
	ID        string `json:"_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	// Unknown 作者已被删除
	Unknown bool `json:"unknown,omitempty"`
}

// unknownAuthor 无法解析的作者占位
func unknownAuthor(id string) Author {
	return Author{ID: id, FirstName: "Unknown", LastName: "User", Unknown: true}
}

func authorOf(u *models.User) Author {
	return Author{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName}
}

// CommentView 带作者信息的评论
type CommentView struct {
	ID       string    `json:"_id"`
	Comment  string    `json:"comment"`
	DateTime time.Time `json:"date_time"`
	User     Author    `json:"user"`
}

// PhotoView 带评论的图片
type PhotoView struct {
	ID       string        `json:"_id"`
	FileName string        `json:"file_name"`
	DateTime time.Time     `json:"date_time"`
	UserID   string        `json:"user_id"`
	Comments []CommentView `json:"comments"`
}
