package auth

import "github.com/anoixa/photo-share/database/models"

// Identity 登录时记录的用户快照，会话期间不随用户资料变化
type Identity struct {
	ID        string `json:"_id"`
	LoginName string `json:"login_name"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// IdentityOf 从用户实体生成快照
func IdentityOf(u *models.User) Identity {
	return Identity{
		ID:        u.ID,
		LoginName: u.LoginName,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}
