package auth

import "github.com/anoixa/photo-share/internal/apperr"

// Operation 需要鉴权的操作
type Operation int

const (
	OpRegister Operation = iota
	OpLogin
	OpLogout
	OpListUsers
	OpReadUser
	OpReadPhotos
	OpCreatePhoto
	OpCreateComment
	OpDeletePhoto
	OpDeleteComment
	OpDeleteUser
)

func (op Operation) String() string {
	switch op {
	case OpRegister:
		return "register"
	case OpLogin:
		return "login"
	case OpLogout:
		return "logout"
	case OpListUsers:
		return "list_users"
	case OpReadUser:
		return "read_user"
	case OpReadPhotos:
		return "read_photos"
	case OpCreatePhoto:
		return "create_photo"
	case OpCreateComment:
		return "create_comment"
	case OpDeletePhoto:
		return "delete_photo"
	case OpDeleteComment:
		return "delete_comment"
	case OpDeleteUser:
		return "delete_user"
	default:
		return "unknown"
	}
}

// Target 操作对象的归属信息，只填写与操作相关的字段
type Target struct {
	UserID          string
	PhotoOwnerID    string
	CommentAuthorID string
}

// Permit 纯函数：判断 actor 能否对 target 执行 op
// actor 为 nil 表示匿名请求
func Permit(actor *Identity, op Operation, target Target) bool {
	switch op {
	case OpRegister, OpLogin:
		return true
	}

	if actor == nil || actor.ID == "" {
		return false
	}

	switch op {
	case OpLogout, OpListUsers, OpReadUser, OpReadPhotos, OpCreatePhoto, OpCreateComment:
		return true
	case OpDeletePhoto:
		return target.PhotoOwnerID != "" && actor.ID == target.PhotoOwnerID
	case OpDeleteComment:
		return (target.CommentAuthorID != "" && actor.ID == target.CommentAuthorID) ||
			(target.PhotoOwnerID != "" && actor.ID == target.PhotoOwnerID)
	case OpDeleteUser:
		return target.UserID != "" && actor.ID == target.UserID
	default:
		return false
	}
}

// Check 调用 Permit，拒绝时区分未登录与无权限
func Check(actor *Identity, op Operation, target Target) error {
	if Permit(actor, op, target) {
		return nil
	}
	if actor == nil || actor.ID == "" {
		return apperr.Unauthorized("Unauthorized")
	}
	return apperr.Forbidden("Forbidden: not allowed to " + op.String())
}
