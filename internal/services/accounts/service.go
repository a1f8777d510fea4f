package accounts

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/anoixa/photo-share/database/models"
	"github.com/anoixa/photo-share/database/repo"
	"github.com/anoixa/photo-share/internal/apperr"
	"github.com/anoixa/photo-share/internal/auth"
	"github.com/anoixa/photo-share/internal/auth/session"
	"github.com/anoixa/photo-share/utils"
)

// RegisterRequest 注册参数
type RegisterRequest struct {
	LoginName       string `json:"login_name"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Location        string `json:"location"`
	Description     string `json:"description"`
	Occupation      string `json:"occupation"`
}

// UserSummary 用户列表项
type UserSummary struct {
	ID        string `json:"_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// UserDetail 用户详情，不包含密码
type UserDetail struct {
	ID          string `json:"_id"`
	LoginName   string `json:"login_name"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Occupation  string `json:"occupation"`
}

// LoginResult 登录结果
type LoginResult struct {
	Identity auth.Identity
	Token    string
}

// Service 账号服务
type Service struct {
	users    repo.UserRepository
	sessions session.Store
}

// NewService 创建账号服务
func NewService(users repo.UserRepository, sessions session.Store) *Service {
	return &Service{users: users, sessions: sessions}
}

func (r *RegisterRequest) normalize() {
	r.LoginName = strings.TrimSpace(r.LoginName)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Location = strings.TrimSpace(r.Location)
	r.Occupation = strings.TrimSpace(r.Occupation)
}

func (r *RegisterRequest) validate() error {
	switch {
	case r.LoginName == "":
		return apperr.Validation("login_name is required")
	case r.Password == "":
		return apperr.Validation("password is required")
	case r.PasswordConfirm != "" && r.PasswordConfirm != r.Password:
		return apperr.Validation("Passwords do not match")
	case r.FirstName == "":
		return apperr.Validation("first_name is required")
	case r.LastName == "":
		return apperr.Validation("last_name is required")
	}
	return nil
}

// Register 注册新用户，登录名冲突返回 Conflict
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*UserDetail, error) {
	req.normalize()
	if err := req.validate(); err != nil {
		return nil, err
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperr.Dependency("Failed to register user", err)
	}

	user := &models.User{
		ID:          uuid.NewString(),
		LoginName:   req.LoginName,
		Password:    hashed,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Location:    req.Location,
		Description: req.Description,
		Occupation:  req.Occupation,
	}
	if err := s.users.Insert(ctx, user); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, apperr.Conflict("Login name already exists")
		}
		return nil, apperr.Dependency("Failed to register user", err)
	}

	log.Printf("[Accounts] Registered user %s (%s)", user.ID, utils.SanitizeLogUsername(user.LoginName))
	return detailOf(user), nil
}

// Login 校验凭据并创建会话
func (s *Service) Login(ctx context.Context, loginName, password string) (*LoginResult, error) {
	if err := auth.Check(nil, auth.OpLogin, auth.Target{}); err != nil {
		return nil, err
	}
	loginName = strings.TrimSpace(loginName)
	if loginName == "" || password == "" {
		return nil, apperr.Validation("Invalid credentials")
	}

	user, err := s.users.FindByLoginName(ctx, loginName)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			utils.LogIfDevf("[Accounts] Login failed for unknown user %s", utils.SanitizeLogUsername(loginName))
			return nil, apperr.Validation("Invalid credentials")
		}
		return nil, apperr.Dependency("Login failed", err)
	}

	ok, err := auth.ComparePassword(password, user.Password)
	if err != nil {
		return nil, apperr.Dependency("Login failed", fmt.Errorf("password comparison failed: %w", err))
	}
	if !ok {
		utils.LogIfDevf("[Accounts] Wrong password for %s", utils.SanitizeLogUsername(loginName))
		return nil, apperr.Validation("Invalid credentials")
	}

	identity := auth.IdentityOf(user)
	token, err := s.sessions.Create(ctx, identity)
	if err != nil {
		return nil, apperr.Dependency("Login failed", err)
	}

	return &LoginResult{Identity: identity, Token: token}, nil
}

// Logout 销毁会话
func (s *Service) Logout(ctx context.Context, actor *auth.Identity, token string) error {
	if err := auth.Check(actor, auth.OpLogout, auth.Target{}); err != nil {
		return err
	}
	if err := s.sessions.Destroy(ctx, token); err != nil {
		return apperr.Dependency("Logout failed", err)
	}
	return nil
}

// ListUsers 用户列表
func (s *Service) ListUsers(ctx context.Context, actor *auth.Identity) ([]UserSummary, error) {
	if err := auth.Check(actor, auth.OpListUsers, auth.Target{}); err != nil {
		return nil, err
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperr.Dependency("Failed to list users", err)
	}

	result := make([]UserSummary, 0, len(users))
	for _, u := range users {
		result = append(result, UserSummary{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName})
	}
	return result, nil
}

// GetUser 用户详情
func (s *Service) GetUser(ctx context.Context, actor *auth.Identity, userID string) (*UserDetail, error) {
	if err := auth.Check(actor, auth.OpReadUser, auth.Target{UserID: userID}); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Dependency("Failed to load user", err)
	}
	return detailOf(user), nil
}

func detailOf(u *models.User) *UserDetail {
	return &UserDetail{
		ID:          u.ID,
		LoginName:   u.LoginName,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Location:    u.Location,
		Description: u.Description,
		Occupation:  u.Occupation,
	}
}
