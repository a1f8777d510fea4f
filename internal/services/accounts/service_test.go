package accounts

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/anoixa/photo-share/database/models"
	accountrepo "github.com/anoixa/photo-share/database/repo/accounts"
	"github.com/anoixa/photo-share/internal/apperr"
	"github.com/anoixa/photo-share/internal/auth"
	"github.com/anoixa/photo-share/internal/auth/session"
)

func setupService(t *testing.T) (*Service, *accountrepo.Repository, *session.MemoryStore) {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	users := accountrepo.NewRepository(db)
	sessions := session.NewMemoryStore()
	return NewService(users, sessions), users, sessions
}

func amyRequest() RegisterRequest {
	return RegisterRequest{LoginName: "amy", Password: "x", FirstName: "Amy", LastName: "Lee"}
}

func TestRegister(t *testing.T) {
	svc, users, _ := setupService(t)
	ctx := context.Background()

	detail, err := svc.Register(ctx, amyRequest())
	require.NoError(t, err)
	assert.Equal(t, "amy", detail.LoginName)
	assert.Equal(t, "Amy", detail.FirstName)

	stored, err := users.FindByID(ctx, detail.ID)
	require.NoError(t, err)
	assert.True(t, auth.IsHashed(stored.Password), "password is never stored in plain text")
}

func TestRegister_Validation(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	cases := map[string]func(r *RegisterRequest){
		"missing login":    func(r *RegisterRequest) { r.LoginName = "   " },
		"missing password": func(r *RegisterRequest) { r.Password = "" },
		"mismatch":         func(r *RegisterRequest) { r.PasswordConfirm = "y" },
		"missing first":    func(r *RegisterRequest) { r.FirstName = "" },
		"missing last":     func(r *RegisterRequest) { r.LastName = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := amyRequest()
			mutate(&req)
			_, err := svc.Register(ctx, req)
			assert.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)
		})
	}
}

// TestRegister_Conflict 登录名唯一，大小写与首尾空白不影响判断
func TestRegister_Conflict(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, amyRequest())
	require.NoError(t, err)

	for _, name := range []string{"amy", " AMY ", "Amy"} {
		req := amyRequest()
		req.LoginName = name
		_, err := svc.Register(ctx, req)
		assert.True(t, apperr.Is(err, apperr.KindConflict), "login %q: %v", name, err)
	}
}

func TestLogin(t *testing.T) {
	svc, _, sessions := setupService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, amyRequest())
	require.NoError(t, err)

	_, err = svc.Login(ctx, "amy", "wrong")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, "Invalid credentials", apperr.PublicMessage(err))

	_, err = svc.Login(ctx, "nobody", "x")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	result, err := svc.Login(ctx, "AMY", "x")
	require.NoError(t, err)
	assert.Equal(t, "amy", result.Identity.LoginName)

	resolved, err := sessions.Resolve(ctx, result.Token)
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, result.Identity, *resolved)

	require.NoError(t, svc.Logout(ctx, resolved, result.Token))
	resolved, err = sessions.Resolve(ctx, result.Token)
	require.NoError(t, err)
	assert.Nil(t, resolved)

	assert.True(t, apperr.Is(svc.Logout(ctx, nil, result.Token), apperr.KindUnauthorized))
}

func TestLogin_LegacyPlaintextPassword(t *testing.T) {
	svc, users, _ := setupService(t)
	ctx := context.Background()

	require.NoError(t, users.Insert(ctx, &models.User{
		ID: uuid.NewString(), LoginName: "malcolm", Password: "weak", FirstName: "Malcolm", LastName: "X",
	}))

	_, err := svc.Login(ctx, "malcolm", "weak")
	assert.NoError(t, err)
}

func TestListAndGetUser(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	amy, err := svc.Register(ctx, amyRequest())
	require.NoError(t, err)
	actor := &auth.Identity{ID: amy.ID}

	_, err = svc.ListUsers(ctx, nil)
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))

	list, err := svc.ListUsers(ctx, actor)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, UserSummary{ID: amy.ID, FirstName: "Amy", LastName: "Lee"}, list[0])

	detail, err := svc.GetUser(ctx, actor, amy.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lee", detail.LastName)

	_, err = svc.GetUser(ctx, actor, "missing")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
