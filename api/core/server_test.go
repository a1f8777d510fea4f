package core

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/anoixa/photo-share/cache"
	"github.com/anoixa/photo-share/config"
	"github.com/anoixa/photo-share/database"
	"github.com/anoixa/photo-share/internal/auth/session"
	"github.com/anoixa/photo-share/internal/services/accounts"
	"github.com/anoixa/photo-share/internal/services/cascade"
	"github.com/anoixa/photo-share/internal/services/photos"
	"github.com/anoixa/photo-share/storage"
)

type envelope struct {
	Status string          `json:"status"`
	Msg    string          `json:"msg"`
	Data   json.RawMessage `json:"data"`
	Kind   string          `json:"kind"`
}

type testServer struct {
	t        *testing.T
	router   *gin.Engine
	sessions *session.MemoryStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	provider := database.NewGormProviderFromDB(db, "sqlite")
	require.NoError(t, provider.Migrate(t.Context()))
	_, err = provider.Schema().Ensure(t.Context(), "test")
	require.NoError(t, err)

	blobs, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	mem, err := cache.NewMemory(cache.DefaultMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = mem.Close() })

	sessions := session.NewMemoryStore()
	codec, err := session.NewCodec("test-secret-key-at-least-32-characters-long")
	require.NoError(t, err)

	cfg := &config.Config{ServerHost: "127.0.0.1", ServerPort: 3000, UploadMaxSizeMB: 1, MaxConcurrency: 10}
	deps := &ServerDependencies{
		Config:   cfg,
		Database: provider,
		Storage:  blobs,
		Cache:    mem,
		Sessions: sessions,
		Codec:    codec,
		Accounts: accounts.NewService(provider.Users(), sessions),
		Photos:   photos.NewService(provider.Users(), provider.Photos(), photos.NewAuthorResolver(provider.Users(), mem, 0)),
		Cascade: cascade.NewCoordinator(cascade.Config{
			Users:    provider.Users(),
			Photos:   provider.Photos(),
			Blobs:    blobs,
			Sessions: sessions,
			Authors:  mem,
			MaxBytes: cfg.UploadMaxBytes(),
		}),
	}
	return &testServer{t: t, router: NewRouter(deps), sessions: sessions}
}

func (s *testServer) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.serve(req)
}

func (s *testServer) serve(req *http.Request) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

// signup 注册并登录，返回用户 ID 和令牌
func (s *testServer) signup(login, first string) (string, string) {
	s.t.Helper()
	w, env := s.do(http.MethodPost, "/user", "", gin.H{
		"login_name": login, "password": "pw", "first_name": first, "last_name": "Test",
	})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var user struct {
		ID string `json:"_id"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &user))

	w, env = s.do(http.MethodPost, "/admin/login", "", gin.H{"login_name": login, "password": "pw"})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var result struct {
		Token string `json:"token"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &result))
	require.NotEmpty(s.t, w.Header().Get("Set-Cookie"))
	return user.ID, result.Token
}

// upload 上传图片，返回图片 ID 和文件名
func (s *testServer) upload(token string, data []byte) (string, string) {
	s.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("uploadedphoto", "My Cat.png")
	require.NoError(s.t, err)
	_, err = part.Write(data)
	require.NoError(s.t, err)
	require.NoError(s.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/photos/new", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w, env := s.serve(req)
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())

	var photo struct {
		ID       string `json:"_id"`
		FileName string `json:"file_name"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &photo))
	return photo.ID, photo.FileName
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{G: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"ok"`)

	w, env := s.do(http.MethodGet, "/test/counts", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":0,"photo":0,"schemaInfo":1}`, string(env.Data))

	for _, path := range []string{"/test", "/test/info"} {
		w, _ = s.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Contains(t, w.Body.String(), `"version":"test"`, path)
	}

	w, env = s.do(http.MethodGet, "/test/bogus", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation", env.Kind)
}

func TestUploadQueueTimeout(t *testing.T) {
	assert.Equal(t, 5*time.Second, uploadQueueTimeout(&config.Config{}))
	assert.Equal(t, time.Second, uploadQueueTimeout(&config.Config{UploadQueueTimeout: time.Second}))
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	s := newTestServer(t)
	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/user/list"},
		{http.MethodGet, "/user/x"},
		{http.MethodDelete, "/user/x"},
		{http.MethodGet, "/photosOfUser/x"},
		{http.MethodPost, "/photos/new"},
		{http.MethodDelete, "/photos/x"},
		{http.MethodPost, "/commentsOfPhoto/x"},
		{http.MethodDelete, "/commentsOfPhoto/x/y"},
		{http.MethodPost, "/admin/logout"},
	} {
		w, env := s.do(route.method, route.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, route.path)
		assert.Equal(t, "unauthorized", env.Kind, route.path)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)
	s.signup("amy", "Amy")

	w, env := s.do(http.MethodPost, "/user", "", gin.H{
		"login_name": "AMY", "password": "pw", "first_name": "A", "last_name": "B",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "conflict", env.Kind)

	w, env = s.do(http.MethodPost, "/admin/login", "", gin.H{"login_name": "amy", "password": "nope"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid credentials", env.Msg)
}

func TestLogout(t *testing.T) {
	s := newTestServer(t)
	_, token := s.signup("amy", "Amy")

	w, _ := s.do(http.MethodPost, "/admin/logout", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, s.sessions.Len())

	w, _ = s.do(http.MethodGet, "/user/list", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPhotoLifecycle(t *testing.T) {
	s := newTestServer(t)
	amyID, amyToken := s.signup("amy", "Amy")
	_, bobToken := s.signup("bob", "Bob")

	photoID, fileName := s.upload(amyToken, pngBytes(t))
	assert.Regexp(t, `^\d+_My_Cat\.png$`, fileName)

	w, _ := s.do(http.MethodGet, "/images/"+fileName, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	w, env := s.do(http.MethodPost, "/commentsOfPhoto/"+photoID, bobToken, gin.H{"comment": "nice"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var comment struct {
		ID string `json:"_id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &comment))

	w, env = s.do(http.MethodPost, "/commentsOfPhoto/"+photoID, bobToken, gin.H{"comment": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation", env.Kind)

	w, env = s.do(http.MethodGet, "/photosOfUser/"+amyID, bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"first_name":"Bob"`)

	// 只有所有者可以删除图片
	w, env = s.do(http.MethodDelete, "/photos/"+photoID, bobToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "forbidden", env.Kind)

	w, _ = s.do(http.MethodDelete, "/commentsOfPhoto/"+photoID+"/"+comment.ID, amyToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(http.MethodDelete, "/photos/"+photoID, amyToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(http.MethodDelete, "/photos/"+photoID, amyToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = s.do(http.MethodGet, "/images/"+fileName, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadRejectsNonImage(t *testing.T) {
	s := newTestServer(t)
	_, token := s.signup("amy", "Amy")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("uploadedphoto", "notes.txt")
	require.NoError(t, err)
	_, _ = part.Write([]byte("hello world"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/photos/new", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w, env := s.serve(req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation", env.Kind)

	w, env = s.do(http.MethodPost, "/photos/new", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No file uploaded", env.Msg)
}

func TestDeleteUserCascade(t *testing.T) {
	s := newTestServer(t)
	amyID, amyToken := s.signup("amy", "Amy")
	bobID, bobToken := s.signup("bob", "Bob")

	bobPhoto, _ := s.upload(bobToken, pngBytes(t))
	_, _ = s.do(http.MethodPost, "/commentsOfPhoto/"+bobPhoto, amyToken, gin.H{"comment": "from amy"})
	s.upload(amyToken, pngBytes(t))

	// 不能删除别人
	w, _ := s.do(http.MethodDelete, "/user/"+bobID, amyToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = s.do(http.MethodDelete, "/user/"+amyID, amyToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, _ = s.do(http.MethodGet, "/user/list", amyToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "sessions of the deleted user are gone")

	w, env := s.do(http.MethodGet, "/photosOfUser/"+bobID, bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, string(env.Data), "from amy")

	w, _ = s.do(http.MethodGet, "/photosOfUser/"+amyID, bobToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = s.do(http.MethodGet, "/test/counts", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":1,"photo":1,"schemaInfo":1}`, string(env.Data))
}
