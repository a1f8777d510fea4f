package storage

import (
	"context"
	"testing"
)

// TestWebDAVStorageValidation 测试 WebDAV 存储配置验证
func TestWebDAVStorageValidation(t *testing.T) {
	_, err := NewWebDAVStorage(WebDAVConfig{URL: ""})
	if err == nil || err.Error() != "webdav URL is required" {
		t.Errorf("expected missing URL error, got %v", err)
	}
}

// TestWebDAVStorageFullPath 测试路径生成逻辑
func TestWebDAVStorageFullPath(t *testing.T) {
	tests := []struct {
		name        string
		rootPath    string
		storagePath string
		want        string
	}{
		{
			name:        "empty root path",
			rootPath:    "",
			storagePath: "1700000000000000000_test.jpg",
			want:        "/1700000000000000000_test.jpg",
		},
		{
			name:        "with root path",
			rootPath:    "/images",
			storagePath: "1700000000000000000_test.jpg",
			want:        "/images/1700000000000000000_test.jpg",
		},
		{
			name:        "root path needs normalizing",
			rootPath:    "images/",
			storagePath: "test.jpg",
			want:        "/images/test.jpg",
		},
		{
			name:        "storage path with leading slash",
			rootPath:    "",
			storagePath: "/test.jpg",
			want:        "/test.jpg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &WebDAVStorage{rootPath: normalizeRootPath(tt.rootPath)}
			if got := s.fullPath(tt.storagePath); got != tt.want {
				t.Errorf("fullPath() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestWebDAVStorageContextCancellation 测试上下文取消处理
func TestWebDAVStorageContextCancellation(t *testing.T) {
	s := &WebDAVStorage{
		client:  nil, // 取消后不会触达 client
		baseURL: "https://example.com",
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.SaveWithContext(ctx, "test.jpg", nil); err != context.Canceled {
		t.Errorf("SaveWithContext: expected context.Canceled, got %v", err)
	}
	if _, err := s.GetWithContext(ctx, "test.jpg"); err != context.Canceled {
		t.Errorf("GetWithContext: expected context.Canceled, got %v", err)
	}
	if err := s.DeleteWithContext(ctx, "test.jpg"); err != context.Canceled {
		t.Errorf("DeleteWithContext: expected context.Canceled, got %v", err)
	}
	if _, err := s.Exists(ctx, "test.jpg"); err != context.Canceled {
		t.Errorf("Exists: expected context.Canceled, got %v", err)
	}
	if _, err := s.List(ctx); err == nil {
		t.Error("List: expected error after cancel")
	}
	if err := s.Health(ctx); err != context.Canceled {
		t.Errorf("Health: expected context.Canceled, got %v", err)
	}
}

// TestWebDAVStorageName 测试存储名称
func TestWebDAVStorageName(t *testing.T) {
	s := &WebDAVStorage{}
	if got := s.Name(); got != "webdav" {
		t.Errorf("Name() = %v, want webdav", got)
	}
	s = &WebDAVStorage{baseURL: "https://dav.example.com", rootPath: "/photos"}
	if got := s.Name(); got != "webdav:https://dav.example.com/photos" {
		t.Errorf("Name() = %v", got)
	}
}
