package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocalStorage(t *testing.T) *LocalStorage {
	t.Helper()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return s
}

// TestLocalStorage_PathTraversal_Prevention 测试路径遍历防护
func TestLocalStorage_PathTraversal_Prevention(t *testing.T) {
	storage := newTestLocalStorage(t)
	ctx := context.Background()

	traversalAttempts := []string{
		"../../../etc/passwd",
		"..\\..\\..\\windows\\system32\\config\\sam",
		"../../.env",
		"..",
		".",
		"",
		"folder/../../../etc/passwd",
	}

	for _, attempt := range traversalAttempts {
		t.Run("save_"+attempt, func(t *testing.T) {
			err := storage.SaveWithContext(ctx, attempt, strings.NewReader("test content"))
			require.Error(t, err, "Path traversal attempt should be rejected: %s", attempt)
			assert.Contains(t, err.Error(), "invalid")
		})
	}

	_, err := storage.GetWithContext(ctx, "../../../etc/passwd")
	assert.Error(t, err)
	err = storage.DeleteWithContext(ctx, "../../../etc/passwd")
	assert.Error(t, err)
}

func TestLocalStorage_SaveGetDelete(t *testing.T) {
	storage := newTestLocalStorage(t)
	ctx := context.Background()

	require.NoError(t, storage.SaveWithContext(ctx, "1700000000000000000_sunset.jpg", strings.NewReader("jpeg bytes")))

	exists, err := storage.Exists(ctx, "1700000000000000000_sunset.jpg")
	require.NoError(t, err)
	assert.True(t, exists)

	r, err := storage.GetWithContext(ctx, "1700000000000000000_sunset.jpg")
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(data))
	if c, ok := r.(io.Closer); ok {
		_ = c.Close()
	}

	require.NoError(t, storage.DeleteWithContext(ctx, "1700000000000000000_sunset.jpg"))

	exists, err = storage.Exists(ctx, "1700000000000000000_sunset.jpg")
	require.NoError(t, err)
	assert.False(t, exists)
}

// TestLocalStorage_NoOverwrite 同名文件已存在时不覆盖
func TestLocalStorage_NoOverwrite(t *testing.T) {
	dir := t.TempDir()
	storage, err := NewLocalStorage(dir)
	require.NoError(t, err)
	ctx := context.Background()
	name := "1700000000000000000_sunset.jpg"

	require.NoError(t, storage.SaveWithContext(ctx, name, strings.NewReader("first")))
	err = storage.SaveWithContext(ctx, name, strings.NewReader("second"))
	assert.True(t, errors.Is(err, ErrExist), "got %v", err)

	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file is removed")
}

func TestLocalStorage_MissingFile(t *testing.T) {
	storage := newTestLocalStorage(t)
	ctx := context.Background()

	_, err := storage.GetWithContext(ctx, "missing.jpg")
	assert.True(t, errors.Is(err, ErrNotExist))

	err = storage.DeleteWithContext(ctx, "missing.jpg")
	assert.True(t, errors.Is(err, ErrNotExist))
}

// TestLocalStorage_NoPartialFiles 写入失败不留下残留文件
func TestLocalStorage_NoPartialFiles(t *testing.T) {
	dir := t.TempDir()
	storage, err := NewLocalStorage(dir)
	require.NoError(t, err)

	err = storage.SaveWithContext(context.Background(), "broken.png", &failingReader{})
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLocalStorage_List(t *testing.T) {
	dir := t.TempDir()
	storage, err := NewLocalStorage(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, storage.SaveWithContext(ctx, "a.jpg", strings.NewReader("a")))
	require.NoError(t, storage.SaveWithContext(ctx, "b.png", strings.NewReader("bb")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".upload-123"), []byte("tmp"), 0644))

	blobs, err := storage.List(ctx)
	require.NoError(t, err)

	names := make([]string, 0, len(blobs))
	for _, b := range blobs {
		names = append(names, b.Name)
	}
	assert.ElementsMatch(t, []string{"a.jpg", "b.png"}, names)
}

func TestIsValidStoragePath(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		wantValid bool
	}{
		{"simple", "file.txt", true},
		{"generated", "1700000000000000000_my_photo.jpg", true},
		{"nested", "2024/01/file.png", true},
		{"empty", "", false},
		{"dot", ".", false},
		{"hidden", ".upload-1", false},
		{"dotdot", "..", false},
		{"absolute_unix", "/etc/passwd", false},
		{"absolute_windows", "C:\\file.txt", false},
		{"traversal", "../file.txt", false},
		{"null_byte", "file\x00.txt", false},
		{"newline", "file\n.txt", false},
		{"space", "my photo.jpg", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantValid, IsValidStoragePath(tt.path), "path: %q", tt.path)
		})
	}
}

type failingReader struct{}

func (f *failingReader) Read(p []byte) (int, error) {
	return 0, errors.New("disk on fire")
}
