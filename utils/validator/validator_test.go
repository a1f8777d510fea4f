package validator

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// TestDetectImageType_MagicBytes 测试文件头嗅探
func TestDetectImageType_MagicBytes(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		mime string
		ok   bool
	}{
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 0x4A, 0x46, 0x49, 0x46}, "image/jpeg", true},
		{"png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, "image/png", true},
		{"gif", []byte("GIF89a"), "image/gif", true},
		{"text", []byte("hello world"), "text/plain; charset=utf-8", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mime, ok := DetectImageType(tt.data)
			assert.Equal(t, tt.mime, mime)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

// TestInspectImage_ValidPNG 测试合法图片
func TestInspectImage_ValidPNG(t *testing.T) {
	info, err := InspectImage(encodePNG(t, 4, 3))
	require.NoError(t, err)
	assert.Equal(t, "image/png", info.MimeType)
	assert.Equal(t, "png", info.Format)
	assert.Equal(t, 4, info.Width)
	assert.Equal(t, 3, info.Height)
}

// TestInspectImage_Rejects 测试空文件、非图片和损坏的图片头
func TestInspectImage_Rejects(t *testing.T) {
	_, err := InspectImage(nil)
	assert.Error(t, err)

	_, err = InspectImage([]byte("not an image at all"))
	assert.Error(t, err)

	// 只有 PNG 魔数，没有 IHDR
	_, err = InspectImage([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A})
	assert.Error(t, err)
}
