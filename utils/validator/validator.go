package validator

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// allowedImageMimeTypes Allowed image types
var allowedImageMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"image/bmp":  true,
}

// ImageInfo 图片基础信息
type ImageInfo struct {
	MimeType string
	Format   string
	Width    int
	Height   int
}

// DetectImageType 通过文件头嗅探 MIME 类型，返回是否为允许的图片类型
func DetectImageType(data []byte) (string, bool) {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	mimeType := http.DetectContentType(head)
	return mimeType, allowedImageMimeTypes[mimeType]
}

// InspectImage 校验内容是允许的图片类型且图片头可以被解码
func InspectImage(data []byte) (*ImageInfo, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty file")
	}

	mimeType, ok := DetectImageType(data)
	if !ok {
		return nil, fmt.Errorf("unsupported content type %s", mimeType)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image header: %w", err)
	}

	return &ImageInfo{
		MimeType: mimeType,
		Format:   format,
		Width:    cfg.Width,
		Height:   cfg.Height,
	}, nil
}
