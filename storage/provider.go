package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrNotExist 文件不存在
	ErrNotExist = errors.New("blob does not exist")

	// ErrExist 同名文件已存在，SaveWithContext 不会覆盖
	ErrExist = errors.New("blob already exists")
)

// Provider 存储提供者接口 - 依赖倒置的核心抽象
// 按文件名寻址，保存上传的图片字节
type Provider interface {
	// SaveWithContext 保存文件到存储，同名文件已存在时返回 ErrExist
	SaveWithContext(ctx context.Context, identifier string, file io.Reader) error

	// GetWithContext 从存储获取文件，不存在时返回 ErrNotExist
	GetWithContext(ctx context.Context, identifier string) (io.ReadSeeker, error)

	// DeleteWithContext 从存储删除文件
	DeleteWithContext(ctx context.Context, identifier string) error

	// Exists 检查文件是否存在
	Exists(ctx context.Context, identifier string) (bool, error)

	// Health 检查存储健康状态
	Health(ctx context.Context) error

	// Name 返回存储名称
	Name() string
}

// BlobInfo 存储中的文件信息
type BlobInfo struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// Lister 可枚举全部文件的存储，供孤儿文件扫描使用
type Lister interface {
	List(ctx context.Context) ([]BlobInfo, error)
}
