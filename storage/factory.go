package storage

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/anoixa/photo-share/config"
)

// NewProvider 按类型创建存储提供者，options 为原始键值配置
func NewProvider(kind string, options map[string]interface{}) (Provider, error) {
	switch kind {
	case "local", "":
		var cfg LocalConfig
		if err := decodeOptions(options, &cfg); err != nil {
			return nil, err
		}
		if cfg.Path == "" {
			cfg.Path = "./data/images"
		}
		return NewLocalStorage(cfg.Path)
	case "minio":
		var cfg MinioConfig
		if err := decodeOptions(options, &cfg); err != nil {
			return nil, err
		}
		return NewMinioStorage(cfg)
	case "s3":
		var cfg S3Config
		if err := decodeOptions(options, &cfg); err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return NewS3Storage(ctx, cfg)
	case "webdav":
		var cfg WebDAVConfig
		if err := decodeOptions(options, &cfg); err != nil {
			return nil, err
		}
		return NewWebDAVStorage(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", kind)
	}
}

func decodeOptions(options map[string]interface{}, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("failed to create options decoder: %w", err)
	}
	if err := decoder.Decode(options); err != nil {
		return fmt.Errorf("failed to decode storage options: %w", err)
	}
	return nil
}

// Factory 存储工厂 - 持有当前配置的存储提供者
type Factory struct {
	providers       map[string]Provider
	defaultProvider string
}

// NewFactory 根据配置创建存储工厂
func NewFactory(cfg *config.Config) (*Factory, error) {
	kind := cfg.StorageType
	if kind == "" {
		kind = "local"
	}

	log.Printf("[Storage] Initializing '%s' storage provider...", kind)
	provider, err := NewProvider(kind, cfg.StorageOptions(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s storage: %w", kind, err)
	}
	log.Printf("[Storage] Using provider: %s", provider.Name())

	return NewFactoryWith(kind, provider), nil
}

// NewFactoryWith 使用已创建的提供者构造工厂
func NewFactoryWith(name string, provider Provider) *Factory {
	return &Factory{
		providers:       map[string]Provider{name: provider},
		defaultProvider: name,
	}
}

// Get 获取指定名称的存储提供者
func (f *Factory) Get(name string) (Provider, error) {
	if name == "" {
		name = f.defaultProvider
	}

	provider, ok := f.providers[name]
	if !ok {
		return nil, fmt.Errorf("storage provider '%s' not found", name)
	}
	return provider, nil
}

// GetDefault 获取默认存储提供者
func (f *Factory) GetDefault() Provider {
	provider, _ := f.Get(f.defaultProvider)
	return provider
}

// GetDefaultName 获取默认存储提供者名称
func (f *Factory) GetDefaultName() string {
	return f.defaultProvider
}
