package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/spf13/viper"
)

var (
	globalConfig Config
	once         sync.Once
)

// Config 扁平化配置结构体
type Config struct {
	// 服务器配置
	ServerHost         string        `mapstructure:"server_host"`
	ServerPort         int           `mapstructure:"server_port"`
	ServerDomain       string        `mapstructure:"server_domain"`
	ServerReadTimeout  time.Duration `mapstructure:"server_read_timeout"`
	ServerWriteTimeout time.Duration `mapstructure:"server_write_timeout"`
	ServerIdleTimeout  time.Duration `mapstructure:"server_idle_timeout"`
	MaxConcurrency     int64         `mapstructure:"max_concurrency"`
	UploadConcurrency  int64         `mapstructure:"upload_concurrency"`
	UploadQueueTimeout time.Duration `mapstructure:"upload_queue_timeout"`

	// 数据库配置
	DBType            string `mapstructure:"db_type"`
	DBHost            string `mapstructure:"db_host"`
	DBPort            int    `mapstructure:"db_port"`
	DBUsername        string `mapstructure:"db_username"`
	DBPassword        string `mapstructure:"db_password"`
	DBName            string `mapstructure:"db_name"`
	DBFilePath        string `mapstructure:"db_file_path"`
	DBMaxOpenConns    int    `mapstructure:"db_max_open_conns"`
	DBMaxIdleConns    int    `mapstructure:"db_max_idle_conns"`
	DBConnMaxLifetime int    `mapstructure:"db_conn_max_lifetime"`
	DBMongoURI        string `mapstructure:"db_mongo_uri"`

	// 存储配置
	StorageType             string `mapstructure:"storage_type"`
	StorageLocalPath        string `mapstructure:"storage_local_path"`
	StorageMinioEndpoint    string `mapstructure:"storage_minio_endpoint"`
	StorageMinioAccessKey   string `mapstructure:"storage_minio_access_key"`
	StorageMinioSecretKey   string `mapstructure:"storage_minio_secret_key"`
	StorageMinioBucket      string `mapstructure:"storage_minio_bucket"`
	StorageMinioUseSSL      bool   `mapstructure:"storage_minio_use_ssl"`
	StorageS3Region         string `mapstructure:"storage_s3_region"`
	StorageS3Bucket         string `mapstructure:"storage_s3_bucket"`
	StorageS3Endpoint       string `mapstructure:"storage_s3_endpoint"`
	StorageS3AccessKey      string `mapstructure:"storage_s3_access_key"`
	StorageS3SecretKey      string `mapstructure:"storage_s3_secret_key"`
	StorageS3UsePathStyle   bool   `mapstructure:"storage_s3_use_path_style"`
	StorageWebDAVURL        string `mapstructure:"storage_webdav_url"`
	StorageWebDAVUsername   string `mapstructure:"storage_webdav_username"`
	StorageWebDAVPassword   string `mapstructure:"storage_webdav_password"`
	StorageWebDAVRootPath   string `mapstructure:"storage_webdav_root_path"`
	StorageWebDAVTimeoutSec int    `mapstructure:"storage_webdav_timeout"`

	// 缓存提供者配置
	CacheType          string        `mapstructure:"cache_type"`
	CacheRedisAddr     string        `mapstructure:"cache_redis_addr"`
	CacheRedisPassword string        `mapstructure:"cache_redis_password"`
	CacheRedisDB       int           `mapstructure:"cache_redis_db"`
	CacheAuthorTTL     time.Duration `mapstructure:"cache_author_ttl"`

	// 会话配置
	SessionStore  string `mapstructure:"session_store"`
	SessionSecret string `mapstructure:"session_secret"`

	// 上传配置
	UploadMaxSizeMB int `mapstructure:"upload_max_size_mb"`

	// 一致性修复配置
	ReconcileInterval time.Duration `mapstructure:"reconcile_interval"`
	ReconcileGrace    time.Duration `mapstructure:"reconcile_grace"`
}

// InitConfig Initialize configuration
func InitConfig() {
	once.Do(func() {
		loadConfig()
	})
}

func Get() *Config {
	return &globalConfig
}

// loadConfig Core configuration loading
func loadConfig() {
	setDefaults()

	configFile := viper.GetString("config_file_path")
	if configFile == "" {
		configFile = ".env"
		viper.SetConfigType("env")
	}
	viper.SetConfigFile(configFile)

	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "Info: %s not loaded, using defaults and environment variables\n", configFile)
	} else {
		fmt.Fprintf(os.Stderr, "Info: Loaded configuration from %s\n", configFile)
	}

	viper.AutomaticEnv()
	for _, key := range viper.AllKeys() {
		_ = viper.BindEnv(key)
	}

	if err := viper.Unmarshal(&globalConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: Unable to unmarshal config, %v\n", err)
		os.Exit(1)
	}
}

// setDefaults 设置默认值
func setDefaults() {
	// 服务器配置默认值
	viper.SetDefault("server_host", "127.0.0.1")
	viper.SetDefault("server_port", 3000)
	viper.SetDefault("server_domain", "")
	viper.SetDefault("server_read_timeout", "15s")
	viper.SetDefault("server_write_timeout", "30s")
	viper.SetDefault("server_idle_timeout", "120s")
	viper.SetDefault("max_concurrency", 100)
	viper.SetDefault("upload_concurrency", 8)
	viper.SetDefault("upload_queue_timeout", "5s")

	// 数据库配置默认值
	viper.SetDefault("db_type", "sqlite")
	viper.SetDefault("db_host", "localhost")
	viper.SetDefault("db_port", 5432)
	viper.SetDefault("db_username", "postgres")
	viper.SetDefault("db_password", "")
	viper.SetDefault("db_name", "photo-share")
	viper.SetDefault("db_file_path", "")
	viper.SetDefault("db_max_open_conns", 100)
	viper.SetDefault("db_max_idle_conns", 25)
	viper.SetDefault("db_conn_max_lifetime", 3600)
	viper.SetDefault("db_mongo_uri", "mongodb://127.0.0.1:27017")

	// 存储配置默认值
	viper.SetDefault("storage_type", "local")
	viper.SetDefault("storage_local_path", "./data/images")
	viper.SetDefault("storage_minio_endpoint", "")
	viper.SetDefault("storage_minio_access_key", "")
	viper.SetDefault("storage_minio_secret_key", "")
	viper.SetDefault("storage_minio_bucket", "photo-share")
	viper.SetDefault("storage_minio_use_ssl", false)
	viper.SetDefault("storage_s3_region", "us-east-1")
	viper.SetDefault("storage_s3_bucket", "")
	viper.SetDefault("storage_s3_endpoint", "")
	viper.SetDefault("storage_s3_access_key", "")
	viper.SetDefault("storage_s3_secret_key", "")
	viper.SetDefault("storage_s3_use_path_style", false)
	viper.SetDefault("storage_webdav_url", "")
	viper.SetDefault("storage_webdav_username", "")
	viper.SetDefault("storage_webdav_password", "")
	viper.SetDefault("storage_webdav_root_path", "")
	viper.SetDefault("storage_webdav_timeout", 30)

	// 缓存提供者配置默认值
	viper.SetDefault("cache_type", "memory")
	viper.SetDefault("cache_redis_addr", "localhost:6379")
	viper.SetDefault("cache_redis_password", "")
	viper.SetDefault("cache_redis_db", 0)
	viper.SetDefault("cache_author_ttl", "30m")

	// 会话配置默认值
	viper.SetDefault("session_store", "memory")
	viper.SetDefault("session_secret", "")

	// 上传配置默认值
	viper.SetDefault("upload_max_size_mb", 20)

	// 一致性修复默认值，0 表示不启动后台扫描
	viper.SetDefault("reconcile_interval", "0s")
	viper.SetDefault("reconcile_grace", "10m")
}

// Addr 返回监听地址，格式为 "host:port"
func (c *Config) Addr() string {
	host := c.ServerHost
	if host == "" {
		host = "0.0.0.0"
	}
	port := c.ServerPort
	if port == 0 {
		port = 3000
	}
	return fmt.Sprintf("%s:%d", host, port)
}

// BaseURL 返回基础 URL，用于 CORS 与图片链接
func (c *Config) BaseURL() string {
	if c.ServerDomain != "" {
		return c.ServerDomain
	}
	host := c.ServerHost
	if host == "0.0.0.0" || host == "" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d", host, c.ServerPort)
}

// UploadMaxBytes 单张图片的最大字节数
func (c *Config) UploadMaxBytes() int64 {
	if c.UploadMaxSizeMB <= 0 {
		return 20 << 20
	}
	return int64(c.UploadMaxSizeMB) << 20
}

// StorageOptions 返回指定存储后端的原始选项，由 storage.NewProvider 解码
func (c *Config) StorageOptions(kind string) map[string]interface{} {
	switch kind {
	case "local":
		return map[string]interface{}{
			"path": c.StorageLocalPath,
		}
	case "minio":
		return map[string]interface{}{
			"endpoint":   c.StorageMinioEndpoint,
			"access_key": c.StorageMinioAccessKey,
			"secret_key": c.StorageMinioSecretKey,
			"bucket":     c.StorageMinioBucket,
			"use_ssl":    c.StorageMinioUseSSL,
		}
	case "s3":
		return map[string]interface{}{
			"region":         c.StorageS3Region,
			"bucket":         c.StorageS3Bucket,
			"endpoint":       c.StorageS3Endpoint,
			"access_key":     c.StorageS3AccessKey,
			"secret_key":     c.StorageS3SecretKey,
			"use_path_style": c.StorageS3UsePathStyle,
		}
	case "webdav":
		return map[string]interface{}{
			"url":       c.StorageWebDAVURL,
			"username":  c.StorageWebDAVUsername,
			"password":  c.StorageWebDAVPassword,
			"root_path": c.StorageWebDAVRootPath,
			"timeout":   time.Duration(c.StorageWebDAVTimeoutSec) * time.Second,
		}
	default:
		return nil
	}
}
