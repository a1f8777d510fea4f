package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anoixa/photo-share/config"
)

func TestNewProvider_Local(t *testing.T) {
	p, err := NewProvider("local", map[string]interface{}{"path": t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, "local", p.Name())

	_, ok := p.(Lister)
	assert.True(t, ok, "local storage should support listing")
}

func TestNewProvider_Unsupported(t *testing.T) {
	_, err := NewProvider("floppy", nil)
	assert.Error(t, err)
}

func TestNewProvider_WebDAVRequiresURL(t *testing.T) {
	_, err := NewProvider("webdav", map[string]interface{}{"url": ""})
	assert.Error(t, err)
}

func TestDecodeOptions_WeakTypes(t *testing.T) {
	var m MinioConfig
	err := decodeOptions(map[string]interface{}{
		"endpoint":   "minio:9000",
		"access_key": "ak",
		"secret_key": "sk",
		"bucket":     "photos",
		"use_ssl":    "true",
	}, &m)
	require.NoError(t, err)
	assert.Equal(t, "minio:9000", m.Endpoint)
	assert.Equal(t, "ak", m.AccessKeyID)
	assert.True(t, m.UseSSL)

	var w WebDAVConfig
	require.NoError(t, decodeOptions(map[string]interface{}{"url": "https://dav", "timeout": "45s"}, &w))
	assert.Equal(t, 45*time.Second, w.Timeout)

	require.NoError(t, decodeOptions(map[string]interface{}{"timeout": 30 * time.Second}, &w))
	assert.Equal(t, 30*time.Second, w.Timeout)
}

func TestNewFactory_Local(t *testing.T) {
	cfg := &config.Config{StorageType: "local", StorageLocalPath: t.TempDir()}

	f, err := NewFactory(cfg)
	require.NoError(t, err)
	assert.Equal(t, "local", f.GetDefaultName())
	assert.NotNil(t, f.GetDefault())

	p, err := f.Get("")
	require.NoError(t, err)
	assert.Equal(t, "local", p.Name())

	_, err = f.Get("minio")
	assert.Error(t, err)
}
