package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"pixelframe/api"
)

// ParseArgs 使用全域的 flag set，整個測試行程只能呼叫一次
// 部署環境只吃環境變數，這裡驗證既有的變數名稱都對得到設定欄位
func TestParseArgsEnvMapping(t *testing.T) {
	oldArgs := os.Args
	os.Args = oldArgs[:1]
	defer func() { os.Args = oldArgs }()

	t.Setenv("AUTH_MODE", api.AuthModeModerator)
	t.Setenv("MOD_PASSWORD", "hunter2")
	t.Setenv("STORAGE_BACKEND", api.StorageBackendS3)
	t.Setenv("S3_ENDPOINT", "https://s3.example.com")
	t.Setenv("S3_BUCKET", "photos")
	t.Setenv("S3_PUBLIC_BASE_URL", "https://cdn.example.com")
	t.Setenv("S3_KEY", "AKIAEXAMPLE")
	t.Setenv("S3_SECRET", "wJalrXUtnFEMIK7MDENG")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_DATABASE", "pixelframe")

	args := ParseArgs()

	assert.Equal(t, api.AuthModeModerator, args.ServerConfig.Auth.Mode)
	assert.Equal(t, "hunter2", args.ServerConfig.Auth.ModeratorPassword)
	assert.Equal(t, api.StorageBackendS3, args.ServerConfig.Storage.Backend)
	assert.Equal(t, "https://s3.example.com", args.ServerConfig.Storage.S3.Endpoint)
	assert.Equal(t, "photos", args.ServerConfig.Storage.S3.Bucket)
	assert.Equal(t, "https://cdn.example.com", args.ServerConfig.Storage.S3.PublicBaseURL)
	assert.Equal(t, "AKIAEXAMPLE", args.ServerConfig.Storage.S3.AccessKeyID)
	assert.Equal(t, "wJalrXUtnFEMIK7MDENG", args.ServerConfig.Storage.S3.SecretAccessKey)
	assert.Equal(t, "db.internal", args.ServerConfig.DB.Host)
	assert.Equal(t, "pixelframe", args.ServerConfig.DB.Database)
	assert.True(t, args.Validate())
}
