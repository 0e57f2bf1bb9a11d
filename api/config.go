package api

import "time"

const (
	// AuthModeSession 以登入後的 session 授權上傳與刪除，圖片歸屬於使用者
	AuthModeSession = "session"
	// AuthModeModerator 以共用的管理密碼授權上傳與刪除，圖片沒有擁有者
	AuthModeModerator = "moderator"
)

const (
	StorageBackendS3    = "s3"
	StorageBackendGCS   = "gcs"
	StorageBackendMinio = "minio"
)

type ServerConfig struct {
	Auth      AuthConfig
	Storage   StorageConfig
	DB        DBConfig
	Redis     RedisConfig
	Upload    UploadConfig
	Reconcile ReconcileConfig
}

type AuthConfig struct {
	// Mode 是 AuthModeSession 或 AuthModeModerator，啟動時擇一，不能混用
	Mode string
	// ModeratorPassword 只在 AuthModeModerator 模式下使用
	ModeratorPassword string
}

type StorageConfig struct {
	// Backend 是 StorageBackendS3、StorageBackendGCS 或 StorageBackendMinio
	Backend string
	S3      S3Config
	GCS     GCSConfig
	Minio   MinioConfig
}

type S3Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	Bucket          string
	PublicBaseURL   string
}

// GCSConfig 的認證走 GOOGLE_APPLICATION_CREDENTIALS，SDK 會自行讀取
type GCSConfig struct {
	Bucket string
}

type MinioConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	PublicBaseURL string
	UseSSL        bool
}

type DBConfig struct {
	User     string
	Password string
	Host     string
	Port     int
	Database string
}

// RedisConfig 是選用的，Addr 留空時 session 存在行程記憶體中
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type UploadConfig struct {
	// MaxBytes 是單張圖片的大小上限
	MaxBytes int64
	// RateLimitPerHour 是每個使用者每小時的上傳上限，0 表示不限制
	RateLimitPerHour int64
}

type ReconcileConfig struct {
	// Interval 是孤兒掃描的週期，0 表示不啟動掃描
	Interval time.Duration
}
