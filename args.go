package main

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"pixelframe/api"
)

func ParseArgs() Args {
	// server config
	pflag.String("server-url", "0.0.0.0:8080", "")

	// auth config
	pflag.String("auth-mode", api.AuthModeSession, "")
	pflag.String("mod-password", "", "")

	// storage config
	pflag.String("storage-backend", api.StorageBackendGCS, "")
	pflag.String("gcp-bucket", "", "")
	pflag.String("s3-endpoint", "", "")
	pflag.String("s3-bucket", "", "")
	pflag.String("s3-public-base-url", "", "")
	pflag.String("s3-key", "", "")
	pflag.String("s3-secret", "", "")
	pflag.String("minio-endpoint", "", "")
	pflag.String("minio-bucket", "", "")
	pflag.String("minio-access-key", "", "")
	pflag.String("minio-secret-key", "", "")
	pflag.String("minio-public-base-url", "", "")
	pflag.Bool("minio-use-ssl", true, "")

	// db config
	pflag.String("db-user", "", "")
	pflag.String("db-password", "", "")
	pflag.String("db-host", "", "")
	pflag.Int("db-port", 5432, "")
	pflag.String("db-database", "", "")

	// redis config
	pflag.String("redis-addr", "", "")
	pflag.String("redis-password", "", "")
	pflag.Int("redis-db", 0, "")

	// upload config
	pflag.Int64("upload-max-bytes", 5<<20, "")
	pflag.Int64("upload-rate-limit-per-hour", 0, "")

	// reconcile config
	pflag.Duration("reconcile-interval", 0, "")

	// bind pflag to viper
	pflag.Parse()
	viper.BindPFlags(pflag.CommandLine)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	// initial arguments
	return Args{
		ServerURL: viper.GetString("server-url"),
		ServerConfig: api.ServerConfig{
			Auth: api.AuthConfig{
				Mode:              viper.GetString("auth-mode"),
				ModeratorPassword: viper.GetString("mod-password"),
			},
			Storage: api.StorageConfig{
				Backend: viper.GetString("storage-backend"),
				S3: api.S3Config{
					Endpoint:        viper.GetString("s3-endpoint"),
					Bucket:          viper.GetString("s3-bucket"),
					PublicBaseURL:   viper.GetString("s3-public-base-url"),
					AccessKeyID:     viper.GetString("s3-key"),
					SecretAccessKey: viper.GetString("s3-secret"),
				},
				GCS: api.GCSConfig{
					Bucket: viper.GetString("gcp-bucket"),
				},
				Minio: api.MinioConfig{
					Endpoint:      viper.GetString("minio-endpoint"),
					Bucket:        viper.GetString("minio-bucket"),
					AccessKey:     viper.GetString("minio-access-key"),
					SecretKey:     viper.GetString("minio-secret-key"),
					PublicBaseURL: viper.GetString("minio-public-base-url"),
					UseSSL:        viper.GetBool("minio-use-ssl"),
				},
			},
			DB: api.DBConfig{
				User:     viper.GetString("db-user"),
				Password: viper.GetString("db-password"),
				Host:     viper.GetString("db-host"),
				Port:     viper.GetInt("db-port"),
				Database: viper.GetString("db-database"),
			},
			Redis: api.RedisConfig{
				Addr:     viper.GetString("redis-addr"),
				Password: viper.GetString("redis-password"),
				DB:       viper.GetInt("redis-db"),
			},
			Upload: api.UploadConfig{
				MaxBytes:         viper.GetInt64("upload-max-bytes"),
				RateLimitPerHour: viper.GetInt64("upload-rate-limit-per-hour"),
			},
			Reconcile: api.ReconcileConfig{
				Interval: viper.GetDuration("reconcile-interval"),
			},
		},
	}
}

type Args struct {
	ServerURL    string
	ServerConfig api.ServerConfig
}

func (args Args) Validate() bool {
	if args.ServerURL == "" || args.ServerConfig.DB.Host == "" || args.ServerConfig.DB.Database == "" {
		return false
	}
	switch args.ServerConfig.Auth.Mode {
	case api.AuthModeSession:
	case api.AuthModeModerator:
		if args.ServerConfig.Auth.ModeratorPassword == "" {
			return false
		}
	default:
		return false
	}
	switch args.ServerConfig.Storage.Backend {
	case api.StorageBackendS3:
		s3 := args.ServerConfig.Storage.S3
		return s3.Endpoint != "" && s3.Bucket != "" && s3.PublicBaseURL != ""
	case api.StorageBackendGCS:
		return args.ServerConfig.Storage.GCS.Bucket != ""
	case api.StorageBackendMinio:
		minio := args.ServerConfig.Storage.Minio
		return minio.Endpoint != "" && minio.Bucket != "" && minio.PublicBaseURL != ""
	default:
		return false
	}
}
