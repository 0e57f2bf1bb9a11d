package api

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	awsCfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	gcs "cloud.google.com/go/storage"
	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/minio/minio-go/v7"
	minioCredentials "github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"pixelframe/adapters/catalog"
	redisAdapter "pixelframe/adapters/redis"
	"pixelframe/adapters/session"
	"pixelframe/adapters/storage"
	"pixelframe/models"
)

//go:embed templates/*.html
var templatesFS embed.FS

type ServerImpl struct {
	objectStore  storage.IObjectStore
	catalog      catalog.ICatalog
	users        catalog.IUserStore
	sessionStore session.IStore
	uploadAuth   IAuthPolicy
	deleteAuth   IAuthPolicy
	htmlChecker  *bluemonday.Policy
	wg           sync.WaitGroup
	cancelFunc   context.CancelFunc

	config ServerConfig
}

func NewServer(config ServerConfig) (*ServerImpl, error) {
	const op = "NewServer"

	// 初始化物件儲存後端
	objectStore, err := newObjectStore(config.Storage)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to initial object store, err=%w", op, err)
	}

	// 初始化資料庫連線
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable", config.DB.User, config.DB.Password, config.DB.Host, config.DB.Port, config.DB.Database)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to connect to database, err=%w", op, err)
	}
	// 建立資料表與唯一索引
	// 重複的使用者名稱和圖片標題最終靠這些約束擋下，先查再寫只是為了友善的錯誤訊息
	if err := db.AutoMigrate(&models.User{}, &models.Image{}); err != nil {
		return nil, fmt.Errorf("[%s] Fail to migrate database schema, err=%w", op, err)
	}
	// moderator 模式的圖片沒有擁有者，owner_id 一律是 NULL
	// 索引要宣告 NULLS NOT DISTINCT，NULL 擁有者之間的同標題寫入才會互斥（需要 Postgres 15）
	if err := db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_images_title_owner ON images (title, owner_id) NULLS NOT DISTINCT",
	).Error; err != nil {
		return nil, fmt.Errorf("[%s] Fail to create unique index on images, err=%w", op, err)
	}

	// 初始化 session 儲存
	// 沒有設定 Redis 時 session 放在行程記憶體，符合單機部署的預設
	var sessionStore session.IStore
	if config.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     config.Redis.Addr,
			Password: config.Redis.Password,
			DB:       config.Redis.DB,
		})
		sessionStore = redisAdapter.NewStore(redisClient, redisAdapter.WithStorePrefix("pixelframe:sess:"))
	} else {
		sessionStore = session.NewMemoryStore()
	}

	// 選擇授權 policy，兩種模式啟動時擇一
	var uploadAuth, deleteAuth IAuthPolicy
	switch config.Auth.Mode {
	case AuthModeSession:
		uploadAuth, deleteAuth = SessionPolicy{}, SessionPolicy{}
	case AuthModeModerator:
		if config.Auth.ModeratorPassword == "" {
			return nil, fmt.Errorf("[%s] Moderator mode requires a moderator password", op)
		}
		uploadAuth = ModeratorPolicy{Password: config.Auth.ModeratorPassword, Field: "upload_password"}
		deleteAuth = ModeratorPolicy{Password: config.Auth.ModeratorPassword, Field: "remove_password"}
	default:
		return nil, fmt.Errorf("[%s] Unknown auth mode: %s", op, config.Auth.Mode)
	}

	return &ServerImpl{
		objectStore:  objectStore,
		catalog:      catalog.NewCatalog(db),
		users:        catalog.NewUserStore(db),
		sessionStore: sessionStore,
		uploadAuth:   uploadAuth,
		deleteAuth:   deleteAuth,
		htmlChecker:  bluemonday.UGCPolicy(),
		config:       config,
	}, nil
}

// newObjectStore 依設定建立物件儲存後端
func newObjectStore(config StorageConfig) (storage.IObjectStore, error) {
	const op = "newObjectStore"
	switch config.Backend {
	case StorageBackendS3:
		s3Cfg, err := awsCfg.LoadDefaultConfig(
			context.Background(),
			awsCfg.WithBaseEndpoint(config.S3.Endpoint),
			awsCfg.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(config.S3.AccessKeyID, config.S3.SecretAccessKey, "")),
			awsCfg.WithRegion("auto"),
		)
		if err != nil {
			return nil, fmt.Errorf("[%s] Fail to load AWS config, err=%w", op, err)
		}
		return storage.NewS3Operator(s3.NewFromConfig(s3Cfg), config.S3.Bucket, config.S3.PublicBaseURL)
	case StorageBackendGCS:
		// 認證由 SDK 從 GOOGLE_APPLICATION_CREDENTIALS 讀取
		client, err := gcs.NewClient(context.Background())
		if err != nil {
			return nil, fmt.Errorf("[%s] Fail to create GCS client, err=%w", op, err)
		}
		return storage.NewGCSOperator(client, config.GCS.Bucket), nil
	case StorageBackendMinio:
		client, err := minio.New(config.Minio.Endpoint, &minio.Options{
			Creds:  minioCredentials.NewStaticV4(config.Minio.AccessKey, config.Minio.SecretKey, ""),
			Secure: config.Minio.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("[%s] Fail to create MinIO client, err=%w", op, err)
		}
		return storage.NewMinioOperator(client, config.Minio.Bucket, config.Minio.PublicBaseURL)
	default:
		return nil, fmt.Errorf("[%s] Unknown storage backend: %s", op, config.Backend)
	}
}

// Start 啟動孤兒掃描 worker
// 上傳與刪除都是先寫物件儲存再寫目錄的兩段式操作，中間失敗會留下孤兒，
// worker 週期性比對兩邊並寫進日誌，但不會自動修復
func (impl *ServerImpl) Start() {
	if impl.config.Reconcile.Interval <= 0 {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	impl.cancelFunc = cancel
	slog.Info("Start orphan reconciliation worker", slog.Duration("interval", impl.config.Reconcile.Interval))
	impl.wg.Add(1)
	go func() {
		logger := slog.Default().With(slog.String("caller", "Reconcile"))
		defer impl.wg.Done()
		defer slog.Info("Orphan reconciliation worker stopped")
		ticker := time.NewTicker(impl.config.Reconcile.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				impl.reconcileOnce(ctx, logger)
			}
		}
	}()
}

func (impl *ServerImpl) Close() {
	// 關閉worker
	if impl.cancelFunc != nil {
		impl.cancelFunc()
	}
	impl.wg.Wait()
}

// RegisterHandlers 把所有路由掛上 router
func RegisterHandlers(router *gin.Engine, impl *ServerImpl) {
	router.SetHTMLTemplate(template.Must(template.ParseFS(templatesFS, "templates/*.html")))
	router.Use(session.GinMiddleware(impl.sessionStore))

	router.GET("/", impl.GetLogin)
	router.POST("/", impl.PostLogin)
	router.GET("/signup", impl.GetSignup)
	router.POST("/signup", impl.PostSignup)
	router.GET("/gallery", impl.GetGallery)
	router.GET("/upload", impl.GetUpload)
	router.POST("/upload", impl.PostUpload)
	router.POST("/logout", impl.PostLogout)
	router.POST("/remove_image/:filename", impl.PostRemoveImage)
}

// Render login form
// (GET /)
func (impl *ServerImpl) GetLogin(c *gin.Context) {
	impl.render(c, "login.html", nil)
}

// Authenticate and establish a session
// (POST /)
func (impl *ServerImpl) PostLogin(c *gin.Context) {
	const op = "PostLogin"
	username := c.PostForm("username")
	password := c.PostForm("password")

	user, err := impl.users.FindByUsername(c.Request.Context(), username)
	if err != nil {
		slog.Error("Fail to find user", slog.String("op", op), slog.Any("error", err))
		impl.flashError(c, ErrCatalog)
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	// 帳號不存在和密碼錯誤回同一個訊息，不洩漏哪個環節錯了
	if user == nil || !verifyPassword(user.PasswordHash, password) {
		impl.flashError(c, ErrInvalidCredentials)
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	sess, err := session.GetSession(c)
	if err != nil {
		slog.Error("Fail to get session", slog.String("op", op), slog.Any("error", err))
		impl.flashError(c, ErrCatalog)
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	sess.Set(sessionKeyUserID, strconv.FormatUint(uint64(user.ID), 10))
	sess.Set(sessionKeyUsername, user.Username)
	if err := sess.Save(); err != nil {
		slog.Error("Fail to save session", slog.String("op", op), slog.Any("error", err))
		impl.flashError(c, ErrCatalog)
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	c.Redirect(http.StatusSeeOther, "/gallery")
}

// Render signup form
// (GET /signup)
func (impl *ServerImpl) GetSignup(c *gin.Context) {
	impl.render(c, "signup.html", nil)
}

// Create a new account
// (POST /signup)
func (impl *ServerImpl) PostSignup(c *gin.Context) {
	const op = "PostSignup"
	username := c.PostForm("username")
	password := c.PostForm("password")
	if username == "" || password == "" {
		impl.flashError(c, ErrInvalidCredentials)
		c.Redirect(http.StatusSeeOther, "/signup")
		return
	}

	// 先查一次給友善的錯誤訊息；同名同時註冊的競態由唯一索引擋下
	existing, err := impl.users.FindByUsername(c.Request.Context(), username)
	if err != nil {
		slog.Error("Fail to find user", slog.String("op", op), slog.Any("error", err))
		impl.flashError(c, ErrCatalog)
		c.Redirect(http.StatusSeeOther, "/signup")
		return
	}
	if existing != nil {
		impl.flashError(c, ErrUsernameTaken)
		c.Redirect(http.StatusSeeOther, "/signup")
		return
	}

	hash, err := hashPassword(password)
	if err != nil {
		slog.Error("Fail to hash password", slog.String("op", op), slog.Any("error", err))
		impl.flashError(c, ErrCatalog)
		c.Redirect(http.StatusSeeOther, "/signup")
		return
	}
	user := models.User{Username: username, PasswordHash: hash}
	if err := impl.users.Create(c.Request.Context(), &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			impl.flashError(c, ErrUsernameTaken)
		} else {
			slog.Error("Fail to create user", slog.String("op", op), slog.Any("error", err))
			impl.flashError(c, ErrCatalog)
		}
		c.Redirect(http.StatusSeeOther, "/signup")
		return
	}

	impl.flash(c, "success", "Signup successful!")
	c.Redirect(http.StatusSeeOther, "/")
}

// List images
// (GET /gallery)
func (impl *ServerImpl) GetGallery(c *gin.Context) {
	const op = "GetGallery"
	ctx := c.Request.Context()

	// 兩種模式都以目錄為準，物件儲存的即時列表只給孤兒掃描用
	var images []models.Image
	var err error
	if impl.config.Auth.Mode == AuthModeSession {
		identity, authErr := SessionPolicy{}.Authorize(c)
		if authErr != nil {
			impl.flashError(c, ErrLoginRequired)
			c.Redirect(http.StatusSeeOther, "/")
			return
		}
		images, err = impl.catalog.ListByOwner(ctx, *identity.UserID)
	} else {
		images, err = impl.catalog.ListAll(ctx)
	}
	if err != nil {
		slog.Error("Fail to list images", slog.String("op", op), slog.Any("error", err))
		impl.flashError(c, ErrCatalog)
	}

	urls := lo.Map(images, func(image models.Image, _ int) string {
		return image.Url
	})
	impl.render(c, "gallery.html", gin.H{"Images": urls})
}

// Render upload form
// (GET /upload)
func (impl *ServerImpl) GetUpload(c *gin.Context) {
	impl.render(c, "upload.html", nil)
}

// Upload an image
// (POST /upload)
func (impl *ServerImpl) PostUpload(c *gin.Context) {
	const op = "PostUpload"
	ctx := c.Request.Context()

	// 授權失敗時不能有任何副作用
	identity, err := impl.uploadAuth.Authorize(c)
	if err != nil {
		impl.flashError(c, err)
		if errors.Is(err, ErrLoginRequired) {
			c.Redirect(http.StatusSeeOther, "/")
		} else {
			c.Redirect(http.StatusSeeOther, "/upload")
		}
		return
	}

	// 檢查是否達到上傳限制
	if impl.config.Upload.RateLimitPerHour > 0 {
		uploadedCount, err := impl.catalog.CountSince(ctx, identity.UserID, time.Now().Add(-1*time.Hour))
		if err != nil {
			slog.Error("Fail to count uploaded images", slog.String("op", op), slog.Any("error", err))
			impl.flashError(c, ErrCatalog)
			c.Redirect(http.StatusSeeOther, "/upload")
			return
		}
		if uploadedCount >= impl.config.Upload.RateLimitPerHour {
			impl.flashError(c, ErrRateLimited)
			c.Redirect(http.StatusSeeOther, "/upload")
			return
		}
	}

	// 檢查檔案是否存在、副檔名是否允許
	fileHeader, err := c.FormFile("file")
	if err != nil {
		impl.flashError(c, ErrNoFile)
		c.Redirect(http.StatusSeeOther, "/upload")
		return
	}
	if fileHeader.Filename == "" || !storage.AllowedExtension(fileHeader.Filename) {
		impl.flashError(c, ErrUnsupportedType)
		c.Redirect(http.StatusSeeOther, "/upload")
		return
	}
	// 清理後的檔名才是後續所有步驟使用的檔名
	filename := storage.SanitizeFilename(fileHeader.Filename)
	if filename == "" {
		impl.flashError(c, ErrUnsupportedType)
		c.Redirect(http.StatusSeeOther, "/upload")
		return
	}

	// 限制圖片
	// 	1. 不超過設定的大小上限
	// 	2. MIME類型為不包含腳本的圖片檔案
	file, err := fileHeader.Open()
	if err != nil {
		slog.Error("Fail to open uploaded file", slog.String("op", op), slog.Any("error", err))
		impl.flashError(c, ErrStorage)
		c.Redirect(http.StatusSeeOther, "/upload")
		return
	}
	defer file.Close()
	body := storage.NewMaxSizeReader(file, impl.config.Upload.MaxBytes)
	content, err := io.ReadAll(body)
	if errors.As(err, &storage.ErrReachLimitType) {
		impl.flash(c, "error", err.Error())
		c.Redirect(http.StatusSeeOther, "/upload")
		return
	}
	if err != nil {
		slog.Error("Fail to read uploaded file", slog.String("op", op), slog.Any("error", err))
		impl.flashError(c, ErrStorage)
		c.Redirect(http.StatusSeeOther, "/upload")
		return
	}
	mimeType := http.DetectContentType(content)
	if secure, _ := storage.CheckSecureImageAndGetExtension(mimeType); !secure {
		impl.flashError(c, ErrUnsupportedType)
		c.Redirect(http.StatusSeeOther, "/upload")
		return
	}

	// 重複檢查，命中就在寫入物件儲存之前結束
	// 預設標題只補「沒有送 title 欄位」的情況，送了空字串就照存空字串
	title := c.DefaultPostForm("title", "Untitled")
	existing, err := impl.catalog.FindByTitle(ctx, title, identity.UserID)
	if err != nil {
		slog.Error("Fail to check duplicate title", slog.String("op", op), slog.Any("error", err))
		impl.flashError(c, ErrCatalog)
		c.Redirect(http.StatusSeeOther, "/upload")
		return
	}
	if existing != nil {
		impl.flashError(c, ErrDuplicateImage)
		c.Redirect(http.StatusSeeOther, "/upload")
		return
	}

	// 寫入物件儲存
	key := objectKey(filename, identity.UserID)
	url, err := impl.objectStore.Put(ctx, key, mimeType, content)
	if err != nil {
		slog.Error("Fail to upload image", slog.String("op", op), slog.Any("error", err))
		impl.flashError(c, ErrStorage)
		c.Redirect(http.StatusSeeOther, "/upload")
		return
	}

	// 在目錄記錄圖片
	// 這一步失敗表示物件儲存裡已經多了一個孤兒 blob，掃描器會把它找出來
	image := models.Image{
		Title:       title,
		Description: impl.htmlChecker.Sanitize(c.PostForm("description")),
		Tags:        c.PostForm("tags"),
		Url:         url,
		OwnerID:     identity.UserID,
	}
	if err := impl.catalog.Insert(ctx, &image); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			impl.flashError(c, ErrDuplicateImage)
		} else {
			slog.Error("Fail to create image record", slog.String("op", op), slog.Any("error", err))
			impl.flashError(c, ErrCatalog)
		}
		slog.Warn("Orphaned blob left in object store", slog.String("op", op), slog.String("url", url))
		c.Redirect(http.StatusSeeOther, "/upload")
		return
	}

	c.Redirect(http.StatusSeeOther, "/gallery")
}

// Clear the session
// (POST /logout)
func (impl *ServerImpl) PostLogout(c *gin.Context) {
	const op = "PostLogout"
	sess, err := session.GetSession(c)
	if err == nil {
		sess.Clear()
		if err := sess.Save(); err != nil {
			slog.Warn("Fail to save cleared session", slog.String("op", op), slog.Any("error", err))
		}
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// Remove an image
// (POST /remove_image/:filename)
func (impl *ServerImpl) PostRemoveImage(c *gin.Context) {
	const op = "PostRemoveImage"
	ctx := c.Request.Context()

	identity, err := impl.deleteAuth.Authorize(c)
	if err != nil {
		impl.flashError(c, err)
		if errors.Is(err, ErrLoginRequired) {
			c.Redirect(http.StatusSeeOther, "/")
		} else {
			c.Redirect(http.StatusSeeOther, "/gallery")
		}
		return
	}

	// 跟上傳用同一套清理規則，才能導出同一個 key
	filename := storage.SanitizeFilename(c.Param("filename"))
	if filename == "" {
		impl.flashError(c, ErrStorage)
		c.Redirect(http.StatusSeeOther, "/gallery")
		return
	}
	key := objectKey(filename, identity.UserID)

	// 先刪 blob，失敗就直接結束，目錄保持原狀
	if err := impl.objectStore.Delete(ctx, key); err != nil {
		slog.Error("Fail to delete image from object store", slog.String("op", op), slog.Any("error", err))
		impl.flashError(c, ErrStorage)
		c.Redirect(http.StatusSeeOther, "/gallery")
		return
	}

	// blob 已經不在了，目錄清理失敗會留下孤兒紀錄，交給掃描器回報
	url := impl.objectStore.PublicURL(key)
	if rows, err := impl.catalog.DeleteByURL(ctx, url, identity.UserID); err != nil {
		slog.Error("Blob removed but catalog cleanup failed", slog.String("op", op), slog.String("url", url), slog.Any("error", err))
		impl.flashError(c, ErrCatalog)
	} else if rows == 0 {
		slog.Warn("No catalog record matched removed blob", slog.String("op", op), slog.String("url", url))
	}
	c.Redirect(http.StatusSeeOther, "/gallery")
}

// objectKey 推導圖片在物件儲存中的 key
// moderator 模式直接用檔名；session 模式加上使用者前綴，讓不同使用者的同名檔案互不覆寫
func objectKey(filename string, ownerID *uint) string {
	if ownerID == nil {
		return filename
	}
	return fmt.Sprintf("user_%d/%s", *ownerID, filename)
}

// render 渲染頁面，並把 session 中累積的 flash 訊息一併帶出
func (impl *ServerImpl) render(c *gin.Context, name string, data gin.H) {
	const op = "render"
	if data == nil {
		data = gin.H{}
	}
	if sess, err := session.GetSession(c); err == nil {
		flashes := session.PopFlashes(sess)
		if len(flashes) > 0 {
			if err := sess.Save(); err != nil {
				slog.Warn("Fail to save session after popping flashes", slog.String("op", op), slog.Any("error", err))
			}
		}
		data["Flashes"] = flashes
	}
	c.HTML(http.StatusOK, name, data)
}

func (impl *ServerImpl) flashError(c *gin.Context, err error) {
	impl.flash(c, "error", flashMessage(err))
}

func (impl *ServerImpl) flash(c *gin.Context, category, message string) {
	const op = "flash"
	sess, err := session.GetSession(c)
	if err != nil {
		slog.Warn("Fail to get session for flash", slog.String("op", op), slog.Any("error", err))
		return
	}
	if err := session.AddFlash(sess, category, message); err != nil {
		slog.Warn("Fail to add flash", slog.String("op", op), slog.Any("error", err))
		return
	}
	if err := sess.Save(); err != nil {
		slog.Warn("Fail to save session", slog.String("op", op), slog.Any("error", err))
	}
}
