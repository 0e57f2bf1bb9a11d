//go:generate mockgen -package=catalog -destination=mock.go -source=interfaces.go

package catalog

import (
	"context"
	"time"

	"pixelframe/models"
)

// ICatalog 定義了圖片目錄的存取介面
// 目錄只記錄中繼資料，圖片內容本身存放在物件儲存服務中
type ICatalog interface {
	// FindByTitle 以標題精確比對查詢圖片，ownerID 不為 nil 時限定擁有者
	// 查無資料時回傳 (nil, nil)
	FindByTitle(ctx context.Context, title string, ownerID *uint) (*models.Image, error)
	// Insert 新增一筆圖片紀錄，CreatedAt 由資料庫填入
	// 標題在相同範圍內重複時回傳可被 gorm.ErrDuplicatedKey 判斷的錯誤
	Insert(ctx context.Context, image *models.Image) error
	// ListAll 列出所有圖片紀錄
	ListAll(ctx context.Context) ([]models.Image, error)
	// ListByOwner 列出指定擁有者的圖片紀錄
	ListByOwner(ctx context.Context, ownerID uint) ([]models.Image, error)
	// DeleteByURL 刪除 URL 完全相等的圖片紀錄，回傳刪除的筆數
	DeleteByURL(ctx context.Context, url string, ownerID *uint) (int64, error)
	// CountSince 統計指定時間之後新增的圖片筆數，用於上傳頻率限制
	CountSince(ctx context.Context, ownerID *uint, since time.Time) (int64, error)
}

// IUserStore 定義了使用者帳號的存取介面
type IUserStore interface {
	// FindByUsername 以使用者名稱查詢帳號，查無資料時回傳 (nil, nil)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	// Create 建立新帳號，名稱重複時回傳可被 gorm.ErrDuplicatedKey 判斷的錯誤
	Create(ctx context.Context, user *models.User) error
}
