//go:generate mockgen -package=storage -destination=mock.go -source=interfaces.go

package storage

import "context"

// IObjectStore 定義了物件儲存服務的統一介面
// 三種後端（S3、GCS、MinIO）都實作這個介面，差別只在公開 URL 的推導方式
type IObjectStore interface {
	// Put 將內容上傳到指定的 key 底下，同名物件會被覆寫
	// 回傳由 bucket 與 key 推導出的公開 URL
	Put(ctx context.Context, key, contentType string, content []byte) (string, error)
	// List 列出儲存桶中所有物件的公開 URL
	// 即使後端分頁也必須列舉完整清單，順序由後端決定
	List(ctx context.Context) ([]string, error)
	// Delete 刪除指定 key 的物件，物件不存在時由後端決定是否回報錯誤
	Delete(ctx context.Context, key string) error
	// PublicURL 推導指定 key 的公開 URL，跟 Put 回傳的值一致
	PublicURL(key string) string
}
