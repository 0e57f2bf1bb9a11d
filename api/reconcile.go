package api

import (
	"context"
	"log/slog"

	"github.com/samber/lo"

	"pixelframe/models"
)

// reconcileOnce 比對物件儲存與目錄的內容，把兩邊對不上的項目記錄下來
// List 回傳的是 blob 的公開 URL，跟目錄中存的 Url 欄位是同一種值，可以直接比對
// 只觀測不修復：blob 可能正處於「已上傳、目錄還沒寫」的空窗期，自動刪除會誤殺
func (impl *ServerImpl) reconcileOnce(ctx context.Context, logger *slog.Logger) {
	blobURLs, err := impl.objectStore.List(ctx)
	if err != nil {
		logger.Error("Fail to list object store", slog.Any("error", err))
		return
	}
	images, err := impl.catalog.ListAll(ctx)
	if err != nil {
		logger.Error("Fail to list catalog", slog.Any("error", err))
		return
	}

	catalogURLs := lo.Map(images, func(image models.Image, _ int) string {
		return image.Url
	})

	// blob 存在但目錄沒有紀錄:上傳在 Insert 之前失敗留下的
	orphanBlobs, orphanRecords := lo.Difference(blobURLs, catalogURLs)
	for _, url := range orphanBlobs {
		logger.Warn("Orphaned blob without catalog record", slog.String("url", url))
	}
	// 目錄有紀錄但 blob 不存在:刪除在目錄清理之前失敗留下的
	for _, url := range orphanRecords {
		logger.Warn("Orphaned catalog record without blob", slog.String("url", url))
	}
	logger.Info("Reconciliation sweep finished",
		slog.Int("blobs", len(blobURLs)),
		slog.Int("records", len(catalogURLs)),
		slog.Int("orphanBlobs", len(orphanBlobs)),
		slog.Int("orphanRecords", len(orphanRecords)),
	)
}
