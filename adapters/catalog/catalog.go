package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"pixelframe/models"
)

// Catalog 以 gorm 實作 ICatalog
type Catalog struct {
	db *gorm.DB
}

func NewCatalog(db *gorm.DB) *Catalog {
	return &Catalog{db: db}
}

func (c *Catalog) FindByTitle(ctx context.Context, title string, ownerID *uint) (*models.Image, error) {
	const op = "Catalog.FindByTitle"
	query := c.db.WithContext(ctx).Where("title = ?", title)
	if ownerID != nil {
		query = query.Where("owner_id = ?", *ownerID)
	}
	var image models.Image
	if result := query.First(&image); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("[%s] Fail to find image by title, err=%w", op, result.Error)
	}
	return &image, nil
}

func (c *Catalog) Insert(ctx context.Context, image *models.Image) error {
	const op = "Catalog.Insert"
	if result := c.db.WithContext(ctx).Create(image); result.Error != nil {
		return fmt.Errorf("[%s] Fail to create image, err=%w", op, result.Error)
	}
	return nil
}

func (c *Catalog) ListAll(ctx context.Context) ([]models.Image, error) {
	const op = "Catalog.ListAll"
	var images []models.Image
	if result := c.db.WithContext(ctx).Order("created_at").Find(&images); result.Error != nil {
		return nil, fmt.Errorf("[%s] Fail to list images, err=%w", op, result.Error)
	}
	return images, nil
}

func (c *Catalog) ListByOwner(ctx context.Context, ownerID uint) ([]models.Image, error) {
	const op = "Catalog.ListByOwner"
	var images []models.Image
	if result := c.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("created_at").Find(&images); result.Error != nil {
		return nil, fmt.Errorf("[%s] Fail to list images by owner, err=%w", op, result.Error)
	}
	return images, nil
}

// DeleteByURL 以完整 URL 為 key 刪除紀錄
// 刻意不用檔名結尾的模糊比對，避免不同前綴底下的同名檔案被一起刪掉
func (c *Catalog) DeleteByURL(ctx context.Context, url string, ownerID *uint) (int64, error) {
	const op = "Catalog.DeleteByURL"
	query := c.db.WithContext(ctx).Where("url = ?", url)
	if ownerID != nil {
		query = query.Where("owner_id = ?", *ownerID)
	}
	result := query.Delete(&models.Image{})
	if result.Error != nil {
		return 0, fmt.Errorf("[%s] Fail to delete image records, err=%w", op, result.Error)
	}
	return result.RowsAffected, nil
}

func (c *Catalog) CountSince(ctx context.Context, ownerID *uint, since time.Time) (int64, error) {
	const op = "Catalog.CountSince"
	query := c.db.WithContext(ctx).Model(&models.Image{}).Where("created_at > ?", since)
	if ownerID != nil {
		query = query.Where("owner_id = ?", *ownerID)
	}
	var count int64
	if result := query.Count(&count); result.Error != nil {
		return 0, fmt.Errorf("[%s] Fail to count images, err=%w", op, result.Error)
	}
	return count, nil
}
