package models

import (
	"time"
)

// Image 代表相簿系統中的圖片紀錄
// 圖片的實際內容存放在物件儲存服務中，這裡只記錄中繼資料與公開 URL
// 同一個擁有者底下的標題不允許重複，由 (title, owner_id) 複合唯一索引保證
// OwnerID 在 moderator 模式下一律為 NULL，而 Postgres 的唯一索引預設把 NULL
// 視為彼此不同，所以這個索引不在 gorm tag 裡宣告，改由啟動時以
// NULLS NOT DISTINCT 建立，讓兩種模式都擋得住同標題的並發寫入
type Image struct {
	ID          uint      `gorm:"primaryKey;autoIncrement;<-:false"`
	Title       string    `gorm:"type:varchar(255);not null"`
	Description string    `gorm:"type:text;not null"`
	Tags        string    `gorm:"type:varchar(255)"`
	Url         string    `gorm:"type:varchar(512);not null;<-:create"`
	OwnerID     *uint     `gorm:"<-:create"`
	CreatedAt   time.Time `gorm:"<-:false"`

	Owner *User `gorm:"foreignKey:OwnerID"`
}
