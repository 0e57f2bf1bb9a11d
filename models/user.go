package models

import (
	"time"
)

// User 代表相簿系統中的使用者
// 包含基本的帳號資訊，如使用者名稱與密碼雜湊
type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement;<-:false"`
	Username     string    `gorm:"type:varchar(100);uniqueIndex;not null;<-:create"`
	PasswordHash string    `gorm:"type:varchar(255);not null;<-:create"`
	CreatedAt    time.Time `gorm:"<-:false"`
}
