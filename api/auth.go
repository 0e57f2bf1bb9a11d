package api

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"pixelframe/adapters/session"
)

const (
	sessionKeyUserID   = "user_id"
	sessionKeyUsername = "username"
)

// Identity 代表通過授權檢查的請求者
// session 模式下帶有使用者 ID；moderator 模式下只代表「持有共用密碼」
type Identity struct {
	UserID   *uint
	Username string
}

// IAuthPolicy 決定 upload 與 delete 操作的授權方式
// 授權失敗時必須在任何儲存或目錄異動發生之前回報錯誤
type IAuthPolicy interface {
	Authorize(c *gin.Context) (*Identity, error)
}

// SessionPolicy 要求請求帶有已登入的 session
type SessionPolicy struct{}

func (SessionPolicy) Authorize(c *gin.Context) (*Identity, error) {
	const op = "SessionPolicy.Authorize"
	sess, err := session.GetSession(c)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to get session, err=%w", op, err)
	}
	raw := sess.Get(sessionKeyUserID)
	if raw == "" {
		return nil, ErrLoginRequired
	}
	id64, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		// session 裡的識別資料壞掉就視同未登入
		return nil, ErrLoginRequired
	}
	id := uint(id64)
	return &Identity{UserID: &id, Username: sess.Get(sessionKeyUsername)}, nil
}

// ModeratorPolicy 以表單中的共用密碼授權
// 上傳與刪除各用一個 policy 實例，差別只在表單欄位名稱
type ModeratorPolicy struct {
	Password string
	Field    string
}

func (p ModeratorPolicy) Authorize(c *gin.Context) (*Identity, error) {
	supplied := c.PostForm(p.Field)
	if p.Password == "" || supplied != p.Password {
		return nil, ErrInvalidModeratorSecret
	}
	// moderator 模式下圖片沒有擁有者
	return &Identity{}, nil
}

// hashPassword 以 bcrypt 產生密碼雜湊
func hashPassword(password string) (string, error) {
	const op = "hashPassword"
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("[%s] Fail to hash password, err=%w", op, err)
	}
	return string(hash), nil
}

// verifyPassword 比對密碼與儲存的雜湊
func verifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
