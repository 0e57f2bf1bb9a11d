package session

import (
	"context"
	"fmt"
)

// sessionImpl 實作 ISession，是單一請求範圍內的 session 視圖
// 資料整份載入、整份覆寫，登入狀態跟 flash 訊息都放在同一份 map 裡
type sessionImpl struct {
	id    string
	ctx   context.Context
	data  map[string]string // nil 表示尚未從儲存層載入
	store IStore
}

// NewSession 建立 session 視圖，資料要等呼叫 Load 之後才可用
func NewSession(ctx context.Context, id string, store IStore) ISession {
	if ctx == nil {
		ctx = context.Background()
	}
	return &sessionImpl{
		id:    id,
		ctx:   ctx,
		store: store,
	}
}

// Load 從儲存層載入 session 資料，重複呼叫只會載入一次
func (s *sessionImpl) Load() error {
	const op = "sessionImpl.Load"
	if s.data != nil {
		return nil
	}

	data, err := s.store.Load(s.ctx, s.id)
	if err != nil {
		return fmt.Errorf("%s: failed to load session: %w", op, err)
	}
	if data == nil {
		data = make(map[string]string)
	}
	s.data = data
	return nil
}

// Get 取得指定 key 的值，不存在或尚未載入時回傳空字串
func (s *sessionImpl) Get(key string) string {
	if s.data == nil {
		return ""
	}
	return s.data[key]
}

// Set 設定 key 的值，只改記憶體中的副本，要靠 Save 才會寫回儲存層
func (s *sessionImpl) Set(key string, value string) {
	if s.data == nil {
		s.data = make(map[string]string)
	}
	s.data[key] = value
}

// Delete 移除指定 key
func (s *sessionImpl) Delete(key string) {
	if s.data != nil {
		delete(s.data, key)
	}
}

// Clear 清空所有資料，登出用
func (s *sessionImpl) Clear() {
	s.data = make(map[string]string)
}

// Save 把目前的資料整份寫回儲存層；尚未載入過就沒有東西要寫
func (s *sessionImpl) Save() error {
	const op = "sessionImpl.Save"
	if s.data == nil {
		return nil
	}
	if err := s.store.Save(s.ctx, s.id, s.data); err != nil {
		return fmt.Errorf("%s: failed to save session: %w", op, err)
	}
	return nil
}
