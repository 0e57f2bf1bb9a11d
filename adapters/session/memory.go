package session

import (
	"context"
	"maps"
	"sync"
)

// MemoryStore 實作 IStore 介面，把 session 資料放在行程記憶體中
// 單一行程部署的預設選擇；多行程部署請改用 redis 的 Store
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]map[string]string
}

// NewMemoryStore 建立一個新的 MemoryStore 實例
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]map[string]string),
	}
}

// Load 取出指定 session 的資料副本
func (s *MemoryStore) Load(_ context.Context, name string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.sessions[name]
	if !ok {
		return map[string]string{}, nil
	}
	// 回傳副本，避免呼叫端跟儲存層共用同一個 map
	return maps.Clone(data), nil
}

// Save 以整份覆寫的方式保存 session 資料
func (s *MemoryStore) Save(_ context.Context, name string, data map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[name] = maps.Clone(data)
	return nil
}
