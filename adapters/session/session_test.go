package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestNewSession(t *testing.T) {
	tests := []struct {
		name    string
		ctx     context.Context
		id      string
		store   IStore
		wantNil bool
	}{
		{
			name:    "valid parameters",
			ctx:     context.Background(),
			id:      "test-id",
			store:   &MockIStore{},
			wantNil: false,
		},
		{
			name:    "nil context",
			ctx:     nil,
			id:      "test-id",
			store:   &MockIStore{},
			wantNil: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := NewSession(tt.ctx, tt.id, tt.store)
			if tt.wantNil {
				assert.Nil(t, session)
			} else {
				assert.NotNil(t, session)
			}
		})
	}
}

func TestSession_Load(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name      string
		mockSetup func(*MockIStore)
		wantErr   bool
		errMsg    string
	}{
		{
			name: "successful load",
			mockSetup: func(mockStore *MockIStore) {
				mockStore.EXPECT().
					Load(gomock.Any(), "test-id").
					Return(map[string]string{"key": "value"}, nil)
			},
			wantErr: false,
		},
		{
			name: "load error",
			mockSetup: func(mockStore *MockIStore) {
				mockStore.EXPECT().
					Load(gomock.Any(), "test-id").
					Return(nil, errors.New("load error"))
			},
			wantErr: true,
			errMsg:  "load error",
		},
		{
			name: "already loaded",
			mockSetup: func(mockStore *MockIStore) {
				// 不應該呼叫 Load
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockStore := NewMockIStore(ctrl)
			tt.mockSetup(mockStore)

			s := &sessionImpl{
				id:    "test-id",
				ctx:   context.Background(),
				store: mockStore,
			}

			if tt.name == "already loaded" {
				s.data = map[string]string{"existing": "data"}
			}

			err := s.Load()

			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSession_Save(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name      string
		data      map[string]string
		mockSetup func(*MockIStore)
		wantErr   bool
	}{
		{
			name: "successful save",
			data: map[string]string{"user_id": "42"},
			mockSetup: func(mockStore *MockIStore) {
				mockStore.EXPECT().
					Save(gomock.Any(), "test-id", map[string]string{"user_id": "42"}).
					Return(nil)
			},
			wantErr: false,
		},
		{
			name: "save error",
			data: map[string]string{"user_id": "42"},
			mockSetup: func(mockStore *MockIStore) {
				mockStore.EXPECT().
					Save(gomock.Any(), "test-id", gomock.Any()).
					Return(errors.New("save error"))
			},
			wantErr: true,
		},
		{
			name: "nil data skips store",
			data: nil,
			mockSetup: func(mockStore *MockIStore) {
				// 沒有載入過的 session 不應該寫入儲存層
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockStore := NewMockIStore(ctrl)
			tt.mockSetup(mockStore)

			s := &sessionImpl{
				id:    "test-id",
				ctx:   context.Background(),
				store: mockStore,
				data:  tt.data,
			}

			err := s.Save()

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSession_GetSetDeleteClear(t *testing.T) {
	s := &sessionImpl{
		id:    "test-id",
		ctx:   context.Background(),
		store: &MockIStore{},
	}

	// 未載入時 Get 回傳空字串
	assert.Equal(t, "", s.Get("user_id"))

	s.Set("user_id", "42")
	assert.Equal(t, "42", s.Get("user_id"))

	s.Delete("user_id")
	assert.Equal(t, "", s.Get("user_id"))

	s.Set("a", "1")
	s.Set("b", "2")
	s.Clear()
	assert.Equal(t, "", s.Get("a"))
	assert.Equal(t, "", s.Get("b"))
}
