package catalog

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"pixelframe/models"
)

// UserStore 以 gorm 實作 IUserStore
type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "UserStore.FindByUsername"
	var user models.User
	if result := s.db.WithContext(ctx).Where("username = ?", username).First(&user); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("[%s] Fail to find user by username, err=%w", op, result.Error)
	}
	return &user, nil
}

func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	const op = "UserStore.Create"
	if result := s.db.WithContext(ctx).Create(user); result.Error != nil {
		return fmt.Errorf("[%s] Fail to create user, err=%w", op, result.Error)
	}
	return nil
}
