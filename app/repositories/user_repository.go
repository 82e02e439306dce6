package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/kashvi-shop/app/models"
	"github.com/shashiranjanraj/kashvi-shop/pkg/orm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := orm.Conn(ctx, r.db).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFound(err, "user", email)
	}
	return &user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := orm.Conn(ctx, r.db).First(&user, id).Error; err != nil {
		return nil, notFound(err, "user", id)
	}
	return &user, nil
}

func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int64
	err := orm.Conn(ctx, r.db).Model(&models.User{}).Where("email = ?", email).Count(&n).Error
	return n > 0, err
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return orm.Conn(ctx, r.db).Create(user).Error
}

func (r *UserRepository) Save(ctx context.Context, user *models.User) error {
	return orm.Conn(ctx, r.db).Save(user).Error
}
