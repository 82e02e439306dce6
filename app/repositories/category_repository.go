package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/kashvi-shop/app/models"
	"github.com/shashiranjanraj/kashvi-shop/pkg/orm"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) ForOwner(ctx context.Context, owner uint) ([]models.Category, error) {
	var out []models.Category
	err := orm.Conn(ctx, r.db).Where("user_id = ?", owner).Order("id").Find(&out).Error
	return out, err
}

func (r *CategoryRepository) Find(ctx context.Context, id uint) (*models.Category, error) {
	var c models.Category
	if err := orm.Conn(ctx, r.db).First(&c, id).Error; err != nil {
		return nil, notFound(err, "category", id)
	}
	return &c, nil
}

func (r *CategoryRepository) Create(ctx context.Context, c *models.Category) error {
	return orm.Conn(ctx, r.db).Create(c).Error
}

func (r *CategoryRepository) Save(ctx context.Context, c *models.Category) error {
	return orm.Conn(ctx, r.db).Save(c).Error
}
