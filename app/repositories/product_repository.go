package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/kashvi-shop/app/models"
	"github.com/shashiranjanraj/kashvi-shop/pkg/orm"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// ForOwner lists the owner's products that are not soft-deleted.
func (r *ProductRepository) ForOwner(ctx context.Context, owner uint) ([]models.Product, error) {
	var out []models.Product
	err := orm.Conn(ctx, r.db).
		Where("user_id = ? AND is_deleted = ?", owner, false).
		Order("id").
		Find(&out).Error
	return out, err
}

// Find loads a product regardless of owner or deletion flag.
func (r *ProductRepository) Find(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := orm.Conn(ctx, r.db).First(&p, id).Error; err != nil {
		return nil, notFound(err, "product", id)
	}
	return &p, nil
}

// FindMany loads the given ids. With lock set the rows are read FOR UPDATE
// where the dialect supports it. Missing ids are simply absent.
func (r *ProductRepository) FindMany(ctx context.Context, ids []uint, lock bool) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := orm.Conn(ctx, r.db).Where("id IN ?", ids).Order("id")
	if lock {
		q = orm.ForUpdate(q)
	}
	var out []models.Product
	err := q.Find(&out).Error
	return out, err
}

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	return orm.Conn(ctx, r.db).Create(p).Error
}

func (r *ProductRepository) Save(ctx context.Context, p *models.Product) error {
	return orm.Conn(ctx, r.db).Save(p).Error
}

// SoftDelete flags the product as deleted without removing the row.
func (r *ProductRepository) SoftDelete(ctx context.Context, id uint) error {
	return orm.Conn(ctx, r.db).Model(&models.Product{}).Where("id = ?", id).
		Update("is_deleted", true).Error
}

// AdjustStock adds delta to the product's stock in a single UPDATE and
// returns the resulting level.
func (r *ProductRepository) AdjustStock(ctx context.Context, id uint, delta int) (int, error) {
	db := orm.Conn(ctx, r.db)
	res := db.Model(&models.Product{}).Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("stock + ?", delta))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, notFound(gorm.ErrRecordNotFound, "product", id)
	}

	var stock int
	if err := db.Model(&models.Product{}).Where("id = ?", id).Pluck("stock", &stock).Error; err != nil {
		return 0, err
	}
	return stock, nil
}

// AtOrBelow lists live products, across owners, whose stock is at most level.
func (r *ProductRepository) AtOrBelow(ctx context.Context, level int) ([]models.Product, error) {
	var out []models.Product
	err := orm.Conn(ctx, r.db).
		Where("stock <= ? AND is_deleted = ?", level, false).
		Order("user_id, id").
		Find(&out).Error
	return out, err
}
