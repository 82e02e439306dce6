package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/kashvi-shop/app/models"
	"github.com/shashiranjanraj/kashvi-shop/pkg/orm"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func withLines(q *gorm.DB) *gorm.DB {
	return q.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).Preload("Items.Product")
}

func (r *OrderRepository) ForOwner(ctx context.Context, owner uint) ([]models.Order, error) {
	var out []models.Order
	err := withLines(orm.Conn(ctx, r.db)).Where("user_id = ?", owner).Order("id").Find(&out).Error
	return out, err
}

// Find loads an order with its lines and their products. Inside a
// transaction the order row stays locked until commit.
func (r *OrderRepository) Find(ctx context.Context, id uint) (*models.Order, error) {
	q := orm.Conn(ctx, r.db)
	if orm.InTransaction(ctx) {
		q = orm.ForUpdate(q)
	}
	var o models.Order
	if err := withLines(q).First(&o, id).Error; err != nil {
		return nil, notFound(err, "order", id)
	}
	return &o, nil
}

// Create inserts the order and its lines.
func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	return orm.Conn(ctx, r.db).Omit("Items.Product").Create(o).Error
}

// Update writes the scalar fields and replaces the lines with productIDs.
func (r *OrderRepository) Update(ctx context.Context, o *models.Order, productIDs []uint) error {
	db := orm.Conn(ctx, r.db)
	err := db.Model(&models.Order{}).Where("id = ?", o.ID).Updates(map[string]any{
		"customer_name": o.CustomerName,
		"status":        o.Status,
		"created_at":    o.CreatedAt,
	}).Error
	if err != nil {
		return err
	}
	if err := r.DeleteLines(ctx, o.ID); err != nil {
		return err
	}

	o.Items = lines(o.ID, productIDs)
	if len(o.Items) == 0 {
		return nil
	}
	return db.Omit("Product").Create(&o.Items).Error
}

func (r *OrderRepository) DeleteLines(ctx context.Context, orderID uint) error {
	return orm.Conn(ctx, r.db).Where("order_id = ?", orderID).Delete(&models.OrderItem{}).Error
}

// Delete removes the order row permanently. Lines must be gone already.
// Deleting a row that is no longer there is ErrNotFound.
func (r *OrderRepository) Delete(ctx context.Context, id uint) error {
	res := orm.Conn(ctx, r.db).Unscoped().Delete(&models.Order{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "order", id)
	}
	return nil
}

func lines(orderID uint, productIDs []uint) []models.OrderItem {
	out := make([]models.OrderItem, len(productIDs))
	for i, pid := range productIDs {
		out[i] = models.OrderItem{OrderID: orderID, ProductID: pid}
	}
	return out
}

// NewLines builds unsaved lines for a new order.
func NewLines(productIDs []uint) []models.OrderItem { return lines(0, productIDs) }
