package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/kashvi-shop/app/models"
	"github.com/shashiranjanraj/kashvi-shop/app/policies"
	"github.com/shashiranjanraj/kashvi-shop/app/repositories"
	"github.com/shashiranjanraj/kashvi-shop/pkg/collection"
	"github.com/shashiranjanraj/kashvi-shop/pkg/event"
	"github.com/shashiranjanraj/kashvi-shop/pkg/logger"
	"github.com/shashiranjanraj/kashvi-shop/pkg/metrics"
	"github.com/shashiranjanraj/kashvi-shop/pkg/orm"
	"github.com/shashiranjanraj/kashvi-shop/pkg/validate"
)

// OrderInput is the editable part of an order. ProductIDs holds one id per
// reserved unit; repeat an id to reserve it twice.
type OrderInput struct {
	CustomerName string             `form:"customer_name" json:"customer_name" validate:"required,max=255"`
	Status       models.OrderStatus `form:"status" json:"status" validate:"nullable,in=Pending,Processing,Shipped,Delivered,Cancelled"`
	CreatedAt    *time.Time         `form:"created_at" json:"created_at"`
	ProductIDs   []uint             `form:"products" json:"products"`
}

func (in OrderInput) status() models.OrderStatus {
	if in.Status == "" {
		return models.StatusPending
	}
	return in.Status
}

func (in OrderInput) createdAt(now time.Time) time.Time {
	if in.CreatedAt == nil || in.CreatedAt.IsZero() {
		return now
	}
	return *in.CreatedAt
}

// OrderService moves orders through create, update and delete, keeping
// product stock in step inside one transaction per transition.
type OrderService struct {
	db       *gorm.DB
	orders   *repositories.OrderRepository
	products *repositories.ProductRepository
	events   *event.Dispatcher
	now      func() time.Time
}

func NewOrderService(db *gorm.DB, orders *repositories.OrderRepository, products *repositories.ProductRepository, events *event.Dispatcher) *OrderService {
	if events == nil {
		events = event.Default
	}
	return &OrderService{db: db, orders: orders, products: products, events: events, now: time.Now}
}

func (s *OrderService) List(ctx context.Context, owner uint) ([]models.Order, error) {
	return s.orders.ForOwner(ctx, owner)
}

func (s *OrderService) Find(ctx context.Context, owner, id uint) (*models.Order, error) {
	o, err := s.orders.Find(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if !policies.Owns(owner, o) {
		return nil, ErrNotFound
	}
	return o, nil
}

// Create stores a new order and takes one unit of stock per product id.
// Stock is allowed to go negative; that is logged, not refused.
func (s *OrderService) Create(ctx context.Context, owner uint, in OrderInput) (*models.Order, error) {
	if fields := validate.Struct(in); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	order := &models.Order{
		CustomerName: in.CustomerName,
		Status:       in.status(),
		CreatedAt:    in.createdAt(s.now()),
		UserID:       owner,
		Items:        repositories.NewLines(in.ProductIDs),
	}

	var moved []StockAdjusted
	err := orm.Transaction(ctx, s.db, func(ctx context.Context) error {
		if _, err := s.ownedProducts(ctx, owner, in.ProductIDs); err != nil {
			return err
		}
		if err := s.orders.Create(ctx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		var err error
		moved, err = s.adjust(ctx, owner, in.ProductIDs, -1, ReasonOrderCreated)
		return err
	})
	if err != nil {
		return nil, err
	}

	for _, m := range moved {
		if m.Stock < 0 {
			logger.WithCtx(ctx).Warn("order: product stock below zero",
				"order_id", order.ID, "product_id", m.ProductID, "stock", m.Stock)
		}
	}
	metrics.OrdersTotal.WithLabelValues("create").Inc()
	metrics.StockUnits.WithLabelValues("reserve").Add(float64(len(in.ProductIDs)))
	s.publish(ctx, moved)
	logger.WithCtx(ctx).Info("order: created", "order_id", order.ID, "lines", len(order.Items))
	return order, nil
}

// Update rewrites an order's fields and product lines. Stock is not
// rebalanced when the product set changes, and an empty status keeps the
// current one.
func (s *OrderService) Update(ctx context.Context, owner, id uint, in OrderInput) (*models.Order, error) {
	if fields := validate.Struct(in); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	var order *models.Order
	err := orm.Transaction(ctx, s.db, func(ctx context.Context) error {
		var err error
		if order, err = s.Find(ctx, owner, id); err != nil {
			return err
		}
		if _, err := s.ownedProducts(ctx, owner, in.ProductIDs); err != nil {
			return err
		}

		order.CustomerName = in.CustomerName
		if in.Status != "" {
			order.Status = in.Status
		}
		order.CreatedAt = in.createdAt(order.CreatedAt)
		if err := s.orders.Update(ctx, order, in.ProductIDs); err != nil {
			return fmt.Errorf("update order %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.OrdersTotal.WithLabelValues("update").Inc()
	logger.WithCtx(ctx).Info("order: updated", "order_id", order.ID)
	return order, nil
}

// Delete gives every reserved unit back and removes the order. If any
// product on it currently has less than one unit in stock nothing changes
// and an *OutOfStockError names that product.
func (s *OrderService) Delete(ctx context.Context, owner, id uint) error {
	var moved []StockAdjusted
	var units int
	err := orm.Transaction(ctx, s.db, func(ctx context.Context) error {
		order, err := s.Find(ctx, owner, id)
		if err != nil {
			return err
		}

		ids := order.ProductIDs()
		units = len(ids)
		products, err := s.products.FindMany(ctx, collection.Unique(ids), true)
		if err != nil {
			return fmt.Errorf("load order products: %w", err)
		}
		byID := collection.KeyBy(products, func(p models.Product) uint { return p.ID })
		for _, pid := range ids {
			if p, ok := byID[pid]; ok && p.Stock < 1 {
				return &OutOfStockError{Product: p.Name}
			}
		}

		if moved, err = s.adjust(ctx, owner, ids, 1, ReasonOrderDeleted); err != nil {
			return err
		}
		if err := s.orders.DeleteLines(ctx, order.ID); err != nil {
			return fmt.Errorf("delete order lines: %w", err)
		}
		// A concurrent delete that won the race leaves nothing to remove;
		// rolling back keeps the stock from being restored twice.
		if err := s.orders.Delete(ctx, order.ID); errors.Is(err, repositories.ErrNotFound) {
			return ErrNotFound
		} else if err != nil {
			return fmt.Errorf("delete order %d: %w", order.ID, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	metrics.OrdersTotal.WithLabelValues("delete").Inc()
	metrics.StockUnits.WithLabelValues("restore").Add(float64(units))
	s.publish(ctx, moved)
	logger.WithCtx(ctx).Info("order: deleted", "order_id", id)
	return nil
}

// ownedProducts locks and returns the distinct products behind ids. Any id
// that is missing, foreign or soft-deleted fails the whole set.
func (s *OrderService) ownedProducts(ctx context.Context, owner uint, ids []uint) ([]models.Product, error) {
	unique := collection.Unique(ids)
	products, err := s.products.FindMany(ctx, unique, true)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	if len(products) != len(unique) {
		return nil, ErrNotFound
	}
	for i := range products {
		if !policies.Visible(owner, &products[i]) {
			return nil, ErrNotFound
		}
	}
	return products, nil
}

// adjust moves stock by sign units per occurrence of each id.
func (s *OrderService) adjust(ctx context.Context, owner uint, ids []uint, sign int, reason string) ([]StockAdjusted, error) {
	counts := collection.CountBy(ids)
	out := make([]StockAdjusted, 0, len(counts))
	for _, pid := range collection.Unique(ids) {
		delta := sign * counts[pid]
		stock, err := s.products.AdjustStock(ctx, pid, delta)
		if err != nil {
			return nil, fmt.Errorf("adjust stock of product %d: %w", pid, err)
		}
		out = append(out, StockAdjusted{OwnerID: owner, ProductID: pid, Stock: stock, Delta: delta, Reason: reason})
	}
	return out, nil
}

func (s *OrderService) publish(ctx context.Context, moved []StockAdjusted) {
	for _, m := range moved {
		s.events.Fire(ctx, EventStockAdjusted, m)
	}
}
