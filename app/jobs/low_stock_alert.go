// Package jobs holds the shop's background jobs and the hooks that queue them.
package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/shashiranjanraj/kashvi-shop/app/notifications"
	"github.com/shashiranjanraj/kashvi-shop/app/repositories"
	"github.com/shashiranjanraj/kashvi-shop/app/services"
	"github.com/shashiranjanraj/kashvi-shop/config"
	"github.com/shashiranjanraj/kashvi-shop/pkg/app"
	"github.com/shashiranjanraj/kashvi-shop/pkg/event"
	"github.com/shashiranjanraj/kashvi-shop/pkg/logger"
	"github.com/shashiranjanraj/kashvi-shop/pkg/notification"
	"github.com/shashiranjanraj/kashvi-shop/pkg/queue"
	"github.com/shashiranjanraj/kashvi-shop/pkg/schedule"
)

// Sender delivers a notification to one address.
type Sender interface {
	Send(ctx context.Context, address string, n notification.Notification) error
}

type alertDeps struct {
	products  *repositories.ProductRepository
	users     *repositories.UserRepository
	sender    Sender
	threshold int
}

// LowStockAlert tells a product's owner that its stock is at or below the
// alert level. The level is re-checked when the job runs, so a restock in
// between cancels the alert.
type LowStockAlert struct {
	ProductID uint `json:"product_id"`

	deps *alertDeps
}

func (LowStockAlert) JobName() string { return "low_stock_alert" }

func (j *LowStockAlert) Handle(ctx context.Context) error {
	p, err := j.deps.products.Find(ctx, j.ProductID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if p.IsDeleted || p.Stock > j.deps.threshold {
		return nil
	}

	owner, err := j.deps.users.FindByID(ctx, p.UserID)
	if err != nil {
		return fmt.Errorf("low stock alert: owner of product %d: %w", p.ID, err)
	}
	return j.deps.sender.Send(ctx, owner.Email, notifications.LowStock{Product: *p, Threshold: j.deps.threshold})
}

// Register makes LowStockAlert runnable on env.Queue and queues one whenever
// an order drags a product's stock across the alert level.
func Register(env app.Env) error {
	if env.Queue == nil {
		return errors.New("jobs: no queue")
	}
	var sender Sender = notification.New()
	if env.Notifier != nil {
		sender = env.Notifier
	}
	deps := &alertDeps{
		products:  repositories.NewProductRepository(env.DB),
		users:     repositories.NewUserRepository(env.DB),
		sender:    sender,
		threshold: config.LowStockThreshold(),
	}
	env.Queue.Register(func() queue.Job { return &LowStockAlert{deps: deps} })

	bus := env.Events
	if bus == nil {
		bus = event.Default
	}
	listenForLowStock(bus, env.Queue, deps.threshold)
	return nil
}

func listenForLowStock(bus *event.Dispatcher, q *queue.Queue, threshold int) {
	bus.Listen(services.EventStockAdjusted, func(ctx context.Context, payload any) {
		msg, ok := payload.(services.StockAdjusted)
		if !ok || msg.Delta >= 0 {
			return
		}
		before := msg.Stock - msg.Delta
		if msg.Stock > threshold || before <= threshold {
			return
		}
		if err := q.Dispatch(ctx, &LowStockAlert{ProductID: msg.ProductID}); err != nil {
			logger.WithCtx(ctx).Warn("low stock alert: dispatch failed", "product_id", msg.ProductID, "error", err)
		}
	})
}

// lowStockSweep fires at 08:00 every day.
const lowStockSweep = "0 8 * * *"

// Schedule adds a morning sweep that re-alerts every product still at or
// below the alert level.
func Schedule(s *schedule.Scheduler, env app.Env) error {
	products := repositories.NewProductRepository(env.DB)
	threshold := config.LowStockThreshold()
	return s.Cron(lowStockSweep).Name("stock:low-sweep").WithoutOverlapping().Run(func(ctx context.Context) error {
		return sweepLowStock(ctx, products, env.Queue, threshold)
	})
}

func sweepLowStock(ctx context.Context, products *repositories.ProductRepository, q *queue.Queue, threshold int) error {
	low, err := products.AtOrBelow(ctx, threshold)
	if err != nil {
		return err
	}
	var errs []error
	for _, p := range low {
		if err := q.Dispatch(ctx, &LowStockAlert{ProductID: p.ID}); err != nil {
			errs = append(errs, err)
		}
	}
	if len(low) > 0 {
		logger.WithCtx(ctx).Info("stock: low-stock sweep queued alerts", "count", len(low)-len(errs))
	}
	return errors.Join(errs...)
}
