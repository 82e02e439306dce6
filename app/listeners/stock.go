// Package listeners reacts to domain events.
package listeners

import (
	"context"

	"github.com/shashiranjanraj/kashvi-shop/app/services"
	"github.com/shashiranjanraj/kashvi-shop/pkg/event"
	"github.com/shashiranjanraj/kashvi-shop/pkg/logger"
)

// Publisher delivers a message to every live connection of one owner.
type Publisher interface {
	Publish(owner uint, v any) error
}

// Register pushes every stock adjustment to each feed.
func Register(bus *event.Dispatcher, feeds ...Publisher) {
	bus.Listen(services.EventStockAdjusted, func(ctx context.Context, payload any) {
		msg, ok := payload.(services.StockAdjusted)
		if !ok {
			return
		}
		for _, feed := range feeds {
			if err := feed.Publish(msg.OwnerID, msg); err != nil {
				logger.WithCtx(ctx).Warn("stock feed: publish failed", "product_id", msg.ProductID, "error", err)
			}
		}
	})
}
