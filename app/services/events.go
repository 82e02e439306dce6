package services

// EventStockAdjusted is fired after an order commit moved a product's stock.
const EventStockAdjusted = "stock.adjusted"

const (
	ReasonOrderCreated = "order.created"
	ReasonOrderDeleted = "order.deleted"
)

// StockAdjusted is the payload of EventStockAdjusted.
type StockAdjusted struct {
	OwnerID   uint   `json:"-"`
	ProductID uint   `json:"product_id"`
	Stock     int    `json:"stock"`
	Delta     int    `json:"delta"`
	Reason    string `json:"reason"`
}
