package models

import (
	"slices"
	"time"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "Pending"
	StatusProcessing OrderStatus = "Processing"
	StatusShipped    OrderStatus = "Shipped"
	StatusDelivered  OrderStatus = "Delivered"
	StatusCancelled  OrderStatus = "Cancelled"
)

// OrderStatuses lists the valid statuses in display order.
var OrderStatuses = []OrderStatus{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

func (s OrderStatus) Valid() bool { return slices.Contains(OrderStatuses, s) }

// Order is a customer order. CreatedAt is a business date the admin may
// edit, not a bookkeeping timestamp.
type Order struct {
	ID           uint        `gorm:"primaryKey"`
	CustomerName string      `gorm:"size:255;not null"`
	Status       OrderStatus `gorm:"size:20;not null;default:Pending"`
	CreatedAt    time.Time   `gorm:"not null;autoCreateTime:false"`
	UpdatedAt    time.Time
	UserID       uint        `gorm:"not null;index"`
	User         *User       `gorm:"constraint:OnDelete:CASCADE"`
	Items        []OrderItem `gorm:"constraint:OnDelete:CASCADE"`
}

func (o *Order) OwnerID() uint { return o.UserID }

// ProductIDs lists one id per line, duplicates included.
func (o *Order) ProductIDs() []uint {
	ids := make([]uint, len(o.Items))
	for i, it := range o.Items {
		ids[i] = it.ProductID
	}
	return ids
}

// OrderItem is one unit of a product on an order. A product ordered twice
// has two rows.
type OrderItem struct {
	ID        uint     `gorm:"primaryKey"`
	OrderID   uint     `gorm:"not null;index"`
	ProductID uint     `gorm:"not null;index"`
	Product   *Product `gorm:"constraint:OnDelete:RESTRICT"`
}

func (OrderItem) TableName() string { return "order_products" }
