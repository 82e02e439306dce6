// Package notifications holds the messages the shop sends to owners.
package notifications

import (
	"fmt"

	"github.com/shashiranjanraj/kashvi-shop/app/models"
	"github.com/shashiranjanraj/kashvi-shop/pkg/notification"
)

// LowStock tells an owner a product has reached the alert threshold.
type LowStock struct {
	Product   models.Product
	Threshold int
}

func (LowStock) Via() []string { return []string{"mail", "webhook"} }

func (n LowStock) ToMail() notification.MailData {
	subject := fmt.Sprintf("%s is running low", n.Product.Name)
	text := fmt.Sprintf("%s has %d left in stock (alert level %d).", n.Product.Name, n.Product.Stock, n.Threshold)
	if n.Product.Stock <= 0 {
		subject = fmt.Sprintf("%s is out of stock", n.Product.Name)
		text = fmt.Sprintf("%s is out of stock. Current level: %d.", n.Product.Name, n.Product.Stock)
	}
	return notification.MailData{Subject: subject, Text: text}
}

func (n LowStock) ToWebhook() notification.WebhookData {
	return notification.WebhookData{
		Event: "stock.low",
		Payload: map[string]any{
			"product_id": n.Product.ID,
			"name":       n.Product.Name,
			"stock":      n.Product.Stock,
			"threshold":  n.Threshold,
		},
	}
}
