// Package resources projects models into the v1 wire shapes. Owner ids,
// password hashes and the soft-delete flag never leave this package.
package resources

import (
	"encoding/json"
	"time"

	"github.com/shashiranjanraj/kashvi-shop/app/models"
	"github.com/shashiranjanraj/kashvi-shop/pkg/collection"
)

type Product struct {
	ID          uint        `json:"id"`
	Name        string      `json:"name"`
	Description *string     `json:"description"`
	Price       json.Number `json:"price"`
	Stock       int         `json:"stock"`
	CategoryID  *uint       `json:"category_id"`
}

func NewProduct(p models.Product) Product {
	return Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       json.Number(p.Price.StringFixed(2)),
		Stock:       p.Stock,
		CategoryID:  p.CategoryID,
	}
}

func Products(ps []models.Product) []Product { return collection.Map(ps, NewProduct) }

type Category struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func NewCategory(c models.Category) Category { return Category{ID: c.ID, Name: c.Name} }

func Categories(cs []models.Category) []Category { return collection.Map(cs, NewCategory) }

// OrderLine is one reserved unit on an order.
type OrderLine struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type Order struct {
	ID           uint        `json:"id"`
	CustomerName string      `json:"customer_name"`
	Status       string      `json:"status"`
	CreatedAt    string      `json:"created_at"`
	Products     []OrderLine `json:"products"`
	DeleteToken  string      `json:"delete_token,omitempty"`
}

func NewOrder(o models.Order) Order {
	return Order{
		ID:           o.ID,
		CustomerName: o.CustomerName,
		Status:       string(o.Status),
		CreatedAt:    o.CreatedAt.Format(time.RFC3339),
		Products: collection.Map(o.Items, func(it models.OrderItem) OrderLine {
			line := OrderLine{ID: it.ProductID}
			if it.Product != nil {
				line.Name = it.Product.Name
			}
			return line
		}),
	}
}

func Orders(os []models.Order) []Order { return collection.Map(os, NewOrder) }

type User struct {
	ID    uint     `json:"id"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

func NewUser(u models.User) User {
	roles := u.Roles
	if roles == nil {
		roles = []string{}
	}
	return User{ID: u.ID, Email: u.Email, Roles: roles}
}
