package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/kashvi-shop/app/models"
	"github.com/shashiranjanraj/kashvi-shop/app/policies"
	"github.com/shashiranjanraj/kashvi-shop/app/repositories"
	"github.com/shashiranjanraj/kashvi-shop/pkg/logger"
	"github.com/shashiranjanraj/kashvi-shop/pkg/validate"
)

var ErrMissingFields = errors.New("missing required fields: name, price, stock")

// ProductInput is the JSON body of product create and update. The pointer
// fields tell an absent key apart from a zero value.
type ProductInput struct {
	Name        *string          `json:"name" validate:"required,max=255"`
	Description *string          `json:"description" validate:"nullable"`
	Price       *decimal.Decimal `json:"price" validate:"gte=0"`
	Stock       *int             `json:"stock" validate:"gte=0"`
	CategoryID  *uint            `json:"category_id"`
}

func (in ProductInput) complete() bool {
	return in.Name != nil && in.Price != nil && in.Stock != nil
}

func (in ProductInput) apply(p *models.Product) {
	p.Name = *in.Name
	p.Description = in.Description
	p.Price = in.Price.Round(2)
	p.Stock = *in.Stock
	if in.CategoryID != nil {
		p.CategoryID = in.CategoryID
	}
}

type ProductService struct {
	products   *repositories.ProductRepository
	categories *repositories.CategoryRepository
}

func NewProductService(products *repositories.ProductRepository, categories *repositories.CategoryRepository) *ProductService {
	return &ProductService{products: products, categories: categories}
}

// List returns the owner's products that are not soft-deleted.
func (s *ProductService) List(ctx context.Context, owner uint) ([]models.Product, error) {
	return s.products.ForOwner(ctx, owner)
}

func (s *ProductService) Find(ctx context.Context, owner, id uint) (*models.Product, error) {
	p, err := s.products.Find(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if !policies.Visible(owner, p) {
		return nil, ErrNotFound
	}
	return p, nil
}

// Create checks, in order: required keys, category ownership, field rules.
func (s *ProductService) Create(ctx context.Context, owner uint, in ProductInput) (*models.Product, error) {
	if err := s.check(ctx, owner, in); err != nil {
		return nil, err
	}

	p := &models.Product{UserID: owner}
	in.apply(p)
	if err := s.products.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	logger.WithCtx(ctx).Info("product: created", "product_id", p.ID)
	return p, nil
}

func (s *ProductService) Update(ctx context.Context, owner, id uint, in ProductInput) (*models.Product, error) {
	p, err := s.Find(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if err := s.check(ctx, owner, in); err != nil {
		return nil, err
	}

	// An absent category_id leaves the current category in place.
	in.apply(p)
	p.Category = nil
	if err := s.products.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("update product %d: %w", id, err)
	}
	return p, nil
}

// Delete hides the product. Order lines keep referencing the row.
func (s *ProductService) Delete(ctx context.Context, owner, id uint) error {
	p, err := s.Find(ctx, owner, id)
	if err != nil {
		return err
	}
	if err := s.products.SoftDelete(ctx, p.ID); err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	logger.WithCtx(ctx).Info("product: soft-deleted", "product_id", p.ID)
	return nil
}

func (s *ProductService) check(ctx context.Context, owner uint, in ProductInput) error {
	if !in.complete() {
		return ErrMissingFields
	}
	if in.CategoryID != nil {
		c, err := s.categories.Find(ctx, *in.CategoryID)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return err
		}
		if c == nil || !policies.Owns(owner, c) {
			return ErrInvalidCategory
		}
	}
	if fields := validate.Struct(in); len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
