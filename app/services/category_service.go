package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shashiranjanraj/kashvi-shop/app/models"
	"github.com/shashiranjanraj/kashvi-shop/app/policies"
	"github.com/shashiranjanraj/kashvi-shop/app/repositories"
	"github.com/shashiranjanraj/kashvi-shop/pkg/cache"
	"github.com/shashiranjanraj/kashvi-shop/pkg/logger"
	"github.com/shashiranjanraj/kashvi-shop/pkg/validate"
)

// categoryListTTL bounds how stale a cached category list can be when a
// write happens on another instance.
const categoryListTTL = 10 * time.Minute

type CategoryInput struct {
	Name string `json:"name" validate:"required,max=255"`
}

type CategoryService struct {
	categories *repositories.CategoryRepository
}

func NewCategoryService(categories *repositories.CategoryRepository) *CategoryService {
	return &CategoryService{categories: categories}
}

func categoryListKey(owner uint) string {
	return "shop:categories:" + strconv.FormatUint(uint64(owner), 10)
}

// List is cached per owner and dropped on every write.
func (s *CategoryService) List(ctx context.Context, owner uint) ([]models.Category, error) {
	return cache.Remember(ctx, categoryListKey(owner), categoryListTTL, func() ([]models.Category, error) {
		return s.categories.ForOwner(ctx, owner)
	})
}

func (s *CategoryService) Find(ctx context.Context, owner, id uint) (*models.Category, error) {
	c, err := s.categories.Find(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if !policies.Owns(owner, c) {
		return nil, ErrNotFound
	}
	return c, nil
}

func (s *CategoryService) Create(ctx context.Context, owner uint, in CategoryInput) (*models.Category, error) {
	if fields := validate.Struct(in); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}
	c := &models.Category{Name: in.Name, UserID: owner}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	s.forget(ctx, owner)
	return c, nil
}

func (s *CategoryService) Update(ctx context.Context, owner, id uint, in CategoryInput) (*models.Category, error) {
	c, err := s.Find(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if fields := validate.Struct(in); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}
	c.Name = in.Name
	if err := s.categories.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("update category %d: %w", id, err)
	}
	s.forget(ctx, owner)
	return c, nil
}

func (s *CategoryService) forget(ctx context.Context, owner uint) {
	if err := cache.Del(ctx, categoryListKey(owner)); err != nil {
		logger.WithCtx(ctx).Warn("category: cache invalidation failed", "owner", owner, "error", err)
	}
}
