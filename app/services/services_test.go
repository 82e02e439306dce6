package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/kashvi-shop/app/models"
	"github.com/shashiranjanraj/kashvi-shop/app/repositories"
	"github.com/shashiranjanraj/kashvi-shop/pkg/event"
	"github.com/shashiranjanraj/kashvi-shop/pkg/testkit"

	_ "github.com/shashiranjanraj/kashvi-shop/database/migrations"
)

type fixture struct {
	db          *gorm.DB
	productRepo *repositories.ProductRepository
	orderRepo   *repositories.OrderRepository
	orders      *OrderService
	products    *ProductService
	categories  *CategoryService
	auth        *AuthService
	moved       []StockAdjusted
}

func setup(t *testing.T) *fixture {
	t.Helper()
	testkit.MemoryCache(t)
	db := testkit.OpenDB(t)

	f := &fixture{db: db}
	bus := event.New()
	bus.Listen(EventStockAdjusted, func(_ context.Context, payload any) {
		f.moved = append(f.moved, payload.(StockAdjusted))
	})

	users := repositories.NewUserRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)
	f.productRepo = repositories.NewProductRepository(db)
	f.orderRepo = repositories.NewOrderRepository(db)
	f.orders = NewOrderService(db, f.orderRepo, f.productRepo, bus)
	f.products = NewProductService(f.productRepo, categoryRepo)
	f.categories = NewCategoryService(categoryRepo)
	f.auth = NewAuthService(users)
	return f
}

func (f *fixture) user(t *testing.T, email string) *models.User {
	t.Helper()
	u := &models.User{Email: email, Password: "x", Roles: []string{"ROLE_ADMIN"}}
	require.NoError(t, f.db.Create(u).Error)
	return u
}

func (f *fixture) product(t *testing.T, owner uint, name string, stock int) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, Price: decimal.RequireFromString("9.99"), Stock: stock, UserID: owner}
	require.NoError(t, f.db.Create(p).Error)
	return p
}

func (f *fixture) stock(t *testing.T, id uint) int {
	t.Helper()
	p, err := f.productRepo.Find(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func ptr[T any](v T) *T { return &v }
