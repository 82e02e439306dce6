package seeders

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/kashvi-shop/app/models"
	"github.com/shashiranjanraj/kashvi-shop/app/repositories"
	"github.com/shashiranjanraj/kashvi-shop/app/services"
	"github.com/shashiranjanraj/kashvi-shop/config"
	"github.com/shashiranjanraj/kashvi-shop/pkg/orm"
)

func init() {
	Register("demo", SeedDemo)
}

var demoProducts = []struct {
	name, price, category string
	stock                 int
}{
	{"Widget", "9.99", "Hardware", 5},
	{"Gadget", "24.50", "Hardware", 12},
	{"Notebook", "3.20", "Stationery", 40},
	{"Fountain pen", "18.00", "Stationery", 0},
}

// SeedDemo creates an admin (DEMO_ADMIN_EMAIL / DEMO_ADMIN_PASSWORD) with a
// small catalogue. It does nothing when that admin already owns products.
func SeedDemo(ctx context.Context, db *gorm.DB) error {
	admin, err := services.NewAuthService(repositories.NewUserRepository(db)).CreateAdmin(ctx, services.Credentials{
		Email:    config.Get("DEMO_ADMIN_EMAIL", "admin@example.com"),
		Password: config.Get("DEMO_ADMIN_PASSWORD", "secret123"),
	})
	if err != nil {
		return err
	}

	products := repositories.NewProductRepository(db)
	categories := repositories.NewCategoryRepository(db)
	existing, err := products.ForOwner(ctx, admin.ID)
	if err != nil || len(existing) > 0 {
		return err
	}

	return orm.Transaction(ctx, db, func(ctx context.Context) error {
		cats := map[string]uint{}
		for _, d := range demoProducts {
			if _, ok := cats[d.category]; ok {
				continue
			}
			c := &models.Category{Name: d.category, UserID: admin.ID}
			if err := categories.Create(ctx, c); err != nil {
				return err
			}
			cats[d.category] = c.ID
		}

		for _, d := range demoProducts {
			catID := cats[d.category]
			p := &models.Product{
				Name:       d.name,
				Price:      decimal.RequireFromString(d.price),
				Stock:      d.stock,
				UserID:     admin.ID,
				CategoryID: &catID,
			}
			if err := products.Create(ctx, p); err != nil {
				return err
			}
		}
		return nil
	})
}
