package migrations

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/kashvi-shop/app/models"
	"github.com/shashiranjanraj/kashvi-shop/pkg/migration"
	"github.com/shashiranjanraj/kashvi-shop/pkg/queue"
)

func init() {
	migration.Register("20240101000000_create_users_table", &createTable{model: &models.User{}, table: "users"})
	migration.Register("20240101000001_create_categories_table", &createTable{model: &models.Category{}, table: "categories"})
	migration.Register("20240101000002_create_products_table", &createTable{model: &models.Product{}, table: "products"})
	migration.Register("20240101000003_create_orders_table", &createTable{model: &models.Order{}, table: "orders"})
	migration.Register("20240101000004_create_order_products_table", &createTable{model: &models.OrderItem{}, table: "order_products"})
	migration.Register("20240101000005_create_failed_jobs_table", &createTable{model: &queue.FailedJob{}, table: "failed_jobs"})
}

// createTable creates one model's table and drops it on rollback.
type createTable struct {
	model any
	table string
}

func (m *createTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(m.model)
}

func (m *createTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(m.table)
}
