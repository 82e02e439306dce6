// Package routes builds the shop's controllers and mounts them.
package routes

import (
	"fmt"

	"github.com/shashiranjanraj/kashvi-shop/app/controllers"
	appgraphql "github.com/shashiranjanraj/kashvi-shop/app/graphql"
	"github.com/shashiranjanraj/kashvi-shop/app/listeners"
	"github.com/shashiranjanraj/kashvi-shop/app/repositories"
	"github.com/shashiranjanraj/kashvi-shop/app/services"
	"github.com/shashiranjanraj/kashvi-shop/pkg/app"
	"github.com/shashiranjanraj/kashvi-shop/pkg/ctx"
	"github.com/shashiranjanraj/kashvi-shop/pkg/event"
	"github.com/shashiranjanraj/kashvi-shop/pkg/graphql"
	"github.com/shashiranjanraj/kashvi-shop/pkg/middleware"
	"github.com/shashiranjanraj/kashvi-shop/pkg/rbac"
	"github.com/shashiranjanraj/kashvi-shop/pkg/router"
	"github.com/shashiranjanraj/kashvi-shop/pkg/sse"
	"github.com/shashiranjanraj/kashvi-shop/pkg/ws"
)

// Register mounts every shop route on r.
func Register(r *router.Router, d app.Env) error {
	if d.Events == nil {
		d.Events = event.Default
	}
	if d.Hub == nil {
		d.Hub = ws.NewHub()
	}
	if d.Feed == nil {
		d.Feed = sse.NewBroker()
	}
	d.Feed.Event = "stock"

	users := repositories.NewUserRepository(d.DB)
	productRepo := repositories.NewProductRepository(d.DB)
	categoryRepo := repositories.NewCategoryRepository(d.DB)
	orderRepo := repositories.NewOrderRepository(d.DB)

	principal := services.NewPrincipalResolver(users)
	authSvc := services.NewAuthService(users)
	productSvc := services.NewProductService(productRepo, categoryRepo)
	categorySvc := services.NewCategoryService(categoryRepo)
	orderSvc := services.NewOrderService(d.DB, orderRepo, productRepo, d.Events)

	listeners.Register(d.Events, d.Hub, d.Feed)

	schema, err := appgraphql.Schema(productSvc, orderSvc, principal)
	if err != nil {
		return fmt.Errorf("routes: graphql schema: %w", err)
	}

	authC := controllers.NewAuthController(authSvc, principal)
	productC := controllers.NewProductAPIController(productSvc)
	categoryC := controllers.NewCategoryAPIController(categorySvc)
	orderC := controllers.NewOrderController(orderSvc, productSvc, r)
	feedC := controllers.NewStockFeedController(d.Hub, d.Feed)

	r.Post("/register", "auth.register", ctx.Wrap(authC.Register))
	r.Post("/login", "auth.login", ctx.Wrap(authC.Login))
	r.Post("/logout", "auth.logout", ctx.Wrap(authC.Logout))

	admin := r.Group("", middleware.Authenticate, rbac.HasRole(rbac.RoleAdmin))
	admin.Get("/api/me", "auth.me", ctx.Wrap(authC.Me))

	products := admin.Group("/api/products")
	products.Get("", "products.index", ctx.Wrap(productC.Index))
	products.Post("", "products.store", ctx.Wrap(productC.Store))
	products.Get("/{id}", "products.show", ctx.Wrap(productC.Show))
	products.Put("/{id}", "products.update", ctx.Wrap(productC.Update))
	products.Delete("/{id}", "products.destroy", ctx.Wrap(productC.Destroy))

	categories := admin.Group("/api/categories")
	categories.Get("", "categories.index", ctx.Wrap(categoryC.Index))
	categories.Post("", "categories.store", ctx.Wrap(categoryC.Store))
	categories.Get("/{id}", "categories.show", ctx.Wrap(categoryC.Show))
	categories.Put("/{id}", "categories.update", ctx.Wrap(categoryC.Update))

	orders := admin.Group("/order")
	orders.Get("", "order.index", ctx.Wrap(orderC.Index))
	orders.Get("/new", "order.new", ctx.Wrap(orderC.New))
	orders.Post("", "order.store", ctx.Wrap(orderC.Store))
	orders.Get("/{id}", "order.show", ctx.Wrap(orderC.Show))
	orders.Get("/{id}/edit", "order.edit", ctx.Wrap(orderC.Edit))
	orders.Post("/{id}/edit", "order.update", ctx.Wrap(orderC.Update))
	orders.Post("/{id}", "order.destroy", ctx.Wrap(orderC.Destroy))

	gql := graphql.Handler(schema)
	admin.Get("/graphql", "graphql.query", gql)
	admin.Post("/graphql", "graphql.execute", gql)

	admin.Get("/ws/stock", "stock.feed", feedC.Serve)
	admin.Get("/sse/stock", "stock.stream", feedC.Stream)
	return nil
}
