// Package graphql exposes a read-only view of the caller's catalogue and
// orders. Resolvers go through the services, so ownership rules match the
// REST endpoints.
package graphql

import (
	"context"
	"errors"

	"github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/kashvi-shop/app/models"
	"github.com/shashiranjanraj/kashvi-shop/app/services"
	"github.com/shashiranjanraj/kashvi-shop/pkg/collection"
	gql "github.com/shashiranjanraj/kashvi-shop/pkg/graphql"
)

var productType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Product",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"name":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"description": &graphql.Field{Type: graphql.String},
		"price":       &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
		"stock":       &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"category_id": &graphql.Field{Type: graphql.Int},
	},
})

var orderLineType = graphql.NewObject(graphql.ObjectConfig{
	Name: "OrderLine",
	Fields: graphql.Fields{
		"id":   &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"name": &graphql.Field{Type: graphql.String},
	},
})

var orderType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Order",
	Fields: graphql.Fields{
		"id":            &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"customer_name": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"status":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"created_at":    &graphql.Field{Type: graphql.NewNonNull(graphql.DateTime)},
		"products":      &graphql.Field{Type: graphql.NewList(orderLineType)},
	},
})

func productMap(p models.Product) map[string]any {
	out := map[string]any{
		"id":          int(p.ID),
		"name":        p.Name,
		"description": nil,
		"price":       p.Price.InexactFloat64(),
		"stock":       p.Stock,
		"category_id": nil,
	}
	if p.Description != nil {
		out["description"] = *p.Description
	}
	if p.CategoryID != nil {
		out["category_id"] = int(*p.CategoryID)
	}
	return out
}

func orderMap(o models.Order) map[string]any {
	return map[string]any{
		"id":            int(o.ID),
		"customer_name": o.CustomerName,
		"status":        string(o.Status),
		"created_at":    o.CreatedAt,
		"products": collection.Map(o.Items, func(it models.OrderItem) map[string]any {
			line := map[string]any{"id": int(it.ProductID), "name": nil}
			if it.Product != nil {
				line["name"] = it.Product.Name
			}
			return line
		}),
	}
}

// Schema builds the query root over the given services.
func Schema(products *services.ProductService, orders *services.OrderService, principal *services.PrincipalResolver) (graphql.Schema, error) {
	caller := func(ctx context.Context) (uint, error) { return principal.UserID(ctx) }

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"products": &graphql.Field{
				Type: graphql.NewList(productType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					uid, err := caller(p.Context)
					if err != nil {
						return nil, err
					}
					list, err := products.List(p.Context, uid)
					if err != nil {
						return nil, err
					}
					return collection.Map(list, productMap), nil
				},
			},
			"product": &graphql.Field{
				Type: productType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					uid, err := caller(p.Context)
					if err != nil {
						return nil, err
					}
					id, _ := p.Args["id"].(int)
					if id <= 0 {
						return nil, nil
					}
					found, err := products.Find(p.Context, uid, uint(id))
					if errors.Is(err, services.ErrNotFound) {
						return nil, nil
					}
					if err != nil {
						return nil, err
					}
					return productMap(*found), nil
				},
			},
			"orders": &graphql.Field{
				Type: graphql.NewList(orderType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					uid, err := caller(p.Context)
					if err != nil {
						return nil, err
					}
					list, err := orders.List(p.Context, uid)
					if err != nil {
						return nil, err
					}
					return collection.Map(list, orderMap), nil
				},
			},
		},
	})
	return gql.NewSchema(query)
}
