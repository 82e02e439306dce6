package controllers

import (
	"github.com/shashiranjanraj/kashvi-shop/app/resources"
	"github.com/shashiranjanraj/kashvi-shop/app/services"
	"github.com/shashiranjanraj/kashvi-shop/pkg/ctx"
)

const productNotFound = "Product not found or unauthorized"

type ProductAPIController struct {
	products *services.ProductService
}

func NewProductAPIController(products *services.ProductService) *ProductAPIController {
	return &ProductAPIController{products: products}
}

// GET /api/products
func (pc *ProductAPIController) Index(c *ctx.Context) {
	uid, ok := owner(c)
	if !ok {
		return
	}
	list, err := pc.products.List(c.Context(), uid)
	if err != nil {
		fail(c, err, productNotFound)
		return
	}
	c.Success(resources.Products(list))
}

// GET /api/products/{id}
func (pc *ProductAPIController) Show(c *ctx.Context) {
	uid, ok := owner(c)
	if !ok {
		return
	}
	id, ok := c.ParamUint("id")
	if !ok {
		c.Forbidden(productNotFound)
		return
	}
	p, err := pc.products.Find(c.Context(), uid, id)
	if err != nil {
		fail(c, err, productNotFound)
		return
	}
	c.Success(resources.NewProduct(*p))
}

// POST /api/products
func (pc *ProductAPIController) Store(c *ctx.Context) {
	uid, ok := owner(c)
	if !ok {
		return
	}
	var in services.ProductInput
	if !c.DecodeJSON(&in) {
		return
	}
	p, err := pc.products.Create(c.Context(), uid, in)
	if err != nil {
		fail(c, err, productNotFound)
		return
	}
	c.Created(map[string]any{"status": "Product created!", "id": p.ID})
}

// PUT /api/products/{id}
func (pc *ProductAPIController) Update(c *ctx.Context) {
	uid, ok := owner(c)
	if !ok {
		return
	}
	id, ok := c.ParamUint("id")
	if !ok {
		c.Forbidden(productNotFound)
		return
	}
	var in services.ProductInput
	if !c.DecodeJSON(&in) {
		return
	}
	if _, err := pc.products.Update(c.Context(), uid, id, in); err != nil {
		fail(c, err, productNotFound)
		return
	}
	c.Success(map[string]string{"status": "Product updated!"})
}

// DELETE /api/products/{id}
func (pc *ProductAPIController) Destroy(c *ctx.Context) {
	uid, ok := owner(c)
	if !ok {
		return
	}
	id, ok := c.ParamUint("id")
	if !ok {
		c.Forbidden(productNotFound)
		return
	}
	if err := pc.products.Delete(c.Context(), uid, id); err != nil {
		fail(c, err, productNotFound)
		return
	}
	c.Success(map[string]string{"status": "Product deleted"})
}
