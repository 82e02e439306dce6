package controllers

import (
	"github.com/shashiranjanraj/kashvi-shop/app/resources"
	"github.com/shashiranjanraj/kashvi-shop/app/services"
	"github.com/shashiranjanraj/kashvi-shop/pkg/ctx"
)

const categoryNotFound = "Category not found or unauthorized"

type CategoryAPIController struct {
	categories *services.CategoryService
}

func NewCategoryAPIController(categories *services.CategoryService) *CategoryAPIController {
	return &CategoryAPIController{categories: categories}
}

func (cc *CategoryAPIController) Index(c *ctx.Context) {
	uid, ok := owner(c)
	if !ok {
		return
	}
	list, err := cc.categories.List(c.Context(), uid)
	if err != nil {
		fail(c, err, categoryNotFound)
		return
	}
	c.Success(resources.Categories(list))
}

func (cc *CategoryAPIController) Show(c *ctx.Context) {
	uid, ok := owner(c)
	if !ok {
		return
	}
	id, ok := c.ParamUint("id")
	if !ok {
		c.Forbidden(categoryNotFound)
		return
	}
	cat, err := cc.categories.Find(c.Context(), uid, id)
	if err != nil {
		fail(c, err, categoryNotFound)
		return
	}
	c.Success(resources.NewCategory(*cat))
}

func (cc *CategoryAPIController) Store(c *ctx.Context) {
	uid, ok := owner(c)
	if !ok {
		return
	}
	var in services.CategoryInput
	if !c.DecodeJSON(&in) {
		return
	}
	cat, err := cc.categories.Create(c.Context(), uid, in)
	if err != nil {
		fail(c, err, categoryNotFound)
		return
	}
	c.Created(map[string]any{"status": "Category created!", "id": cat.ID})
}

func (cc *CategoryAPIController) Update(c *ctx.Context) {
	uid, ok := owner(c)
	if !ok {
		return
	}
	id, ok := c.ParamUint("id")
	if !ok {
		c.Forbidden(categoryNotFound)
		return
	}
	var in services.CategoryInput
	if !c.DecodeJSON(&in) {
		return
	}
	if _, err := cc.categories.Update(c.Context(), uid, id, in); err != nil {
		fail(c, err, categoryNotFound)
		return
	}
	c.Success(map[string]string{"status": "Category updated!"})
}
