package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/kashvi-shop/app/models"
)

func widget() ProductInput {
	return ProductInput{
		Name:  ptr("Widget"),
		Price: ptr(decimal.RequireFromString("19.999")),
		Stock: ptr(5),
	}
}

func TestProductCreateAndFind(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	u := f.user(t, "u@shop.test")

	p, err := f.products.Create(ctx, u.ID, widget())
	require.NoError(t, err)
	assert.Equal(t, u.ID, p.UserID)
	assert.Equal(t, "20", p.Price.String())

	got, err := f.products.Find(ctx, u.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Widget", got.Name)
	assert.Equal(t, 5, got.Stock)
}

func TestProductCreateChecksInOrder(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	u := f.user(t, "u@shop.test")
	other := f.user(t, "o@shop.test")
	foreign, err := f.categories.Create(ctx, other.ID, CategoryInput{Name: "Theirs"})
	require.NoError(t, err)

	t.Run("missing key beats everything", func(t *testing.T) {
		in := widget()
		in.Stock = nil
		in.CategoryID = ptr(foreign.ID)
		in.Price = ptr(decimal.NewFromInt(-100))
		_, err := f.products.Create(ctx, u.ID, in)
		assert.ErrorIs(t, err, ErrMissingFields)
	})

	t.Run("foreign category beats field rules", func(t *testing.T) {
		in := widget()
		in.CategoryID = ptr(foreign.ID)
		in.Price = ptr(decimal.NewFromInt(-100))
		_, err := f.products.Create(ctx, u.ID, in)
		assert.ErrorIs(t, err, ErrInvalidCategory)
	})

	t.Run("unknown category", func(t *testing.T) {
		in := widget()
		in.CategoryID = ptr(uint(4242))
		_, err := f.products.Create(ctx, u.ID, in)
		assert.ErrorIs(t, err, ErrInvalidCategory)
	})

	t.Run("negative price", func(t *testing.T) {
		in := widget()
		in.Price = ptr(decimal.NewFromInt(-100))
		_, err := f.products.Create(ctx, u.ID, in)
		var invalid *ValidationError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, map[string]string{"price": "The price must be greater than or equal to 0."}, invalid.Fields)
	})

	t.Run("blank name", func(t *testing.T) {
		in := widget()
		in.Name = ptr("  ")
		_, err := f.products.Create(ctx, u.ID, in)
		var invalid *ValidationError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, map[string]string{"name": "The name field is required."}, invalid.Fields)
	})

	list, err := f.products.List(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestProductUpdateReplacesEveryField(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	u := f.user(t, "u@shop.test")
	cat, err := f.categories.Create(ctx, u.ID, CategoryInput{Name: "Tools"})
	require.NoError(t, err)

	p, err := f.products.Create(ctx, u.ID, widget())
	require.NoError(t, err)

	_, err = f.products.Update(ctx, u.ID, p.ID, ProductInput{
		Name:        ptr("Gadget"),
		Description: ptr("shiny"),
		Price:       ptr(decimal.RequireFromString("2.50")),
		Stock:       ptr(0),
		CategoryID:  ptr(cat.ID),
	})
	require.NoError(t, err)

	got, err := f.products.Find(ctx, u.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Gadget", got.Name)
	assert.Equal(t, "shiny", *got.Description)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("2.5")))
	assert.Equal(t, 0, got.Stock)
	require.NotNil(t, got.CategoryID)
	assert.Equal(t, cat.ID, *got.CategoryID)
}

func TestProductUpdateWithoutCategoryKeepsIt(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	u := f.user(t, "u@shop.test")
	cat, err := f.categories.Create(ctx, u.ID, CategoryInput{Name: "Tools"})
	require.NoError(t, err)

	in := widget()
	in.CategoryID = ptr(cat.ID)
	p, err := f.products.Create(ctx, u.ID, in)
	require.NoError(t, err)

	_, err = f.products.Update(ctx, u.ID, p.ID, ProductInput{
		Name:  ptr("Widget2"),
		Price: ptr(decimal.RequireFromString("9.99")),
		Stock: ptr(5),
	})
	require.NoError(t, err)

	got, err := f.products.Find(ctx, u.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Widget2", got.Name)
	require.NotNil(t, got.CategoryID)
	assert.Equal(t, cat.ID, *got.CategoryID)
}

func TestSoftDeletedProductDisappears(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	u := f.user(t, "u@shop.test")
	p, err := f.products.Create(ctx, u.ID, widget())
	require.NoError(t, err)

	require.NoError(t, f.products.Delete(ctx, u.ID, p.ID))

	_, err = f.products.Find(ctx, u.ID, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.products.Update(ctx, u.ID, p.ID, widget())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.products.Delete(ctx, u.ID, p.ID), ErrNotFound)

	list, err := f.products.List(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	var row models.Product
	require.NoError(t, f.db.First(&row, p.ID).Error)
	assert.True(t, row.IsDeleted)
}

func TestProductsAreInvisibleToOtherUsers(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	u := f.user(t, "u@shop.test")
	other := f.user(t, "o@shop.test")
	p, err := f.products.Create(ctx, u.ID, widget())
	require.NoError(t, err)

	_, err = f.products.Find(ctx, other.ID, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.products.Update(ctx, other.ID, p.ID, widget())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.products.Delete(ctx, other.ID, p.ID), ErrNotFound)

	list, err := f.products.List(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}
