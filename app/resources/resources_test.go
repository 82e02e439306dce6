package resources

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/kashvi-shop/app/models"
)

func TestProductHidesInternalFields(t *testing.T) {
	cat := uint(4)
	p := models.Product{ID: 7, Name: "Widget", Price: decimal.RequireFromString("9.9"), Stock: 5, IsDeleted: true, UserID: 3, CategoryID: &cat}

	raw, err := json.Marshal(NewProduct(p))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, 9.9, got["price"])
	assert.Equal(t, float64(4), got["category_id"])
	assert.Nil(t, got["description"])
	assert.NotContains(t, got, "user_id")
	assert.NotContains(t, got, "is_deleted")
	assert.Contains(t, string(raw), `"price":9.90`)
}

func TestOrderListsOneLinePerUnit(t *testing.T) {
	w := &models.Product{ID: 1, Name: "Widget"}
	o := models.Order{
		ID: 2, CustomerName: "Ada", Status: models.StatusShipped,
		CreatedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Items:     []models.OrderItem{{ProductID: 1, Product: w}, {ProductID: 1, Product: w}},
	}

	dto := NewOrder(o)
	assert.Equal(t, "2024-05-01T10:00:00Z", dto.CreatedAt)
	assert.Equal(t, "Shipped", dto.Status)
	assert.Equal(t, []OrderLine{{1, "Widget"}, {1, "Widget"}}, dto.Products)
}

func TestEmptyListsEncodeAsArrays(t *testing.T) {
	raw, err := json.Marshal(Products(nil))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))

	raw, err = json.Marshal(NewOrder(models.Order{}).Products)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestUserNeverCarriesPassword(t *testing.T) {
	raw, err := json.Marshal(NewUser(models.User{ID: 1, Email: "a@b.co", Password: "hash"}))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hash")
	assert.Contains(t, string(raw), `"roles":[]`)
}
