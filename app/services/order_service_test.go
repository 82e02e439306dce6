package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/kashvi-shop/app/models"
	"github.com/shashiranjanraj/kashvi-shop/app/repositories"
	"github.com/shashiranjanraj/kashvi-shop/pkg/metrics"
)

func TestCreateReservesOneUnitPerLine(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	u := f.user(t, "u@shop.test")
	a := f.product(t, u.ID, "A", 5)
	b := f.product(t, u.ID, "B", 3)
	before := testutil.ToFloat64(metrics.OrdersTotal.WithLabelValues("create"))
	reserved := testutil.ToFloat64(metrics.StockUnits.WithLabelValues("reserve"))

	o, err := f.orders.Create(ctx, u.ID, OrderInput{
		CustomerName: "Ada",
		Status:       models.StatusShipped,
		ProductIDs:   []uint{a.ID, b.ID, a.ID},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, f.stock(t, a.ID))
	assert.Equal(t, 2, f.stock(t, b.ID))
	assert.Equal(t, models.StatusShipped, o.Status)
	assert.WithinDuration(t, time.Now(), o.CreatedAt, time.Minute)

	stored, err := f.orders.Find(ctx, u.ID, o.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{a.ID, b.ID, a.ID}, stored.ProductIDs())

	require.Len(t, f.moved, 2)
	assert.Equal(t, StockAdjusted{OwnerID: u.ID, ProductID: a.ID, Stock: 3, Delta: -2, Reason: ReasonOrderCreated}, f.moved[0])
	assert.Equal(t, StockAdjusted{OwnerID: u.ID, ProductID: b.ID, Stock: 2, Delta: -1, Reason: ReasonOrderCreated}, f.moved[1])

	assert.Equal(t, before+1, testutil.ToFloat64(metrics.OrdersTotal.WithLabelValues("create")))
	assert.Equal(t, reserved+3, testutil.ToFloat64(metrics.StockUnits.WithLabelValues("reserve")))
}

func TestCreateDefaultsStatusAndAcceptsNoProducts(t *testing.T) {
	f := setup(t)
	u := f.user(t, "u@shop.test")

	o, err := f.orders.Create(context.Background(), u.ID, OrderInput{CustomerName: "Ada"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, o.Status)
	assert.Empty(t, o.Items)
	assert.Empty(t, f.moved)
}

func TestCreateKeepsGivenCreatedAt(t *testing.T) {
	f := setup(t)
	u := f.user(t, "u@shop.test")
	at := time.Date(2023, 3, 4, 5, 6, 0, 0, time.UTC)

	o, err := f.orders.Create(context.Background(), u.ID, OrderInput{CustomerName: "Ada", CreatedAt: &at})
	require.NoError(t, err)

	stored, err := f.orders.Find(context.Background(), u.ID, o.ID)
	require.NoError(t, err)
	assert.True(t, at.Equal(stored.CreatedAt), "got %s", stored.CreatedAt)
}

func TestCreateLetsStockGoNegative(t *testing.T) {
	f := setup(t)
	u := f.user(t, "u@shop.test")
	a := f.product(t, u.ID, "A", 0)

	_, err := f.orders.Create(context.Background(), u.ID, OrderInput{CustomerName: "Ada", ProductIDs: []uint{a.ID}})
	require.NoError(t, err)
	assert.Equal(t, -1, f.stock(t, a.ID))
}

func TestCreateRejectsForeignOrDeletedProducts(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	u := f.user(t, "u@shop.test")
	other := f.user(t, "o@shop.test")
	mine := f.product(t, u.ID, "Mine", 4)
	theirs := f.product(t, other.ID, "Theirs", 4)
	gone := f.product(t, u.ID, "Gone", 4)
	require.NoError(t, f.productRepo.SoftDelete(ctx, gone.ID))

	for name, ids := range map[string][]uint{
		"foreign": {mine.ID, theirs.ID},
		"deleted": {mine.ID, gone.ID},
		"missing": {mine.ID, 9999},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.orders.Create(ctx, u.ID, OrderInput{CustomerName: "Ada", ProductIDs: ids})
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}

	assert.Equal(t, 4, f.stock(t, mine.ID))
	assert.Equal(t, 4, f.stock(t, theirs.ID))
	list, err := f.orders.List(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreateValidatesInput(t *testing.T) {
	f := setup(t)
	u := f.user(t, "u@shop.test")

	_, err := f.orders.Create(context.Background(), u.ID, OrderInput{Status: "Lost"})
	var invalid *ValidationError
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Fields, "customer_name")
	assert.Equal(t, "The selected status is invalid.", invalid.Fields["status"])
}

func TestUpdateReplacesLinesWithoutTouchingStock(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	u := f.user(t, "u@shop.test")
	a := f.product(t, u.ID, "A", 5)
	b := f.product(t, u.ID, "B", 5)

	o, err := f.orders.Create(ctx, u.ID, OrderInput{CustomerName: "Ada", ProductIDs: []uint{a.ID}})
	require.NoError(t, err)

	updated, err := f.orders.Update(ctx, u.ID, o.ID, OrderInput{
		CustomerName: "Grace",
		Status:       models.StatusDelivered,
		ProductIDs:   []uint{b.ID, b.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, "Grace", updated.CustomerName)
	assert.Equal(t, o.CreatedAt.Unix(), updated.CreatedAt.Unix())

	stored, err := f.orders.Find(ctx, u.ID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, stored.Status)
	assert.Equal(t, []uint{b.ID, b.ID}, stored.ProductIDs())

	assert.Equal(t, 4, f.stock(t, a.ID))
	assert.Equal(t, 5, f.stock(t, b.ID))
}

func TestUpdateWithoutStatusKeepsIt(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	u := f.user(t, "u@shop.test")
	a := f.product(t, u.ID, "A", 5)

	o, err := f.orders.Create(ctx, u.ID, OrderInput{CustomerName: "Ada", ProductIDs: []uint{a.ID}})
	require.NoError(t, err)
	_, err = f.orders.Update(ctx, u.ID, o.ID, OrderInput{CustomerName: "Ada", Status: models.StatusShipped, ProductIDs: []uint{a.ID}})
	require.NoError(t, err)

	_, err = f.orders.Update(ctx, u.ID, o.ID, OrderInput{CustomerName: "Ada Lovelace", ProductIDs: []uint{a.ID}})
	require.NoError(t, err)

	stored, err := f.orders.Find(ctx, u.ID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", stored.CustomerName)
	assert.Equal(t, models.StatusShipped, stored.Status)
}

func TestDeleteRestoresOneUnitPerLine(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	u := f.user(t, "u@shop.test")
	a := f.product(t, u.ID, "A", 5)
	b := f.product(t, u.ID, "B", 3)
	restored := testutil.ToFloat64(metrics.StockUnits.WithLabelValues("restore"))

	o, err := f.orders.Create(ctx, u.ID, OrderInput{CustomerName: "Ada", ProductIDs: []uint{a.ID, a.ID, b.ID}})
	require.NoError(t, err)
	f.moved = nil

	require.NoError(t, f.orders.Delete(ctx, u.ID, o.ID))

	assert.Equal(t, 5, f.stock(t, a.ID))
	assert.Equal(t, 3, f.stock(t, b.ID))
	_, err = f.orders.Find(ctx, u.ID, o.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var lines int64
	require.NoError(t, f.db.Model(&models.OrderItem{}).Where("order_id = ?", o.ID).Count(&lines).Error)
	assert.Zero(t, lines)

	require.Len(t, f.moved, 2)
	assert.Equal(t, 2, f.moved[0].Delta)
	assert.Equal(t, ReasonOrderDeleted, f.moved[0].Reason)
	assert.Equal(t, restored+3, testutil.ToFloat64(metrics.StockUnits.WithLabelValues("restore")))
}

func TestDeleteTwiceRestoresStockOnce(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	u := f.user(t, "u@shop.test")
	a := f.product(t, u.ID, "A", 5)

	o, err := f.orders.Create(ctx, u.ID, OrderInput{CustomerName: "Ada", ProductIDs: []uint{a.ID}})
	require.NoError(t, err)
	require.NoError(t, f.orders.Delete(ctx, u.ID, o.ID))
	assert.ErrorIs(t, f.orders.Delete(ctx, u.ID, o.ID), ErrNotFound)
	assert.Equal(t, 5, f.stock(t, a.ID))
}

func TestOrderRowDeleteReportsMissingRow(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	u := f.user(t, "u@shop.test")

	o, err := f.orders.Create(ctx, u.ID, OrderInput{CustomerName: "Ada"})
	require.NoError(t, err)
	require.NoError(t, f.orderRepo.Delete(ctx, o.ID))
	assert.ErrorIs(t, f.orderRepo.Delete(ctx, o.ID), repositories.ErrNotFound)
}

func TestDeleteRefusedWhileAProductIsOutOfStock(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	u := f.user(t, "u@shop.test")
	a := f.product(t, u.ID, "Widget", 1)
	b := f.product(t, u.ID, "Gadget", 9)

	o, err := f.orders.Create(ctx, u.ID, OrderInput{CustomerName: "Ada", ProductIDs: []uint{b.ID, a.ID}})
	require.NoError(t, err)
	require.Equal(t, 0, f.stock(t, a.ID))
	f.moved = nil

	err = f.orders.Delete(ctx, u.ID, o.ID)
	var oos *OutOfStockError
	require.ErrorAs(t, err, &oos)
	assert.Equal(t, "Product Widget is out of stock!", err.Error())

	assert.Equal(t, 0, f.stock(t, a.ID))
	assert.Equal(t, 8, f.stock(t, b.ID))
	_, err = f.orders.Find(ctx, u.ID, o.ID)
	assert.NoError(t, err)
	assert.Empty(t, f.moved)
}

func TestOrdersAreInvisibleToOtherUsers(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	u := f.user(t, "u@shop.test")
	other := f.user(t, "o@shop.test")
	a := f.product(t, u.ID, "A", 5)

	o, err := f.orders.Create(ctx, u.ID, OrderInput{CustomerName: "Ada", ProductIDs: []uint{a.ID}})
	require.NoError(t, err)

	_, err = f.orders.Find(ctx, other.ID, o.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.orders.Update(ctx, other.ID, o.ID, OrderInput{CustomerName: "Eve"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.orders.Delete(ctx, other.ID, o.ID), ErrNotFound)

	list, err := f.orders.List(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, 4, f.stock(t, a.ID))
}

func TestOutOfStockErrorIsDistinctFromNotFound(t *testing.T) {
	err := error(&OutOfStockError{Product: "X"})
	assert.False(t, errors.Is(err, ErrNotFound))
}
