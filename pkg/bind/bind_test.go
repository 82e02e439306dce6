package bind

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonReq(body string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

func formReq(v url.Values) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(v.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func TestDecodeRejectsMalformed(t *testing.T) {
	var dst map[string]any
	err := Decode(jsonReq(`{"name":`), &dst)
	assert.True(t, errors.Is(err, ErrInvalidJSON))
}

func TestJSONReportsRuleViolations(t *testing.T) {
	var in struct {
		Name  string `json:"name"  validate:"required"`
		Stock int    `json:"stock" validate:"gte=0"`
	}
	fields, err := JSON(jsonReq(`{"name":"","stock":-1}`), &in)
	require.NoError(t, err)
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "stock")
}

type orderForm struct {
	CustomerName string    `form:"customer_name" validate:"required"`
	Status       string    `form:"status"`
	CreatedAt    time.Time `form:"created_at"`
	Products     []uint    `form:"products"`
	Page         *int      `form:"page"`
}

func TestFormBindsRepeatedAndTimeFields(t *testing.T) {
	var in orderForm
	fields, err := Form(formReq(url.Values{
		"customer_name": {"Ada"},
		"status":        {"Shipped"},
		"created_at":    {"2024-03-01T09:30"},
		"products[]":    {"4", "4", "7"},
	}), &in)

	require.NoError(t, err)
	assert.Empty(t, fields)
	assert.Equal(t, "Ada", in.CustomerName)
	assert.Equal(t, []uint{4, 4, 7}, in.Products)
	assert.Equal(t, 9, in.CreatedAt.Hour())
	assert.Nil(t, in.Page)
}

func TestFormCollectsConversionAndRuleErrors(t *testing.T) {
	var in orderForm
	fields, err := Form(formReq(url.Values{
		"products": {"abc"},
	}), &in)

	require.NoError(t, err)
	assert.Contains(t, fields, "products")
	assert.Contains(t, fields, "customer_name")
}
