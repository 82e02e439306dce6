package policies_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/kashvi-shop/app/models"
	"github.com/shashiranjanraj/kashvi-shop/app/policies"
)

var (
	_ policies.Ownable       = (*models.Product)(nil)
	_ policies.Ownable       = (*models.Category)(nil)
	_ policies.Ownable       = (*models.Order)(nil)
	_ policies.SoftDeletable = (*models.Product)(nil)
)

func TestOwnsAndVisible(t *testing.T) {
	live := &models.Product{UserID: 1}
	gone := &models.Product{UserID: 1, IsDeleted: true}
	order := &models.Order{UserID: 1}

	assert.True(t, policies.Owns(1, live))
	assert.False(t, policies.Owns(2, live))
	assert.False(t, policies.Owns(0, &models.Product{}))

	assert.True(t, policies.Visible(1, live))
	assert.False(t, policies.Visible(1, gone))
	assert.True(t, policies.Owns(1, gone))
	assert.True(t, policies.Visible(1, order))
}

func TestNilEntity(t *testing.T) {
	assert.False(t, policies.Owns(1, nil))
}
