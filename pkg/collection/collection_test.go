package collection

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapEmptyEncodesAsArray(t *testing.T) {
	out := Map([]int(nil), func(i int) string { return "x" })
	b, _ := json.Marshal(out)
	assert.Equal(t, "[]", string(b))
}

func TestUniqueAndCountBy(t *testing.T) {
	ids := []uint{4, 4, 7, 4, 9}
	assert.Equal(t, []uint{4, 7, 9}, Unique(ids))
	assert.Equal(t, map[uint]int{4: 3, 7: 1, 9: 1}, CountBy(ids))
}

func TestFilterAndKeyBy(t *testing.T) {
	type p struct {
		ID    uint
		Stock int
	}
	items := []p{{1, 0}, {2, 5}, {3, 1}}

	assert.Equal(t, []p{{2, 5}, {3, 1}}, Filter(items, func(x p) bool { return x.Stock > 0 }))
	assert.Equal(t, p{3, 1}, KeyBy(items, func(x p) uint { return x.ID })[3])
}
