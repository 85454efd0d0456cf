package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInPlaceFilter(t *testing.T) {
	values := []int{1, 2, 3, 4, 5, 6}
	InPlaceFilter(&values, func(value int) bool {
		return value%2 == 0
	})
	assert.Equal(t, []int{2, 4, 6}, values)

	InPlaceFilter(&values, func(int) bool { return false })
	assert.Empty(t, values)
}
