package internal

import (
	"maps"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConcat2(t *testing.T) {
	assert := assert.New(t)

	first := slices.All([]string{"a", "b"})
	second := slices.All([]string{"c"})

	var keys []int
	var values []string
	for key, value := range Concat2(first, second) {
		keys = append(keys, key)
		values = append(values, value)
	}
	assert.Equal([]int{0, 1, 0}, keys)
	assert.Equal([]string{"a", "b", "c"}, values)

	// Early stop.
	values = nil
	for _, value := range Concat2(first, second) {
		values = append(values, value)
		if value == "b" {
			break
		}
	}
	assert.Equal([]string{"a", "b"}, values)

	assert.Empty(maps.Collect(Concat2[string, int]()))
}
