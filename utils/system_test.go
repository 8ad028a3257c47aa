package utils

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSystem(t *testing.T) {
	assert.True(t, strings.HasPrefix(GetMemUsage(), "Alloc = "))
	assert.False(t, IsNan(1.))
	assert.True(t, IsNan(math.NaN()))
	assert.True(t, IsNan(math.Inf(-1)))
	assert.True(t, IsNan([]float64{0, 1, math.NaN()}))
	assert.False(t, IsNan([]float64{0, 1}))
	assert.True(t, IsNan([6]float64{0, 0, 0, 0, 0, math.Inf(1)}))
	assert.False(t, IsNan("not a number"))
}
