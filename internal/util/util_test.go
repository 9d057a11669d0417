package util

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-1, 0, 1))
	assert.Equal(t, 1.0, Clamp(2, 0, 1))
	assert.Equal(t, 0.5, Clamp(0.5, 0, 1))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, 0.5, Normalize(7.5, 5, 10))
	assert.Equal(t, 0.0, Normalize(1, 5, 10))
	assert.Equal(t, 1.0, Normalize(8e9, 0, 7e9))
	assert.Equal(t, 0.0, Normalize(3, 4, 4))
	assert.Equal(t, 0.0, Normalize(math.NaN(), 0, 1))
}

func TestLerpAndSafeDiv(t *testing.T) {
	assert.Equal(t, 15.0, Lerp(10, 20, 0.5))
	assert.Equal(t, 2.5, SafeDiv(5, 2))
	assert.Equal(t, 0.0, SafeDiv(5, 0))
}

func TestPtr(t *testing.T) {
	p := Ptr(4.5)
	*p = 1
	assert.Equal(t, 1.0, *p)
}
