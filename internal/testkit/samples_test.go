package testkit

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_Reproducible(t *testing.T) {
	a := NewGenerator(7).Normal(20, 10, 2)
	b := NewGenerator(7).Normal(20, 10, 2)
	assert.Equal(t, a.Values(), b.Values())
	assert.Equal(t, 20, a.Len())
}

func TestGenerator_Shapes(t *testing.T) {
	g := NewGenerator(1)

	for _, v := range g.Uniform(200, 2, 3).Values() {
		assert.GreaterOrEqual(t, v, 2.0)
		assert.Less(t, v, 3.0)
	}
	for _, v := range g.Exponential(200, 0.5).Values() {
		assert.GreaterOrEqual(t, v, 0.0)
	}
	assert.True(t, g.Constant(5, 5).HasZeroVariance())
}

func TestAcceptanceRate(t *testing.T) {
	rate, err := AcceptanceRate(4, func(i int) (bool, error) { return i%2 == 0, nil })
	require.NoError(t, err)
	assert.Equal(t, 0.5, rate)

	boom := errors.New("boom")
	_, err = AcceptanceRate(3, func(i int) (bool, error) { return false, boom })
	assert.ErrorIs(t, err, boom)

	rate, err = AcceptanceRate(0, nil)
	require.NoError(t, err)
	assert.Zero(t, rate)
}
