package dataset

import (
	"math"
	"testing"

	"gocompare/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrame_Column(t *testing.T) {
	f := NewFrame("control.csv", []string{"Click", "Purchase"})
	require.NoError(t, f.Append([]float64{10, 1}))
	require.NoError(t, f.Append([]float64{math.NaN(), 2}))
	require.NoError(t, f.Append([]float64{30, 3}))

	values, dropped, err := f.Column("click ")
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 30}, values)
	assert.Equal(t, 1, dropped)
	assert.Equal(t, 3, f.Len())
	assert.Equal(t, 2.0, f.Cell(1, 1))
}

func TestFrame_UnknownColumn(t *testing.T) {
	f := NewFrame("test.csv", []string{"Click"})
	_, _, err := f.Column("Earning")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrColumnNotFound)
	assert.Contains(t, err.Error(), "test.csv")
}

func TestFrame_AppendRejectsRaggedRows(t *testing.T) {
	f := NewFrame("x", []string{"a", "b"})
	assert.Error(t, f.Append([]float64{1}))

	row := []float64{1, 2}
	require.NoError(t, f.Append(row))
	row[0] = 99
	assert.Equal(t, 1.0, f.Cell(0, 0))
}
