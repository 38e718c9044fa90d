package testkit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShoppingDataGenerator_Deterministic(t *testing.T) {
	config := DefaultShoppingConfig()
	config.Days = 10

	c1, t1 := NewShoppingDataGenerator(config).Generate()
	c2, t2 := NewShoppingDataGenerator(config).Generate()

	assert.Equal(t, c1, c2)
	assert.Equal(t, t1, t2)
	assert.Len(t, c1, 10)
}

func TestShoppingDataGenerator_FunnelIsConsistent(t *testing.T) {
	control, test := NewShoppingDataGenerator(DefaultShoppingConfig()).Generate()

	for _, group := range [][]DailyRecord{control, test} {
		for i, r := range group {
			assert.GreaterOrEqual(t, r.Impression, r.Click, "day %d", i)
			assert.GreaterOrEqual(t, r.PageView, r.Click, "day %d", i)
			assert.GreaterOrEqual(t, r.Click, r.Purchase, "day %d", i)
			assert.GreaterOrEqual(t, r.Earning, 0.0, "day %d", i)
		}
	}
	assert.Equal(t, control[1].Date.AddDate(0, 0, 1), control[2].Date)
}

func TestShoppingDataGenerator_LiftRaisesPurchases(t *testing.T) {
	config := DefaultShoppingConfig()
	config.Lift = 0.5

	control, test := NewShoppingDataGenerator(config).Generate()

	sum := func(rs []DailyRecord) float64 {
		total := 0.0
		for _, r := range rs {
			total += r.Purchase
		}
		return total
	}
	assert.Greater(t, sum(test), 1.3*sum(control))
}

func TestWriteCSV(t *testing.T) {
	config := DefaultShoppingConfig()
	config.Days = 3
	records := NewShoppingDataGenerator(config).GenerateGroup(0)

	path := filepath.Join(t.TempDir(), "control.csv")
	require.NoError(t, WriteCSV(path, ';', records))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Date;Impression;Click;Page view;Purchase;Earning", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "1.08.2019;"))

	frame := Frame("control", records)
	assert.Equal(t, 3, frame.Len())
	assert.Equal(t, records[2].Earning, frame.Cell(2, 4))
}
