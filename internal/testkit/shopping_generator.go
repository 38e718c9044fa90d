package testkit

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strconv"
	"time"

	"gocompare/domain/dataset"
)

// ShoppingColumns are the numeric columns of a daily campaign export
var ShoppingColumns = []string{"Impression", "Click", "Page view", "Purchase", "Earning"}

// ShoppingGeneratorConfig configures the daily campaign data generator
type ShoppingGeneratorConfig struct {
	Days              int       `json:"days"`
	StartDate         time.Time `json:"start_date"`
	BaseImpressions   float64   `json:"base_impressions"`
	ClickRate         float64   `json:"click_rate"`
	PageViewsPerClick float64   `json:"page_views_per_click"`
	PurchaseRate      float64   `json:"purchase_rate"`
	AvgOrderValue     float64   `json:"avg_order_value"`
	// Lift multiplies the purchase rate of the test group (0.1 = +10%)
	Lift float64 `json:"lift"`
	Seed int64   `json:"seed"`
}

// DefaultShoppingConfig returns sensible defaults for campaign data generation
func DefaultShoppingConfig() ShoppingGeneratorConfig {
	return ShoppingGeneratorConfig{
		Days:              40,
		StartDate:         time.Date(2019, 8, 1, 0, 0, 0, 0, time.UTC),
		BaseImpressions:   100000,
		ClickRate:         0.05,
		PageViewsPerClick: 1.4,
		PurchaseRate:      0.1,
		AvgOrderValue:     25,
		Seed:              42,
	}
}

// DailyRecord is one day of campaign activity for one group
type DailyRecord struct {
	Date       time.Time
	Impression float64
	Click      float64
	PageView   float64
	Purchase   float64
	Earning    float64
}

func (r DailyRecord) values() []float64 {
	return []float64{r.Impression, r.Click, r.PageView, r.Purchase, r.Earning}
}

// ShoppingDataGenerator generates daily control and test group campaign data
type ShoppingDataGenerator struct {
	config ShoppingGeneratorConfig
	rng    *rand.Rand
}

// NewShoppingDataGenerator creates a new shopping data generator
func NewShoppingDataGenerator(config ShoppingGeneratorConfig) *ShoppingDataGenerator {
	return &ShoppingDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate returns the control group followed by the test group with the configured lift
func (g *ShoppingDataGenerator) Generate() (control, test []DailyRecord) {
	return g.GenerateGroup(0), g.GenerateGroup(g.config.Lift)
}

// GenerateGroup generates one group; lift scales its purchase rate
func (g *ShoppingDataGenerator) GenerateGroup(lift float64) []DailyRecord {
	c := g.config
	records := make([]DailyRecord, 0, c.Days)
	for d := 0; d < c.Days; d++ {
		impressions := g.noisy(c.BaseImpressions, 0.1)
		clicks := g.noisy(impressions*c.ClickRate, 0.08)
		pageViews := math.Max(clicks, g.noisy(clicks*c.PageViewsPerClick, 0.05))
		purchases := g.noisy(clicks*c.PurchaseRate*(1+lift), 0.1)
		earning := math.Round(purchases*c.AvgOrderValue*(1+0.05*g.rng.NormFloat64())*100) / 100

		records = append(records, DailyRecord{
			Date:       c.StartDate.AddDate(0, 0, d),
			Impression: impressions,
			Click:      clicks,
			PageView:   pageViews,
			Purchase:   purchases,
			Earning:    math.Max(0, earning),
		})
	}
	return records
}

// noisy returns a non-negative whole count around mean with relative spread
func (g *ShoppingDataGenerator) noisy(mean, spread float64) float64 {
	return math.Max(0, math.Round(mean*(1+spread*g.rng.NormFloat64())))
}

// Frame converts records to a dataset frame with ShoppingColumns
func Frame(source string, records []DailyRecord) *dataset.Frame {
	f := dataset.NewFrame(source, ShoppingColumns)
	for _, r := range records {
		_ = f.Append(r.values())
	}
	return f
}

// WriteCSV writes records with a Date column first, the way campaign exports look
func WriteCSV(path string, delimiter rune, records []DailyRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	w.Comma = delimiter
	if err := w.Write(append([]string{"Date"}, ShoppingColumns...)); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{r.Date.Format("2.01.2006")}
		for _, v := range r.values() {
			row = append(row, strconv.FormatFloat(v, 'f', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return file.Close()
}
