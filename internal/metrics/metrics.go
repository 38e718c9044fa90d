// Package metrics derives per-row ratio metrics (conversion, average purchase value, ...)
// from the raw experiment columns before they are compared.
package metrics

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gocompare/domain/core"
	"gocompare/domain/dataset"

	"github.com/montanaflynn/stats"
)

// NoRounding disables rounding of derived values
const NoRounding = -1

// Definition is a ratio metric: Numerator / Denominator per row
type Definition struct {
	Name        string `json:"name"`
	Numerator   string `json:"numerator"`
	Denominator string `json:"denominator"`
	// Places rounds each derived value; NoRounding keeps full precision
	Places int `json:"places"`
}

// Builtin holds the metrics used by the experiment reports
var Builtin = []Definition{
	{Name: "Conversion", Numerator: "Purchase", Denominator: "Page view", Places: 2},
	{Name: "Conversion Rate", Numerator: "Purchase", Denominator: "Click", Places: NoRounding},
	{Name: "Average Purchase Value", Numerator: "Earning", Denominator: "Purchase", Places: NoRounding},
	{Name: "Average Earning Per Click", Numerator: "Earning", Denominator: "Click", Places: NoRounding},
}

// Lookup finds a builtin metric by name, ignoring case
func Lookup(name string) (Definition, bool) {
	for _, d := range Builtin {
		if strings.EqualFold(d.Name, strings.TrimSpace(name)) {
			return d, true
		}
	}
	return Definition{}, false
}

// Parse reads "name=numerator/denominator" with an optional ":places" suffix,
// e.g. "Conversion=Purchase/Page view:2".
func Parse(s string) (Definition, error) {
	name, expr, ok := strings.Cut(s, "=")
	if !ok {
		return Definition{}, core.NewConfigError("metric", fmt.Sprintf("%q: want name=numerator/denominator", s))
	}

	places := NoRounding
	if body, suffix, found := strings.Cut(expr, ":"); found {
		p, err := strconv.Atoi(strings.TrimSpace(suffix))
		if err != nil || p < 0 {
			return Definition{}, core.NewConfigError("metric", fmt.Sprintf("%q: rounding places must be a non-negative integer", s))
		}
		places = p
		expr = body
	}

	num, den, ok := strings.Cut(expr, "/")
	d := Definition{
		Name:        strings.TrimSpace(name),
		Numerator:   strings.TrimSpace(num),
		Denominator: strings.TrimSpace(den),
		Places:      places,
	}
	if !ok || d.Name == "" || d.Numerator == "" || d.Denominator == "" {
		return Definition{}, core.NewConfigError("metric", fmt.Sprintf("%q: want name=numerator/denominator", s))
	}
	return d, nil
}

// Resolve accepts either a builtin metric name or a full definition
func Resolve(s string) (Definition, error) {
	if strings.Contains(s, "=") {
		return Parse(s)
	}
	if d, ok := Lookup(s); ok {
		return d, nil
	}
	return Definition{}, core.NewConfigError("metric", fmt.Sprintf("unknown metric %q", s))
}

// Columns returns the source columns the metric reads
func (d Definition) Columns() []string {
	return []string{d.Numerator, d.Denominator}
}

func (d Definition) String() string {
	s := fmt.Sprintf("%s=%s/%s", d.Name, d.Numerator, d.Denominator)
	if d.Places != NoRounding {
		s += fmt.Sprintf(":%d", d.Places)
	}
	return s
}

// Derive computes the metric for every row of f. Rows with a missing value or a zero
// denominator are skipped and counted.
func (d Definition) Derive(f *dataset.Frame) ([]float64, int, error) {
	ni, err := f.Index(d.Numerator)
	if err != nil {
		return nil, 0, err
	}
	di, err := f.Index(d.Denominator)
	if err != nil {
		return nil, 0, err
	}

	values := make([]float64, 0, f.Len())
	skipped := 0
	for r := 0; r < f.Len(); r++ {
		num, den := f.Cell(r, ni), f.Cell(r, di)
		if !finite(num) || !finite(den) || den == 0 {
			skipped++
			continue
		}
		v := num / den
		if d.Places != NoRounding {
			if v, err = stats.Round(v, d.Places); err != nil {
				return nil, 0, fmt.Errorf("%s row %d: %w", d.Name, r+1, err)
			}
		}
		values = append(values, v)
	}
	return values, skipped, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
