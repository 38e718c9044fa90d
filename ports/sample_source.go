package ports

import (
	"context"

	"gocompare/domain/dataset"
)

// SampleSource provides read-only access to the numeric columns of one group
// (control or test) of an experiment.
type SampleSource interface {
	// Name identifies the source in logs and error messages
	Name() string

	// Columns lists the column names in source order
	Columns(ctx context.Context) ([]string, error)

	// LoadColumn returns the finite values of one column; missing cells are dropped
	LoadColumn(ctx context.Context, column string) ([]float64, error)

	// LoadFrame returns the requested columns row-aligned, missing cells as NaN
	LoadFrame(ctx context.Context, columns ...string) (*dataset.Frame, error)
}
