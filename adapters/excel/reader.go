package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"gocompare/domain/core"
	"gocompare/domain/dataset"
	"gocompare/internal"
	"gocompare/ports"

	"github.com/xuri/excelize/v2"
)

// DataReader loads experiment columns from an xlsx or CSV file. The file is parsed once
// and cached; a DataReader is safe for concurrent use.
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	config   ReaderConfig
	logger   *internal.Logger

	mu   sync.Mutex
	data *ExcelData
}

var _ ports.SampleSource = (*DataReader)(nil)

// NewDataReader creates a reader; the file type follows the extension
func NewDataReader(filePath string, config ReaderConfig) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	if config.Delimiter == 0 {
		config.Delimiter = DefaultReaderConfig().Delimiter
	}
	return &DataReader{
		filePath: filePath,
		fileType: fileType,
		config:   config,
		logger:   internal.DefaultLogger.With("DataReader"),
	}
}

// Name returns the file path
func (r *DataReader) Name() string {
	return r.filePath
}

// ReadData reads the file into headers and string rows, caching the result
func (r *DataReader) ReadData() (*ExcelData, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.data != nil {
		return r.data, nil
	}

	r.logger.Debug("reading %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	var (
		rows [][]string
		err  error
	)
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	case "xlsx":
		rows, err = r.readExcelRows()
	default:
		err = fmt.Errorf("unsupported file type: %s", r.fileType)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s must have a header row and at least one data row", r.filePath)
	}

	r.data = processRows(rows)
	r.logger.Info("%s loaded (%d columns, %d rows)", r.filePath, len(r.data.Headers), len(r.data.Rows))
	return r.data, nil
}

func (r *DataReader) readExcelRows() ([][]string, error) {
	start := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := r.config.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%s has no sheets", r.filePath)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	r.logger.Debug("sheet %q read in %.2fms (%d rows)", sheet, float64(time.Since(start).Nanoseconds())/1e6, len(rows))
	return rows, nil
}

func (r *DataReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = r.config.Delimiter
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

// processRows trims cells and pads short rows so every row has one cell per header
func processRows(rows [][]string) *ExcelData {
	headers := make([]string, len(rows[0]))
	for i, header := range rows[0] {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(header, "\ufeff"))
	}

	data := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		cells := make([]string, len(headers))
		for j := 0; j < len(row) && j < len(headers); j++ {
			cells[j] = strings.TrimSpace(row[j])
		}
		data = append(data, cells)
	}
	return &ExcelData{Headers: headers, Rows: data}
}

// Columns returns the header row
func (r *DataReader) Columns(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := r.ReadData()
	if err != nil {
		return nil, err
	}
	cols := make([]string, len(data.Headers))
	copy(cols, data.Headers)
	return cols, nil
}

// LoadColumn returns the numeric values of one column; empty and non-numeric cells are dropped
func (r *DataReader) LoadColumn(ctx context.Context, column string) ([]float64, error) {
	frame, err := r.LoadFrame(ctx, column)
	if err != nil {
		return nil, err
	}
	values, dropped, err := frame.Column(frame.Columns[0])
	if err != nil {
		return nil, err
	}
	if dropped > 0 {
		r.logger.Warn("%s: dropped %d missing or non-numeric cells from %q", r.filePath, dropped, column)
	}
	return values, nil
}

// LoadFrame parses the requested columns into a row-aligned frame
func (r *DataReader) LoadFrame(ctx context.Context, columns ...string) (*dataset.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, ErrNoColumns
	}
	data, err := r.ReadData()
	if err != nil {
		return nil, err
	}

	header := dataset.NewFrame(r.filePath, data.Headers)
	indexes := make([]int, len(columns))
	names := make([]string, len(columns))
	for i, col := range columns {
		idx, err := header.Index(col)
		if err != nil {
			return nil, err
		}
		indexes[i] = idx
		names[i] = data.Headers[idx]
	}

	frame := dataset.NewFrame(r.filePath, names)
	for _, row := range data.Rows {
		values := make([]float64, len(indexes))
		for i, idx := range indexes {
			values[i] = parseCell(row[idx])
		}
		if err := frame.Append(values); err != nil {
			return nil, err
		}
	}
	return frame, nil
}

// parseCell converts a cell to a number; blanks and text become NaN
func parseCell(cell string) float64 {
	if cell == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// ErrNoColumns is returned when a frame is requested without column names
var ErrNoColumns = fmt.Errorf("%w: no columns requested", core.ErrColumnNotFound)
