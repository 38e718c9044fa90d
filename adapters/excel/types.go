package excel

// ExcelData is the raw content of a CSV or xlsx file: trimmed headers and string cells
type ExcelData struct {
	Headers []string
	Rows    [][]string
}
