package excel

// ReaderConfig controls how a DataReader parses its file
type ReaderConfig struct {
	// Delimiter separates CSV fields. The experiment exports use ';'.
	Delimiter rune `json:"delimiter"`
	// Sheet names the xlsx sheet to read; empty means the first sheet
	Sheet string `json:"sheet"`
}

// DefaultReaderConfig returns the semicolon-delimited, first-sheet defaults
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{Delimiter: ';'}
}
