package parser

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const (
	// csvScanLimit caps how many data rows are examined; beyond it only the
	// total row count is taken from a line scan.
	csvScanLimit = 1000

	maxMainColumns = 10
	maxSampleRows  = 3
)

// CSVInfo is the extraction result for .csv files. Any read or parse
// problem is reported in Error and the job still completes.
type CSVInfo struct {
	Rows            int               `json:"rows"`
	Columns         int               `json:"columns"`
	MainColumns     []string          `json:"main_columns,omitempty"`
	AllColumns      []string          `json:"all_columns,omitempty"`
	ColumnTypes     map[string]string `json:"column_types,omitempty"`
	NullCounts      map[string]int    `json:"null_counts,omitempty"`
	SampleFirstRows []map[string]any  `json:"sample_first_rows,omitempty"`
	Error           string            `json:"error,omitempty"`
}

// CSVParser reads tabular files from disk: header, bounded row scan, column
// type inference and null accounting.
type CSVParser struct{}

func (CSVParser) Parse(in Input) (KeyInfo, error) {
	f, err := os.Open(in.Path)
	if err != nil {
		return CSVInfo{Error: fmt.Sprintf("Error: %v", err)}, nil
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return CSVInfo{Error: "Empty CSV file"}, nil
		}
		return CSVInfo{Error: fmt.Sprintf("Error parsing CSV: %v", err)}, nil
	}

	records := make([][]string, 0, 64)
	for len(records) < csvScanLimit {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return CSVInfo{Error: fmt.Sprintf("Error parsing CSV: %v", err)}, nil
		}
		records = append(records, record)
	}

	rows := len(records)
	if rows == csvScanLimit {
		if total, err := countLines(in.Path); err == nil {
			rows = total - 1
		}
	}

	columnTypes := make(map[string]string, len(header))
	nullCounts := make(map[string]int)
	for col, name := range header {
		values := make([]string, len(records))
		nulls := 0
		for i, record := range records {
			values[i] = record[col]
			if strings.TrimSpace(record[col]) == "" {
				nulls++
			}
		}
		columnTypes[name] = inferColumnType(values)
		if nulls > 0 {
			nullCounts[name] = nulls
		}
	}

	sampleCount := len(records)
	if sampleCount > maxSampleRows {
		sampleCount = maxSampleRows
	}
	samples := make([]map[string]any, 0, sampleCount)
	for _, record := range records[:sampleCount] {
		row := make(map[string]any, len(header))
		for col, name := range header {
			row[name] = convertCell(record[col], columnTypes[name])
		}
		samples = append(samples, row)
	}

	mainColumns := header
	if len(mainColumns) > maxMainColumns {
		mainColumns = mainColumns[:maxMainColumns]
	}

	return CSVInfo{
		Rows:            rows,
		Columns:         len(header),
		MainColumns:     mainColumns,
		AllColumns:      header,
		ColumnTypes:     columnTypes,
		NullCounts:      nullCounts,
		SampleFirstRows: samples,
	}, nil
}

func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	n := 0
	for scanner.Scan() {
		n++
	}
	return n, scanner.Err()
}

func isBoolToken(s string) bool {
	switch s {
	case "true", "false", "True", "False", "TRUE", "FALSE":
		return true
	}
	return false
}

// inferColumnType mirrors the dtype names pandas reports: integer columns
// are int64 unless they contain empties (NaN promotes to float64), numeric
// columns are float64, uniform booleans are bool, everything else object.
func inferColumnType(values []string) string {
	hasEmpty := false
	seen := 0
	allInt, allFloat, allBool := true, true, true

	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			hasEmpty = true
			continue
		}
		seen++
		if _, err := strconv.ParseInt(v, 10, 64); err != nil {
			allInt = false
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			allFloat = false
		}
		if !isBoolToken(v) {
			allBool = false
		}
	}

	switch {
	case seen == 0:
		return "float64"
	case allInt && !hasEmpty:
		return "int64"
	case allFloat:
		return "float64"
	case allBool && !hasEmpty:
		return "bool"
	default:
		return "object"
	}
}

func convertCell(value, dtype string) any {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	switch dtype {
	case "int64":
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	case "float64":
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	case "bool":
		return value == "true" || value == "True" || value == "TRUE"
	}
	return value
}

func (info CSVInfo) Summarize(filename string, sizeKB float64) string {
	summary := fmt.Sprintf("File CSV '%s' (%.1f KB).", filename, sizeKB)
	if info.Error != "" {
		summary += " Tabular CSV data."
		return truncateSummary(summary)
	}

	mainCols := info.MainColumns
	if len(mainCols) > 5 {
		mainCols = mainCols[:5]
	}
	summary += fmt.Sprintf(" Contains %d rows of data across %d columns. Main columns: %s.",
		info.Rows, info.Columns, strings.Join(mainCols, ", "))
	return truncateSummary(summary)
}
