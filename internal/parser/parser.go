// Package parser contains the per-format extraction routines and the typed
// dispatch table that maps a recognized file type to its parser.
package parser

import "fmt"

// FileType is a recognized upload extension.
type FileType string

const (
	TypeSQL  FileType = "sql"
	TypeJSON FileType = "json"
	TypeTXT  FileType = "txt"
	TypeCSV  FileType = "csv"
)

// SupportedTypes lists every recognized file type, in the order they are
// reported to clients.
var SupportedTypes = []FileType{TypeSQL, TypeJSON, TypeTXT, TypeCSV}

// ParseFileType maps a lowercase extension (without the dot) to a FileType.
func ParseFileType(ext string) (FileType, bool) {
	switch FileType(ext) {
	case TypeSQL, TypeJSON, TypeTXT, TypeCSV:
		return FileType(ext), true
	}
	return "", false
}

// Input is the payload handed to a parser: the decoded file content plus
// the on-disk path for parsers that stream the file themselves.
type Input struct {
	Content string
	Path    string
}

// KeyInfo is the structured extraction result of one parser. Summarize
// renders the short natural-language summary for the file it came from.
//
// Content-level anomalies (malformed JSON, unreadable CSV) are reported
// inside the KeyInfo value, not as an error: the job still completes and the
// anomaly is surfaced to the caller as data. A non-nil error from Parse
// means the engine itself could not run and fails the job.
type KeyInfo interface {
	Summarize(filename string, sizeKB float64) string
}

// Parser extracts structural metadata from one file format.
type Parser interface {
	Parse(in Input) (KeyInfo, error)
}

// Registry is the typed dispatch table from file type to parser.
type Registry map[FileType]Parser

// NewRegistry builds the default registry covering every supported type.
func NewRegistry() Registry {
	return Registry{
		TypeSQL:  SQLParser{},
		TypeJSON: JSONParser{},
		TypeTXT:  TextParser{},
		TypeCSV:  CSVParser{},
	}
}

// Lookup returns the parser for the given type.
func (r Registry) Lookup(ft FileType) (Parser, error) {
	p, ok := r[ft]
	if !ok {
		return nil, fmt.Errorf("parser: no parser registered for type %q", ft)
	}
	return p, nil
}

// maxSummaryLen bounds every generated summary.
const maxSummaryLen = 500

func truncateSummary(s string) string {
	runes := []rune(s)
	if len(runes) > maxSummaryLen {
		return string(runes[:maxSummaryLen])
	}
	return s
}
