package parser

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Keywords scanned for in plain-text files, in reporting order.
var importantKeywords = []string{
	"error", "success", "failed", "warning", "total",
	"exception", "critical", "completed", "started", "finished",
}

// Keywords whose lines are captured verbatim as important lines.
var capturedKeywords = map[string]bool{
	"error":     true,
	"failed":    true,
	"exception": true,
	"critical":  true,
}

const (
	maxImportantCollected = 20
	maxImportantReported  = 10
	maxImportantLineLen   = 100
)

// ImportantLine is one captured line of interest from a text file.
type ImportantLine struct {
	LineNumber int    `json:"line_number"`
	Type       string `json:"type"`
	Content    string `json:"content"`
}

// TextInfo is the extraction result for .txt files.
type TextInfo struct {
	DetectedType   string          `json:"detected_type"`
	TotalLines     int             `json:"total_lines"`
	NonEmptyLines  int             `json:"non_empty_lines"`
	KeywordCounts  map[string]int  `json:"keyword_counts"`
	ImportantLines []ImportantLine `json:"important_lines"`
	TotalChars     int             `json:"total_chars"`
}

// TextParser scans plain text for notable keywords and classifies the file.
type TextParser struct{}

func (TextParser) Parse(in Input) (KeyInfo, error) {
	lines := strings.Split(in.Content, "\n")

	nonEmpty := 0
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			nonEmpty++
		}
	}

	counts := make(map[string]int, len(importantKeywords))
	for _, kw := range importantKeywords {
		counts[kw] = 0
	}
	important := make([]ImportantLine, 0, maxImportantCollected)

scan:
	for i, line := range lines {
		lineLower := strings.ToLower(line)
		for _, kw := range importantKeywords {
			if !strings.Contains(lineLower, kw) {
				continue
			}
			counts[kw]++
			if capturedKeywords[kw] {
				important = append(important, ImportantLine{
					LineNumber: i + 1,
					Type:       kw,
					Content:    truncateRunes(strings.TrimSpace(line), maxImportantLineLen),
				})
			}
			if len(important) >= maxImportantCollected {
				break scan
			}
		}
	}

	detected := "document"
	switch {
	case counts["error"] > 0 || counts["exception"] > 0:
		detected = "log_file"
	case counts["success"] > 0:
		detected = "process_log"
	case nonEmpty < 50:
		detected = "short_text"
	}

	if len(important) > maxImportantReported {
		important = important[:maxImportantReported]
	}

	return TextInfo{
		DetectedType:   detected,
		TotalLines:     len(lines),
		NonEmptyLines:  nonEmpty,
		KeywordCounts:  counts,
		ImportantLines: important,
		TotalChars:     utf8.RuneCountInString(in.Content),
	}, nil
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) > limit {
		return string(runes[:limit])
	}
	return s
}

func (info TextInfo) Summarize(filename string, sizeKB float64) string {
	summary := fmt.Sprintf("File TXT '%s' (%.1f KB). Detected as %s. Contains %d lines of text.",
		filename, sizeKB, info.DetectedType, info.NonEmptyLines)

	var found []string
	for _, kw := range importantKeywords {
		if info.KeywordCounts[kw] > 0 {
			found = append(found, fmt.Sprintf("%s(%d)", kw, info.KeywordCounts[kw]))
		}
	}
	if len(found) > 0 {
		summary += fmt.Sprintf(" Keywords: %s.", strings.Join(found, ", "))
	}
	return truncateSummary(summary)
}
