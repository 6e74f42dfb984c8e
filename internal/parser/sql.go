package parser

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Statement patterns that name a table. Backticks and single quotes around
// identifiers are tolerated.
var sqlTablePatterns = []*regexp.Regexp{
	regexp.MustCompile("(?i)CREATE\\s+TABLE\\s+(?:IF\\s+NOT\\s+EXISTS\\s+)?[`']?(\\w+)[`']?"),
	regexp.MustCompile("(?i)ALTER\\s+TABLE\\s+[`']?(\\w+)[`']?"),
	regexp.MustCompile("(?i)DROP\\s+TABLE\\s+(?:IF\\s+EXISTS\\s+)?[`']?(\\w+)[`']?"),
	regexp.MustCompile("(?i)INSERT\\s+INTO\\s+[`']?(\\w+)[`']?"),
	regexp.MustCompile("(?i)UPDATE\\s+[`']?(\\w+)[`']?"),
	regexp.MustCompile("(?i)DELETE\\s+FROM\\s+[`']?(\\w+)[`']?"),
	regexp.MustCompile("(?i)SELECT\\s+.+?\\s+FROM\\s+[`']?(\\w+)[`']?"),
}

// Query-type keywords, checked in this order; a line is counted against the
// first keyword it contains.
var sqlQueryTypes = []string{"CREATE", "ALTER", "DROP", "INSERT", "UPDATE", "DELETE", "SELECT"}

// SQLInfo is the extraction result for .sql files.
type SQLInfo struct {
	TablesFound    []string       `json:"tables_found"`
	TablesCount    int            `json:"tables_count"`
	TotalQueries   int            `json:"total_queries"`
	QueryTypes     map[string]int `json:"query_types"`
	HasTransaction bool           `json:"has_transaction"`
	HasIndex       bool           `json:"has_index"`
}

// SQLParser extracts table names and statement counts from SQL scripts.
type SQLParser struct{}

func (SQLParser) Parse(in Input) (KeyInfo, error) {
	tables := make(map[string]struct{})
	queryTypes := make(map[string]int, len(sqlQueryTypes))
	for _, qt := range sqlQueryTypes {
		queryTypes[qt] = 0
	}
	totalQueries := 0

	for _, line := range strings.Split(in.Content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "--") || strings.HasPrefix(line, "/*") {
			continue
		}

		for _, pattern := range sqlTablePatterns {
			for _, match := range pattern.FindAllStringSubmatch(line, -1) {
				tables[match[1]] = struct{}{}
			}
		}

		lineUpper := strings.ToUpper(line)
		for _, qt := range sqlQueryTypes {
			if strings.Contains(lineUpper, qt) {
				queryTypes[qt]++
				totalQueries++
				break
			}
		}
	}

	tablesFound := make([]string, 0, len(tables))
	for name := range tables {
		tablesFound = append(tablesFound, name)
	}
	sort.Strings(tablesFound)

	contentUpper := strings.ToUpper(in.Content)
	return SQLInfo{
		TablesFound:    tablesFound,
		TablesCount:    len(tablesFound),
		TotalQueries:   totalQueries,
		QueryTypes:     queryTypes,
		HasTransaction: strings.Contains(contentUpper, "BEGIN") || strings.Contains(contentUpper, "START TRANSACTION"),
		HasIndex:       strings.Contains(contentUpper, "INDEX"),
	}, nil
}

func (info SQLInfo) Summarize(filename string, sizeKB float64) string {
	summary := fmt.Sprintf("File SQL '%s' (%.1f KB). Contains %d SQL queries across %d tables.",
		filename, sizeKB, info.TotalQueries, info.TablesCount)
	if info.HasTransaction {
		summary += " Includes database transactions."
	}
	return truncateSummary(summary)
}
