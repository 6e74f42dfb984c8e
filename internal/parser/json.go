package parser

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// maxKeyFields bounds how many field names are reported for an object.
const maxKeyFields = 10

// JSONInfo is the extraction result for .json files. A malformed document
// yields StructureType "invalid" with the decode error in Error; the job
// still completes.
type JSONInfo struct {
	StructureType string   `json:"structure_type"`
	KeyFields     []string `json:"key_fields,omitempty"`
	RecordCount   int      `json:"record_count"`
	HasNestedData bool     `json:"has_nested_data"`
	Error         string   `json:"error,omitempty"`
}

// JSONParser inspects the top-level structure of a JSON document.
type JSONParser struct{}

func (JSONParser) Parse(in Input) (KeyInfo, error) {
	var data any
	if err := json.Unmarshal([]byte(in.Content), &data); err != nil {
		return JSONInfo{
			StructureType: "invalid",
			Error:         fmt.Sprintf("Invalid JSON: %v", err),
		}, nil
	}

	info := JSONInfo{StructureType: "unknown"}

	switch v := data.(type) {
	case []any:
		info.StructureType = "array"
		info.RecordCount = len(v)
		if len(v) > 0 {
			if first, ok := v[0].(map[string]any); ok {
				info.KeyFields = sortedKeys(first, maxKeyFields)
			}
		}
	case map[string]any:
		info.StructureType = "object"
		info.KeyFields = sortedKeys(v, maxKeyFields)

		allObjects := len(v) > 0
		for _, value := range v {
			if _, ok := value.(map[string]any); !ok {
				allObjects = false
				break
			}
		}
		if allObjects {
			info.RecordCount = len(v)
		} else if inner, ok := v["data"].([]any); ok {
			info.RecordCount = len(inner)
		}
	}

	if encoded, err := json.Marshal(data); err == nil {
		info.HasNestedData = strings.Contains(strings.ToLower(string(encoded)), "nested")
	}
	return info, nil
}

func sortedKeys(m map[string]any, limit int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > limit {
		keys = keys[:limit]
	}
	return keys
}

func (info JSONInfo) Summarize(filename string, sizeKB float64) string {
	fields := info.KeyFields
	if len(fields) > 5 {
		fields = fields[:5]
	}
	summary := fmt.Sprintf("File JSON '%s' (%.1f KB). Data structure is an %s. Contains %d records. Main fields: %s.",
		filename, sizeKB, info.StructureType, info.RecordCount, strings.Join(fields, ", "))
	return truncateSummary(summary)
}
