// Package ingest implements the CSV ingestion pipeline: column resolution,
// per-row parsing and normalization, and the typed errors each stage reports.
package ingest

import "strings"

// Field is a logical column of the tracked dataset.
type Field string

// The four logical fields every upload must provide.
const (
	FieldName     Field = "name"
	FieldPostDate Field = "post_date"
	FieldCreator  Field = "creator_username"
	FieldGMV      Field = "gmv"
)

// fieldOrder fixes the scan order for missing-column reporting.
var fieldOrder = []Field{FieldName, FieldPostDate, FieldCreator, FieldGMV}

// fieldSynonyms lists the accepted header labels per logical field.
// Matching is exact after trim and lowercase, never substring or fuzzy.
var fieldSynonyms = map[Field][]string{
	FieldName:     {"video name", "name", "title"},
	FieldPostDate: {"video post date", "post date", "date", "posted", "post_date"},
	FieldCreator:  {"creator username", "creator", "username", "creator_username"},
	FieldGMV:      {"gmv", "revenue", "earnings"},
}

// ColumnMap maps each logical field to its zero-based column position.
type ColumnMap map[Field]int

// MaxPosition returns the highest column position in the map. A row must
// carry at least MaxPosition+1 fields to be parseable.
func (m ColumnMap) MaxPosition() int {
	max := 0
	for _, pos := range m {
		if pos > max {
			max = pos
		}
	}
	return max
}

// ResolveColumns maps the header labels to the four logical fields. It fails
// with a MissingColumnError for the first field (in declaration order) that
// no label matches.
func ResolveColumns(header []string) (ColumnMap, error) {
	labels := make([]string, len(header))
	for i, label := range header {
		labels[i] = strings.ToLower(strings.TrimSpace(label))
	}

	cols := make(ColumnMap, len(fieldOrder))
	for _, field := range fieldOrder {
		pos, ok := findColumn(labels, fieldSynonyms[field])
		if !ok {
			return nil, &MissingColumnError{Field: field, Accepted: fieldSynonyms[field]}
		}
		cols[field] = pos
	}

	return cols, nil
}

// findColumn returns the position of the first label matching any synonym.
func findColumn(labels []string, synonyms []string) (int, bool) {
	for i, label := range labels {
		for _, synonym := range synonyms {
			if label == synonym {
				return i, true
			}
		}
	}
	return 0, false
}
