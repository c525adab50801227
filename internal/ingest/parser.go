package ingest

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// ParsedRow is the typed result of parsing one data line. No ID or status is
// assigned here; that is the batch writer's job.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type ParsedRow struct {
	Name            *string
	PostDate        time.Time
	CreatorUsername string
	GMV             float64
}

// dateLayouts are tried in order when normalizing the post date.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"02 Jan 2006",
}

// ParseRow validates and converts one data line using the resolved column
// map. Row-level failures return one of the typed errors in errors.go
// carrying the 1-based line number.
func ParseRow(fields []string, lineNumber int, cols ColumnMap) (*ParsedRow, error) {
	expectedMin := cols.MaxPosition() + 1
	if len(fields) < expectedMin {
		return nil, &InsufficientFieldsError{Line: lineNumber, ExpectedMin: expectedMin}
	}

	// Name is optional: empty becomes absent, never an error.
	var name *string
	if raw := strings.TrimSpace(fields[cols[FieldName]]); raw != "" {
		name = &raw
	}

	rawDate := strings.TrimSpace(fields[cols[FieldPostDate]])
	if rawDate == "" {
		return nil, &EmptyFieldError{Line: lineNumber, Field: FieldPostDate}
	}

	rawCreator := strings.TrimSpace(fields[cols[FieldCreator]])
	if rawCreator == "" {
		return nil, &EmptyFieldError{Line: lineNumber, Field: FieldCreator}
	}

	rawGMV := strings.TrimSpace(fields[cols[FieldGMV]])
	if rawGMV == "" {
		return nil, &EmptyFieldError{Line: lineNumber, Field: FieldGMV}
	}

	gmv, ok := parseGMV(rawGMV)
	if !ok {
		return nil, &InvalidNumberError{Line: lineNumber, Raw: rawGMV}
	}

	return &ParsedRow{
		Name:            name,
		PostDate:        ParseDate(rawDate),
		CreatorUsername: NormalizeUsername(rawCreator),
		GMV:             gmv,
	}, nil
}

// parseGMV strips every rune that is not a digit, dot, or minus sign
// (dropping currency symbols and thousands separators) and parses the rest
// as a float. Reports false unless the result is a finite number.
func parseGMV(raw string) (float64, bool) {
	stripped := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, raw)

	if stripped == "" {
		return 0, false
	}

	value, err := strconv.ParseFloat(stripped, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}

	return value, true
}

// NormalizeUsername strips a single leading @ from a creator handle.
// An @ anywhere else is left alone.
func NormalizeUsername(raw string) string {
	return strings.TrimPrefix(raw, "@")
}

// ParseDate normalizes a free-form date string to a calendar date (midnight
// UTC). When no layout matches, the current timestamp's date is substituted
// instead of failing the row: invalid dates are silently replaced, not
// rejected, so callers relying on exact provenance must validate upstream.
func ParseDate(raw string) time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return truncateToDate(t)
		}
	}
	return truncateToDate(time.Now())
}

// truncateToDate drops the time-of-day component. The duplicate identity
// triple compares post dates at day precision.
func truncateToDate(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
