package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Line is one data row of the uploaded file. Number is the 1-based line
// number (the header is line 1) used in error messages.
type Line struct {
	Number int
	Fields []string
}

// ReadRows tokenizes the uploaded CSV into a header and the data lines.
// Fields are trimmed; blank lines (and lines whose every field is empty)
// are dropped. Quoted fields containing commas are handled by the CSV
// reader. Returns ErrInsufficientRows unless there is a header and at
// least one data line.
func ReadRows(r io.Reader) ([]string, []Line, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, ErrInsufficientRows
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read csv header: %w", err)
	}

	var lines []Line
	lineNumber := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read csv line %d: %w", lineNumber+1, err)
		}
		lineNumber++

		fields := make([]string, len(record))
		blank := true
		for i, field := range record {
			fields[i] = strings.TrimSpace(field)
			if fields[i] != "" {
				blank = false
			}
		}
		if blank {
			continue
		}

		lines = append(lines, Line{Number: lineNumber, Fields: fields})
	}

	if len(lines) == 0 {
		return nil, nil, ErrInsufficientRows
	}

	return header, lines, nil
}
