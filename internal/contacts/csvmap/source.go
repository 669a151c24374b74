// Package csvmap turns address-book CSV exports into canonical contact
// properties. Mapping is two-phase: headers are standardized and classified
// into pre-properties, then pre-properties sharing a combine target are
// assembled into single canonical properties.
package csvmap

import (
	"encoding/csv"
	"io"
	"regexp"
	"strings"

	dErrors "contactvault/pkg/domain-errors"
)

// Source is a parsed CSV file: one header row plus data rows of equal width.
type Source struct {
	Headers []string
	Rows    [][]string
}

// ignoredHeaders are noise columns some exporters add; they never map to a
// contact property.
var ignoredHeaders = map[string]struct{}{
	"mileage":     {},
	"sensitivity": {},
	"importance":  {},
	"subject":     {},
	"priority":    {},
}

// Read parses CSV input into a Source. Rows with fewer columns than the
// header row are discarded entirely rather than padded: guessing which
// columns are missing would silently corrupt contacts. Columns that are blank
// in every row are dropped as noise.
func Read(r io.Reader) (*Source, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeMalformedInput, "unreadable CSV")
	}
	if len(records) == 0 {
		return nil, dErrors.New(dErrors.CodeMalformedInput, "empty CSV input")
	}

	headers := records[0]
	var rows [][]string
	for _, rec := range records[1:] {
		if len(rec) < len(headers) {
			continue
		}
		rows = append(rows, rec[:len(headers)])
	}

	src := &Source{Headers: headers, Rows: rows}
	src.dropBlankColumns()
	return src, nil
}

// Standardize rewrites exporter-specific header shapes into the standalone
// headers the classifier understands: ignored columns are removed, and the
// compound "Address N - ..." / "Organization N - ..." groups have their Type
// sub-column folded into the sibling headers' names and then dropped.
func (s *Source) Standardize() {
	s.filterColumns(func(i int) bool {
		_, ignored := ignoredHeaders[strings.ToLower(strings.TrimSpace(s.Headers[i]))]
		return !ignored
	})
	s.foldTypeColumns(addressTypeHeader)
	s.foldTypeColumns(organizationTypeHeader)
}

var (
	addressTypeHeader      = regexp.MustCompile(`(?i)^address (\d+) - type$`)
	organizationTypeHeader = regexp.MustCompile(`(?i)^organization (\d+) - type$`)
)

// foldTypeColumns finds "<Group> N - Type" columns, prefixes every sibling
// "<Group> N - X" header with the type column's value, and drops the type
// column. The folded value is taken from the first row that has one; type
// columns are constant per export in practice.
func (s *Source) foldTypeColumns(typeHeader *regexp.Regexp) {
	for i, header := range s.Headers {
		m := typeHeader.FindStringSubmatch(header)
		if m == nil {
			continue
		}

		typeValue := ""
		for _, row := range s.Rows {
			if v := strings.TrimSpace(row[i]); v != "" {
				typeValue = v
				break
			}
		}
		if typeValue == "" {
			continue
		}

		groupPrefix := strings.ToLower(strings.TrimSuffix(header, header[strings.LastIndex(header, "-"):]))
		for j, sibling := range s.Headers {
			if j == i {
				continue
			}
			if strings.HasPrefix(strings.ToLower(sibling), groupPrefix) {
				s.Headers[j] = typeValue + " " + sibling
			}
		}
	}

	s.filterColumns(func(i int) bool {
		return !typeHeader.MatchString(s.Headers[i])
	})
}

// dropBlankColumns removes columns whose every row value is blank.
func (s *Source) dropBlankColumns() {
	s.filterColumns(func(i int) bool {
		for _, row := range s.Rows {
			if strings.TrimSpace(row[i]) != "" {
				return true
			}
		}
		return len(s.Rows) == 0
	})
}

// filterColumns keeps only the columns whose index passes keep, in both the
// header row and every data row.
func (s *Source) filterColumns(keep func(i int) bool) {
	var kept []int
	for i := range s.Headers {
		if keep(i) {
			kept = append(kept, i)
		}
	}
	if len(kept) == len(s.Headers) {
		return
	}

	project := func(row []string) []string {
		out := make([]string, 0, len(kept))
		for _, i := range kept {
			out = append(out, row[i])
		}
		return out
	}

	s.Headers = project(s.Headers)
	for i, row := range s.Rows {
		s.Rows[i] = project(row)
	}
}
