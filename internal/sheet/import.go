package sheet

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/theatre-booking-calendar/internal/model"
)

// ErrMissingDateColumn is returned when no header resolves to the date field.
var ErrMissingDateColumn = errors.New("sheet has no date column")

// RowError describes a data row that was skipped.
type RowError struct {
	Row   int    `json:"row"`
	Field string `json:"field,omitempty"`
	Err   string `json:"error"`
}

func (e RowError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("row %d: %s: %s", e.Row, e.Field, e.Err)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Err)
}

// ParsedRow is one accepted data row.
type ParsedRow struct {
	// Row is the 1-based line in the source, header included.
	Row int
	// Fields holds the normalized cell values keyed by source header.
	Fields  map[string]string
	Booking model.Booking
}

// Import is the outcome of parsing a sheet.
type Import struct {
	Rows []ParsedRow
	// Altered counts, per header, how many free-text cells normalization
	// changed. Date cells are not counted.
	Altered map[string]int
	Errors  []RowError
}

// Bookings returns the parsed bookings in source order.
func (im *Import) Bookings() []model.Booking {
	out := make([]model.Booking, 0, len(im.Rows))
	for _, r := range im.Rows {
		out = append(out, r.Booking)
	}
	return out
}

type boundHeader struct {
	label string
	col   column
	known bool
	skip  bool
}

// ParseRows converts a header row and data rows into bookings. Blank rows
// are dropped; a row that cannot be parsed is reported in Errors and does
// not stop the rest. loc is the zone dates are interpreted in.
func ParseRows(header []string, rows [][]string, loc *time.Location) (*Import, error) {
	bound := make([]boundHeader, len(header))
	hasDate := false
	for i, h := range header {
		label := NormalizeText(h)
		c, ok, skip := lookupColumn(label)
		bound[i] = boundHeader{label: label, col: c, known: ok, skip: skip || label == ""}
		if ok && c.kind == kindDate {
			hasDate = true
		}
	}
	if !hasDate {
		return nil, ErrMissingDateColumn
	}

	im := &Import{Altered: make(map[string]int)}
	for i, row := range rows {
		line := i + 2
		if isBlank(row) {
			continue
		}
		pr, rerr := parseRow(bound, row, line, loc, im.Altered)
		if rerr != nil {
			im.Errors = append(im.Errors, *rerr)
			continue
		}
		im.Rows = append(im.Rows, pr)
	}
	return im, nil
}

func parseRow(bound []boundHeader, row []string, line int, loc *time.Location, altered map[string]int) (ParsedRow, *RowError) {
	pr := ParsedRow{Row: line, Fields: make(map[string]string, len(bound))}
	b := &pr.Booking
	for i, h := range bound {
		if h.skip {
			continue
		}
		var raw string
		if i < len(row) {
			raw = row[i]
		}

		if !h.known {
			v := NormalizeText(raw)
			countAltered(altered, h.label, raw, v)
			if v != "" {
				if b.Extra == nil {
					b.Extra = model.Extra{}
				}
				b.Extra[h.label] = v
				pr.Fields[h.label] = v
			}
			continue
		}

		switch h.col.kind {
		case kindDate:
			v, err := NormalizeDateCell(raw)
			if err != nil {
				return pr, &RowError{Row: line, Field: h.label, Err: err.Error()}
			}
			t, err := parseNormalizedDate(v, loc)
			if err != nil {
				return pr, &RowError{Row: line, Field: h.label, Err: err.Error()}
			}
			pr.Fields[h.label] = v
			*h.col.get(b).(*int64) = t.UnixMilli()
		case kindTimestamp:
			if strings.TrimSpace(raw) == "" {
				pr.Fields[h.label] = ""
				continue
			}
			v, err := NormalizeDateCell(raw)
			if err != nil {
				return pr, &RowError{Row: line, Field: h.label, Err: err.Error()}
			}
			t, err := parseNormalizedDate(v, loc)
			if err != nil {
				return pr, &RowError{Row: line, Field: h.label, Err: err.Error()}
			}
			pr.Fields[h.label] = v
			*h.col.get(b).(*int64) = t.UnixMilli()
		case kindBool:
			v := ParseBool(raw)
			pr.Fields[h.label] = FormatBool(v)
			*h.col.get(b).(*bool) = v
		default:
			v := NormalizeText(raw)
			countAltered(altered, h.label, raw, v)
			pr.Fields[h.label] = v
			*h.col.get(b).(*string) = v
		}
	}
	if b.Day == "" {
		b.Day = model.Weekday(b.Date, loc)
	}
	return pr, nil
}

// countAltered tallies free-text cells whose normalized value differs from
// the raw cell, trimmed whitespace included.
func countAltered(altered map[string]int, label, raw, v string) {
	if raw != v {
		altered[label]++
	}
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
