package sheet

import (
	"sort"
	"time"

	"github.com/iliyamo/theatre-booking-calendar/internal/model"
)

// Table is a flat export of bookings. Columns holds the field names behind
// Header, which holds their display labels.
type Table struct {
	Columns []string   `json:"columns"`
	Header  []string   `json:"header"`
	Rows    [][]string `json:"rows"`
}

// BuildTable flattens bookings into rows in the order given. Known fields
// come first in a fixed order, then extra columns sorted by name. Technical
// fields are never exported.
func BuildTable(bookings []model.Booking, loc *time.Location) Table {
	extraSet := map[string]struct{}{}
	for _, b := range bookings {
		for k := range b.Extra {
			if _, known, skip := lookupColumn(k); !known && !skip {
				extraSet[k] = struct{}{}
			}
		}
	}
	extras := make([]string, 0, len(extraSet))
	for k := range extraSet {
		extras = append(extras, k)
	}
	sort.Strings(extras)

	t := Table{}
	for _, c := range columns {
		t.Columns = append(t.Columns, c.name)
		t.Header = append(t.Header, Label(c.name))
	}
	for _, k := range extras {
		t.Columns = append(t.Columns, k)
		t.Header = append(t.Header, k)
	}

	for i := range bookings {
		b := &bookings[i]
		row := make([]string, 0, len(t.Columns))
		for _, c := range columns {
			row = append(row, cellValue(c, b, loc))
		}
		for _, k := range extras {
			row = append(row, b.Extra[k])
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func cellValue(c column, b *model.Booking, loc *time.Location) string {
	switch c.kind {
	case kindDate:
		return model.DateKey(b.Date, loc)
	case kindTimestamp:
		if ms := *c.get(b).(*int64); ms > 0 {
			return model.DateKey(ms, loc)
		}
		return ""
	case kindBool:
		return FormatBool(*c.get(b).(*bool))
	default:
		v := *c.get(b).(*string)
		if c.name == "day" && v == "" {
			return model.Weekday(b.Date, loc)
		}
		return v
	}
}

// IsDateColumn reports whether the named column holds dd/MM/yyyy values.
func IsDateColumn(name string) bool {
	for _, c := range columns {
		if c.name == name {
			return c.kind == kindDate || c.kind == kindTimestamp
		}
	}
	return false
}
