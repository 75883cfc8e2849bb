package sheet

import (
	"strings"
	"unicode"

	"github.com/iliyamo/theatre-booking-calendar/internal/model"
)

type kind int

const (
	kindText kind = iota
	kindBool
	kindDate
	kindTimestamp
)

type column struct {
	name string
	kind kind
	get  func(b *model.Booking) any
}

func textCol(name string, get func(b *model.Booking) *string) column {
	return column{name: name, kind: kindText, get: func(b *model.Booking) any { return get(b) }}
}

func boolCol(name string, get func(b *model.Booking) *bool) column {
	return column{name: name, kind: kindBool, get: func(b *model.Booking) any { return get(b) }}
}

// columns lists the booking fields a sheet can carry, in export order.
var columns = []column{
	{name: "date", kind: kindDate, get: func(b *model.Booking) any { return &b.Date }},
	textCol("day", func(b *model.Booking) *string { return &b.Day }),
	textCol("titleOfShow", func(b *model.Booking) *string { return &b.TitleOfShow }),
	boolCol("showTitleIsTba", func(b *model.Booking) *bool { return &b.ShowTitleIsTba }),
	textCol("venue", func(b *model.Booking) *string { return &b.Venue }),
	textCol("uktVenue", func(b *model.Booking) *string { return &b.UktVenue }),
	textCol("affiliateVenue", func(b *model.Booking) *string { return &b.AffiliateVenue }),
	textCol("otherVenue", func(b *model.Booking) *string { return &b.OtherVenue }),
	boolCol("venueIsTba", func(b *model.Booking) *bool { return &b.VenueIsTba }),
	textCol("producer", func(b *model.Booking) *string { return &b.Producer }),
	textCol("pressContact", func(b *model.Booking) *string { return &b.PressContact }),
	boolCol("p", func(b *model.Booking) *bool { return &b.P }),
	boolCol("isSeasonGala", func(b *model.Booking) *bool { return &b.IsSeasonGala }),
	boolCol("isOperaDance", func(b *model.Booking) *bool { return &b.IsOperaDance }),
	textCol("dateBkd", func(b *model.Booking) *string { return &b.DateBkd }),
	{name: "timeStamp", kind: kindTimestamp, get: func(b *model.Booking) any { return &b.TimeStamp }},
}

// technical fields never travel through a sheet.
var technical = map[string]bool{
	"id":        true,
	"userid":    true,
	"createdat": true,
	"range":     true,
}

var labelOverrides = map[string]string{
	"timeStamp": "Date Updated",
	"p":         "P",
}

// headerAliases maps extra normalized header spellings onto field names.
var headerAliases = map[string]string{
	"datebooked":  "timeStamp",
	"dateupdated": "timeStamp",
	"pencilled":   "p",
	"pencil":      "p",
}

// Label returns the human-readable column heading for a field name.
func Label(name string) string {
	if l, ok := labelOverrides[name]; ok {
		return l
	}
	return Humanize(name)
}

// Humanize splits a camelCase name into capitalised words:
// "titleOfShow" becomes "Title Of Show".
func Humanize(name string) string {
	var words []string
	var cur []rune
	for i, r := range name {
		if i > 0 && unicode.IsUpper(r) && len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
		cur = append(cur, r)
	}
	if len(cur) > 0 {
		words = append(words, string(cur))
	}
	for i, w := range words {
		rs := []rune(w)
		rs[0] = unicode.ToUpper(rs[0])
		words[i] = string(rs)
	}
	return strings.Join(words, " ")
}

func headerKey(h string) string {
	h = strings.ToLower(NormalizeText(h))
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '_' || r == '-' || r == '.' {
			return -1
		}
		return r
	}, h)
}

var columnByKey = func() map[string]column {
	m := make(map[string]column, len(columns)*2)
	for _, c := range columns {
		m[headerKey(c.name)] = c
		m[headerKey(Label(c.name))] = c
	}
	for alias, name := range headerAliases {
		for _, c := range columns {
			if c.name == name {
				m[alias] = c
			}
		}
	}
	return m
}()

// lookupColumn resolves a header cell to a known column. ok is false for
// unknown headers; skip is true for technical headers that are ignored.
func lookupColumn(header string) (c column, ok, skip bool) {
	key := headerKey(header)
	if technical[key] {
		return column{}, false, true
	}
	c, ok = columnByKey[key]
	return c, ok, false
}
