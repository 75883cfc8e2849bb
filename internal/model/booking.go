package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// VenueTBA is displayed when a booking has no venue resolved yet.
const VenueTBA = "TBA"

// Booking records one show/venue reservation for a calendar day. Several
// bookings may share a date; that is what clash detection is about.
//
// Date is milliseconds since the Unix epoch at local midnight of the
// booked day, so days before 1970 are negative. Day caches the weekday of
// Date. Of the four venue fields the first non-empty one wins, see
// ResolveVenue; VenueIsTba and ShowTitleIsTba mark venue or title as
// intentionally unresolved. P marks a pencilled (provisional) booking.
// PressContact receives clash notifications. UserID is the submitting
// party and gates edit and delete. TimeStamp is the last submission time
// and CreatedAt the immutable insert time, both in ms. Extra holds
// spreadsheet columns without a dedicated field.
type Booking struct {
	ID             string `json:"id" db:"id"`
	Date           int64  `json:"date" db:"date"`
	Day            string `json:"day" db:"day"`
	Venue          string `json:"venue" db:"venue"`
	UktVenue       string `json:"uktVenue" db:"ukt_venue"`
	AffiliateVenue string `json:"affiliateVenue" db:"affiliate_venue"`
	OtherVenue     string `json:"otherVenue" db:"other_venue"`
	VenueIsTba     bool   `json:"venueIsTba" db:"venue_is_tba"`
	TitleOfShow    string `json:"titleOfShow" db:"title_of_show"`
	ShowTitleIsTba bool   `json:"showTitleIsTba" db:"show_title_is_tba"`
	P              bool   `json:"p" db:"p"`
	IsSeasonGala   bool   `json:"isSeasonGala" db:"is_season_gala"`
	IsOperaDance   bool   `json:"isOperaDance" db:"is_opera_dance"`
	Producer       string `json:"producer" db:"producer" validate:"required,notblank"`
	PressContact   string `json:"pressContact" db:"press_contact" validate:"required,notblank"`
	UserID         string `json:"userId" db:"user_id"`
	DateBkd        string `json:"dateBkd" db:"date_bkd"`
	TimeStamp      int64  `json:"timeStamp" db:"time_stamp"`
	CreatedAt      int64  `json:"createdAt" db:"created_at"`
	Extra          Extra  `json:"extra,omitempty" db:"extra"`
}

// ResolveVenue returns the venue to display: the first non-empty field in
// priority order venue, uktVenue, otherVenue, affiliateVenue, else "TBA".
func (b Booking) ResolveVenue() string {
	for _, v := range []string{b.Venue, b.UktVenue, b.OtherVenue, b.AffiliateVenue} {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return VenueTBA
}

// HasVenue reports whether the venue is resolved or explicitly TBA.
func (b Booking) HasVenue() bool {
	return b.VenueIsTba || b.ResolveVenue() != VenueTBA
}

// DisplayTitle returns the show title, or "TBA" when the title is flagged
// as unresolved and nothing was entered.
func (b Booking) DisplayTitle() string {
	if s := strings.TrimSpace(b.TitleOfShow); s != "" {
		return s
	}
	if b.ShowTitleIsTba {
		return VenueTBA
	}
	return ""
}

// BookingPatch is a partial update. Nil fields are left untouched. ID,
// CreatedAt and UserID are not patchable.
type BookingPatch struct {
	Date           *int64  `json:"date,omitempty"`
	Day            *string `json:"day,omitempty"`
	Venue          *string `json:"venue,omitempty"`
	UktVenue       *string `json:"uktVenue,omitempty"`
	AffiliateVenue *string `json:"affiliateVenue,omitempty"`
	OtherVenue     *string `json:"otherVenue,omitempty"`
	VenueIsTba     *bool   `json:"venueIsTba,omitempty"`
	TitleOfShow    *string `json:"titleOfShow,omitempty"`
	ShowTitleIsTba *bool   `json:"showTitleIsTba,omitempty"`
	P              *bool   `json:"p,omitempty"`
	IsSeasonGala   *bool   `json:"isSeasonGala,omitempty"`
	IsOperaDance   *bool   `json:"isOperaDance,omitempty"`
	Producer       *string `json:"producer,omitempty"`
	PressContact   *string `json:"pressContact,omitempty"`
	DateBkd        *string `json:"dateBkd,omitempty"`
	TimeStamp      *int64  `json:"timeStamp,omitempty"`
}

// Apply returns a copy of b with the patch applied.
func (p BookingPatch) Apply(b Booking) Booking {
	setStr := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setBool := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	if p.Date != nil {
		b.Date = *p.Date
	}
	if p.TimeStamp != nil {
		b.TimeStamp = *p.TimeStamp
	}
	setStr(&b.Day, p.Day)
	setStr(&b.Venue, p.Venue)
	setStr(&b.UktVenue, p.UktVenue)
	setStr(&b.AffiliateVenue, p.AffiliateVenue)
	setStr(&b.OtherVenue, p.OtherVenue)
	setStr(&b.TitleOfShow, p.TitleOfShow)
	setStr(&b.Producer, p.Producer)
	setStr(&b.PressContact, p.PressContact)
	setStr(&b.DateBkd, p.DateBkd)
	setBool(&b.VenueIsTba, p.VenueIsTba)
	setBool(&b.ShowTitleIsTba, p.ShowTitleIsTba)
	setBool(&b.P, p.P)
	setBool(&b.IsSeasonGala, p.IsSeasonGala)
	setBool(&b.IsOperaDance, p.IsOperaDance)
	return b
}

// Columns returns the column/value pairs set by the patch, keyed by the
// bookings table column name.
func (p BookingPatch) Columns() map[string]any {
	cols := map[string]any{}
	if p.Date != nil {
		cols["date"] = *p.Date
	}
	if p.Day != nil {
		cols["day"] = *p.Day
	}
	if p.Venue != nil {
		cols["venue"] = *p.Venue
	}
	if p.UktVenue != nil {
		cols["ukt_venue"] = *p.UktVenue
	}
	if p.AffiliateVenue != nil {
		cols["affiliate_venue"] = *p.AffiliateVenue
	}
	if p.OtherVenue != nil {
		cols["other_venue"] = *p.OtherVenue
	}
	if p.VenueIsTba != nil {
		cols["venue_is_tba"] = *p.VenueIsTba
	}
	if p.TitleOfShow != nil {
		cols["title_of_show"] = *p.TitleOfShow
	}
	if p.ShowTitleIsTba != nil {
		cols["show_title_is_tba"] = *p.ShowTitleIsTba
	}
	if p.P != nil {
		cols["p"] = *p.P
	}
	if p.IsSeasonGala != nil {
		cols["is_season_gala"] = *p.IsSeasonGala
	}
	if p.IsOperaDance != nil {
		cols["is_opera_dance"] = *p.IsOperaDance
	}
	if p.Producer != nil {
		cols["producer"] = *p.Producer
	}
	if p.PressContact != nil {
		cols["press_contact"] = *p.PressContact
	}
	if p.DateBkd != nil {
		cols["date_bkd"] = *p.DateBkd
	}
	if p.TimeStamp != nil {
		cols["time_stamp"] = *p.TimeStamp
	}
	return cols
}

// Extra holds spreadsheet columns that have no dedicated Booking field.
// It is stored as a JSON object in a text column.
type Extra map[string]string

// Value implements driver.Valuer.
func (e Extra) Value() (driver.Value, error) {
	if len(e) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]string(e))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (e *Extra) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*e = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("extra: unsupported type %T", src)
	}
	if len(raw) == 0 {
		*e = nil
		return nil
	}
	m := map[string]string{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return fmt.Errorf("extra: %w", err)
	}
	if len(m) == 0 {
		*e = nil
		return nil
	}
	*e = m
	return nil
}
