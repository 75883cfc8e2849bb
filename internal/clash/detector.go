// Package clash detects double bookings on a calendar day and notifies the
// press contacts involved.
package clash

import (
	"strings"

	"github.com/iliyamo/theatre-booking-calendar/internal/model"
)

// Result is the outcome of a clash check.
type Result struct {
	HasClash       bool            `json:"hasClash"`
	NotifyContacts []string        `json:"notifyContacts"`
	Bookings       []model.Booking `json:"bookings"`
}

// Detect decides whether candidate clashes with the bookings already held
// on its date. onDate may or may not contain candidate itself; a row with
// the candidate's id is replaced by the candidate. A clash needs at least
// two bookings on the day.
func Detect(candidate model.Booking, onDate []model.Booking) Result {
	all := make([]model.Booking, 0, len(onDate)+1)
	for _, b := range onDate {
		if candidate.ID != "" && b.ID == candidate.ID {
			continue
		}
		all = append(all, b)
	}
	all = append(all, candidate)

	res := Result{Bookings: all, NotifyContacts: []string{}}
	if len(all) < 2 {
		return res
	}
	res.HasClash = true
	res.NotifyContacts = contacts(all)
	return res
}

// contacts returns the trimmed, non-empty press contacts in first-seen order
// without duplicates.
func contacts(bookings []model.Booking) []string {
	seen := make(map[string]bool, len(bookings))
	out := make([]string, 0, len(bookings))
	for _, b := range bookings {
		c := strings.TrimSpace(b.PressContact)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// others returns contacts without recipient.
func others(contacts []string, recipient string) []string {
	out := make([]string, 0, len(contacts))
	for _, c := range contacts {
		if c != recipient {
			out = append(out, c)
		}
	}
	return out
}
