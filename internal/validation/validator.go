// Package validation checks bookings before they reach the store, using
// go-playground/validator with JSON field names in error reports.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/iliyamo/theatre-booking-calendar/internal/model"
)

// Error is a field-attributed validation failure. Fields maps JSON field
// names to a human-readable problem.
type Error struct {
	Fields map[string]string `json:"fields"`
}

func (e *Error) Error() string {
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, f := range names {
		parts = append(parts, f+" "+e.Fields[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// FieldError builds an Error for a single field.
func FieldError(field, msg string) *Error {
	return &Error{Fields: map[string]string{field: msg}}
}

// Validator wraps go-playground/validator with booking rules registered.
type Validator struct {
	v *validator.Validate
}

// New creates a validator configured for bookings.
func New() *Validator {
	v := validator.New()

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	v.RegisterStructValidation(bookingRules, model.Booking{})

	return &Validator{v: v}
}

// bookingRules requires a resolved venue or an explicit TBA flag, and a
// date inside the calendar's year range. Dates before 1970 are negative.
func bookingRules(sl validator.StructLevel) {
	b := sl.Current().Interface().(model.Booking)
	if b.Date < model.MinDate || b.Date >= model.MaxDate {
		sl.ReportError(b.Date, "date", "Date", "date_range", "")
	}
	if !b.HasVenue() {
		sl.ReportError(b.Venue, "venue", "Venue", "venue_or_tba", "")
	}
}

// Validate validates a struct and returns *Error on failure.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return formatError(err)
	}
	return nil
}

func formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}
	fields := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		fields[e.Field()] = friendlyMessage(e)
	}
	return &Error{Fields: fields}
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "notblank":
		return "must not be blank"
	case "venue_or_tba":
		return "is required unless the venue is marked TBA"
	case "date_range":
		return "must fall between the years 1900 and 9999"
	case "email":
		return "must be a valid email address"
	default:
		return fmt.Sprintf("is invalid (%s)", e.Tag())
	}
}
