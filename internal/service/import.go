package service

import (
	"context"
	"errors"
	"io"

	"github.com/iliyamo/theatre-booking-calendar/internal/logging"
	"github.com/iliyamo/theatre-booking-calendar/internal/sheet"
	"github.com/iliyamo/theatre-booking-calendar/internal/validation"
)

// ImportReport describes what happened to one uploaded file.
type ImportReport struct {
	File     string           `json:"file"`
	Imported int              `json:"imported"`
	IDs      []string         `json:"ids"`
	Altered  map[string]int   `json:"altered"`
	Errors   []sheet.RowError `json:"errors"`
	Error    string           `json:"error,omitempty"`
}

// Import reads one CSV or XLSX file and stores every valid row as a booking
// submitted by identity. A file-level failure is reported in Error; rows
// that fail parsing, validation or the store write are listed in Errors and
// do not stop the rest. Imports do not send clash emails.
func (s *BookingService) Import(ctx context.Context, identity, name string, r io.Reader) ImportReport {
	log := logging.FromContext(ctx).WithField("file", name)
	report := ImportReport{File: name, IDs: []string{}, Altered: map[string]int{}, Errors: []sheet.RowError{}}

	header, rows, err := sheet.ReadFile(name, r)
	if err != nil {
		report.Error = err.Error()
		log.WithError(err).Warn("Import file unreadable")
		return report
	}
	parsed, err := sheet.ParseRows(header, rows, s.loc)
	if err != nil {
		report.Error = err.Error()
		log.WithError(err).Warn("Import file rejected")
		return report
	}
	report.Altered = parsed.Altered
	report.Errors = append(report.Errors, parsed.Errors...)

	now := s.now().UnixMilli()
	for _, row := range parsed.Rows {
		b := row.Booking
		b.UserID = identity
		if b.TimeStamp == 0 {
			b.TimeStamp = now
		}
		if err := s.validator.Validate(b); err != nil {
			report.Errors = append(report.Errors, rowError(row.Row, err))
			continue
		}
		id, err := s.store.Insert(ctx, b)
		if err != nil {
			log.WithError(err).WithField("row", row.Row).Error("Import row not stored")
			report.Errors = append(report.Errors, sheet.RowError{Row: row.Row, Err: "could not be saved, please try again"})
			continue
		}
		report.IDs = append(report.IDs, id)
		report.Imported++
	}
	if report.Imported > 0 {
		s.invalidate(ctx)
	}

	log.WithField("imported", report.Imported).WithField("errors", len(report.Errors)).Info("Import finished")
	return report
}

func rowError(row int, err error) sheet.RowError {
	var verr *validation.Error
	if errors.As(err, &verr) && len(verr.Fields) == 1 {
		for field, msg := range verr.Fields {
			return sheet.RowError{Row: row, Field: field, Err: msg}
		}
	}
	return sheet.RowError{Row: row, Err: err.Error()}
}
