// Package google pushes appointment snapshots to a Google Sheet so salon
// staff can follow bookings without touching the backend.
package google

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"groombot/internal/model"
)

const sheetRange = "Appuntamenti!A1"

var header = []interface{}{"ID", "Servizio", "Cane", "Data", "Ora", "Stato", "Prezzo"}

// SheetsService mirrors non-cancelled appointments into a spreadsheet.
type SheetsService struct {
	svc           *sheets.Service
	spreadsheetID string
}

// NewSheetsService builds a service from a credentials JSON file. Returns
// nil (and no error) when credentialsFile is empty: sync is optional.
func NewSheetsService(ctx context.Context, credentialsFile, spreadsheetID string) (*SheetsService, error) {
	if credentialsFile == "" || spreadsheetID == "" {
		return nil, nil
	}

	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read sheets credentials: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, data, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse sheets credentials: %w", err)
	}
	svc, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &SheetsService{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// SyncAppointments replaces the sheet contents with the current active
// appointment list.
func (s *SheetsService) SyncAppointments(ctx context.Context, appts []model.Appointment) error {
	if s == nil {
		return nil
	}

	active := filterActiveAppointments(appts)
	values := [][]interface{}{header}
	for _, a := range active {
		values = append(values, appointmentRowValues(&a))
	}

	clearReq := s.svc.Spreadsheets.Values.Clear(s.spreadsheetID, sheetRange, &sheets.ClearValuesRequest{})
	if _, err := clearReq.Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear sheet: %w", err)
	}

	update := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, sheetRange, &sheets.ValueRange{Values: values})
	if _, err := update.ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("update sheet: %w", err)
	}
	return nil
}

func filterActiveAppointments(appts []model.Appointment) []model.Appointment {
	var active []model.Appointment
	for _, a := range appts {
		if !a.IsCancelled() {
			active = append(active, a)
		}
	}
	return active
}

func appointmentRowValues(a *model.Appointment) []interface{} {
	price := ""
	if p, ok := a.ServicePrice(); ok {
		price = fmt.Sprintf("%.2f", p)
	}
	return []interface{}{
		a.ID,
		a.ServiceName(),
		a.DogName(),
		a.Date,
		a.Time,
		a.Status,
		price,
	}
}
