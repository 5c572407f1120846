package google

import (
	"context"
	"testing"

	"groombot/internal/model"
)

func TestFilterActiveAppointments(t *testing.T) {
	appts := []model.Appointment{
		{ID: 1, Status: model.StatusScheduled},
		{ID: 2, Status: model.StatusUpcoming},
		{ID: 3, Status: model.StatusCancelled},
	}

	active := filterActiveAppointments(appts)

	if len(active) != 2 {
		t.Fatalf("Expected 2 active appointments, got %d", len(active))
	}
	for _, a := range active {
		if a.IsCancelled() {
			t.Errorf("Cancelled appointment found in active list")
		}
	}
}

func TestAppointmentRowValues(t *testing.T) {
	price := 35.5
	a := model.Appointment{
		ID:          7,
		Date:        "2024-06-20",
		Time:        "09:00",
		Status:      model.StatusScheduled,
		RawSvcName:  "Toelettatura Completa",
		RawDogName:  "Rex",
		RawSvcPrice: &price,
	}

	values := appointmentRowValues(&a)

	expected := []interface{}{
		int64(7),
		"Toelettatura Completa",
		"Rex",
		"2024-06-20",
		"09:00",
		"scheduled",
		"35.50",
	}

	if len(values) != len(expected) {
		t.Fatalf("Expected %d values, got %d", len(expected), len(values))
	}
	for i, v := range values {
		if v != expected[i] {
			t.Errorf("At index %d: expected %v, got %v", i, expected[i], v)
		}
	}
}

func TestNilServiceIsNoop(t *testing.T) {
	var s *SheetsService
	if err := s.SyncAppointments(context.Background(), nil); err != nil {
		t.Fatalf("nil service should be a no-op, got %v", err)
	}
}
