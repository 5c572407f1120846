package model

import (
	"fmt"
	"time"
)

// Appointment statuses stored by the backend. "completed" is never stored;
// it is derived from the start instant at render time.
const (
	StatusScheduled = "scheduled"
	StatusUpcoming  = "upcoming"
	StatusCancelled = "cancelled"
)

// NamedRef is the nested {name, price} shape some backend versions return
// instead of the flat service_name / dog_name fields.
type NamedRef struct {
	Name  string   `json:"name"`
	Price *float64 `json:"price,omitempty"`
}

// Appointment is a booked grooming appointment as returned by the API.
// Date is "YYYY-MM-DD"; Time is "HH:MM" or "HH:MM:SS".
type Appointment struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id,omitempty"`
	DogID       int64     `json:"dog_id,omitempty"`
	ServiceID   int64     `json:"service_id,omitempty"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Status      string    `json:"status"`
	RawDogName  string    `json:"dog_name,omitempty"`
	RawSvcName  string    `json:"service_name,omitempty"`
	RawSvcPrice *float64  `json:"service_price,omitempty"`
	Service     *NamedRef `json:"service,omitempty"`
	Dog         *NamedRef `json:"dog,omitempty"`
}

// ServiceName resolves the flat field first, then the nested object.
func (a Appointment) ServiceName() string {
	if a.RawSvcName != "" {
		return a.RawSvcName
	}
	if a.Service != nil {
		return a.Service.Name
	}
	return ""
}

// DogName resolves the flat field first, then the nested object.
func (a Appointment) DogName() string {
	if a.RawDogName != "" {
		return a.RawDogName
	}
	if a.Dog != nil {
		return a.Dog.Name
	}
	return ""
}

// ServicePrice returns the price and whether one was present.
func (a Appointment) ServicePrice() (float64, bool) {
	if a.RawSvcPrice != nil {
		return *a.RawSvcPrice, true
	}
	if a.Service != nil && a.Service.Price != nil {
		return *a.Service.Price, true
	}
	return 0, false
}

// IsCancelled reports whether the appointment was explicitly cancelled.
func (a Appointment) IsCancelled() bool {
	return a.Status == StatusCancelled
}

// StartsAt combines Date and Time into an instant in the given location.
// The backend emits times both with and without seconds.
func (a Appointment) StartsAt(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02 15:04"} {
		if t, err := time.ParseInLocation(layout, a.Date+" "+a.Time, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("bad appointment timestamp %q %q", a.Date, a.Time)
}
