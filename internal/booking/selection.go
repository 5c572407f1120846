// Package booking holds the in-progress booking selection and the
// appointment partitioning logic the appointment views render from.
package booking

import (
	"fmt"
	"strconv"
	"strings"
)

// Change identifies which part of the selection mutated. Observers receive
// it synchronously, before the mutating call returns.
type Change string

const (
	ChangeService Change = "service"
	ChangeDate    Change = "date"
	ChangeTime    Change = "time"
	ChangeDog     Change = "dog"
	ChangeReset   Change = "reset"
)

// Observer reacts to a selection change. Observers run synchronously on the
// mutating goroutine; there is no batching.
type Observer func(change Change, s *Selection)

// Selection is the in-progress booking choice: service, date, time slot and
// dog. Identifiers are kept as the opaque strings they arrive as and only
// coerced to integers when the request is built.
type Selection struct {
	serviceID   string
	serviceName string
	date        string // YYYY-MM-DD
	timeSlot    string // HH:MM:SS
	dogID       string

	observers []Observer
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{}
}

// Subscribe registers an observer for selection changes.
func (s *Selection) Subscribe(obs Observer) {
	s.observers = append(s.observers, obs)
}

func (s *Selection) notify(change Change) {
	for _, obs := range s.observers {
		obs(change, s)
	}
}

// SetService replaces the selected service unconditionally. The identifier
// is not validated here; the server is the authority at submit time.
func (s *Selection) SetService(id, name string) {
	s.serviceID = id
	s.serviceName = name
	s.notify(ChangeService)
}

// SetDate replaces the selected date and clears any chosen time slot, since
// slot availability is scoped to a date. Observers of ChangeDate are
// expected to refresh the slot list for the new date.
func (s *Selection) SetDate(date string) {
	s.date = date
	s.timeSlot = ""
	s.notify(ChangeDate)
}

// SetTime replaces the selected time slot. Setting a time with no date
// selected is a no-op.
func (s *Selection) SetTime(timeSlot string) {
	if s.date == "" {
		return
	}
	s.timeSlot = timeSlot
	s.notify(ChangeTime)
}

// SetDog replaces the selected dog.
func (s *Selection) SetDog(id string) {
	s.dogID = id
	s.notify(ChangeDog)
}

// Reset clears date and time after a successful booking. Service and dog are
// kept: the next booking is usually for the same dog and service.
func (s *Selection) Reset() {
	s.date = ""
	s.timeSlot = ""
	s.notify(ChangeReset)
}

// IsComplete reports whether all four slots are filled. Recomputed on every
// call, never cached.
func (s *Selection) IsComplete() bool {
	return s.serviceID != "" && s.date != "" && s.timeSlot != "" && s.dogID != ""
}

// ServiceID returns the raw selected service identifier.
func (s *Selection) ServiceID() string { return s.serviceID }

// ServiceName returns the cached display name of the selected service.
func (s *Selection) ServiceName() string { return s.serviceName }

// Date returns the selected ISO date, if any.
func (s *Selection) Date() string { return s.date }

// Time returns the selected time slot, if any.
func (s *Selection) Time() string { return s.timeSlot }

// DogID returns the raw selected dog identifier.
func (s *Selection) DogID() string { return s.dogID }

// Request is a complete booking ready to be posted to the backend.
type Request struct {
	DogID     int    `json:"dog_id"`
	ServiceID int    `json:"service_id"`
	Date      string `json:"date"`
	Time      string `json:"time"`
}

// ValidationError reports an incomplete selection. When the user has no dogs
// at all, NoDogs is set and the message tells them to add one instead of
// listing "dog" as just another missing field.
type ValidationError struct {
	MissingFields []string
	NoDogs        bool
}

func (e *ValidationError) Error() string {
	if e.NoDogs {
		return "add a dog before booking"
	}
	return fmt.Sprintf("select %s", strings.Join(e.MissingFields, ", "))
}

// Build validates the selection and produces the booking request.
// dogsAvailable reports whether the user has any dogs to pick from.
func (s *Selection) Build(dogsAvailable bool) (Request, error) {
	if !s.IsComplete() {
		if !dogsAvailable && s.dogID == "" {
			return Request{}, &ValidationError{NoDogs: true}
		}
		var missing []string
		if s.serviceID == "" {
			missing = append(missing, "service")
		}
		if s.dogID == "" {
			missing = append(missing, "dog")
		}
		if s.date == "" {
			missing = append(missing, "date")
		}
		if s.timeSlot == "" {
			missing = append(missing, "time slot")
		}
		return Request{}, &ValidationError{MissingFields: missing}
	}

	dogID, err := strconv.Atoi(s.dogID)
	if err != nil {
		return Request{}, fmt.Errorf("bad dog id %q: %w", s.dogID, err)
	}
	serviceID, err := strconv.Atoi(s.serviceID)
	if err != nil {
		return Request{}, fmt.Errorf("bad service id %q: %w", s.serviceID, err)
	}
	return Request{
		DogID:     dogID,
		ServiceID: serviceID,
		Date:      s.date,
		Time:      s.timeSlot,
	}, nil
}
