package model

// TimeSlot is a bookable time of day on some date, as reported by the
// availability endpoint. TimeSlot is "HH:MM:SS".
type TimeSlot struct {
	ID        int64  `json:"id,omitempty"`
	Date      string `json:"date,omitempty"`
	TimeSlot  string `json:"time_slot"`
	Available bool   `json:"is_available"`
}

// ShortLabel returns the slot time trimmed to "HH:MM" for buttons.
func (s TimeSlot) ShortLabel() string {
	if len(s.TimeSlot) >= 5 {
		return s.TimeSlot[:5]
	}
	return s.TimeSlot
}
