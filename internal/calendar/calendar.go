// Package calendar maps rendered calendar cells to ISO dates and back, and
// computes which dates carry an upcoming appointment.
package calendar

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"groombot/internal/model"
)

// Month is a calendar month, 1-based like time.Month.
type Month int

const (
	January Month = iota + 1
	February
	March
	April
	May
	June
	July
	August
	September
	October
	November
	December
)

// UnknownMonthError is returned when a month name is not present in the
// locale table. Callers must skip the cell, never default the month.
type UnknownMonthError struct {
	Locale string
	Name   string
}

func (e *UnknownMonthError) Error() string {
	return fmt.Sprintf("unknown month name %q for locale %q", e.Name, e.Locale)
}

var (
	localeMu sync.RWMutex
	locales  = map[string]map[string]Month{
		"it": {
			"gennaio":   January,
			"febbraio":  February,
			"marzo":     March,
			"aprile":    April,
			"maggio":    May,
			"giugno":    June,
			"luglio":    July,
			"agosto":    August,
			"settembre": September,
			"ottobre":   October,
			"novembre":  November,
			"dicembre":  December,
			// The original site shipped static headers with two English
			// month names; keep accepting them.
			"july":   July,
			"august": August,
		},
		"en": {
			"january":   January,
			"february":  February,
			"march":     March,
			"april":     April,
			"may":       May,
			"june":      June,
			"july":      July,
			"august":    August,
			"september": September,
			"october":   October,
			"november":  November,
			"december":  December,
		},
	}
)

var displayNames = map[string][12]string{
	"it": {"Gennaio", "Febbraio", "Marzo", "Aprile", "Maggio", "Giugno",
		"Luglio", "Agosto", "Settembre", "Ottobre", "Novembre", "Dicembre"},
	"en": {"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December"},
}

// MonthName returns the display name of a month for a locale, falling back
// to English when the locale has no display table.
func MonthName(locale string, m Month) string {
	localeMu.RLock()
	names, ok := displayNames[locale]
	localeMu.RUnlock()
	if !ok {
		names = displayNames["en"]
	}
	if m < January || m > December {
		return ""
	}
	return names[m-1]
}

// SetDisplayNames installs the display-name table for a locale, January
// through December.
func SetDisplayNames(locale string, names [12]string) {
	localeMu.Lock()
	displayNames[locale] = names
	localeMu.Unlock()
}

// RegisterLocale installs or replaces a month-name table. Names are matched
// case-insensitively.
func RegisterLocale(locale string, names map[string]Month) {
	table := make(map[string]Month, len(names))
	for name, m := range names {
		table[strings.ToLower(name)] = m
	}
	localeMu.Lock()
	locales[locale] = table
	localeMu.Unlock()
}

// MonthFromName resolves a localized month name.
func MonthFromName(locale, name string) (Month, error) {
	localeMu.RLock()
	table := locales[locale]
	localeMu.RUnlock()
	m, ok := table[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, &UnknownMonthError{Locale: locale, Name: name}
	}
	return m, nil
}

// CellToDate resolves a calendar cell (month header text, year, day number)
// to an ISO "YYYY-MM-DD" date.
func CellToDate(locale, monthName string, year, day int) (string, error) {
	m, err := MonthFromName(locale, monthName)
	if err != nil {
		return "", err
	}
	if day < 1 || day > 31 {
		return "", fmt.Errorf("day %d out of range", day)
	}
	return FormatDate(year, m, day), nil
}

// FormatDate renders a zero-padded ISO date.
func FormatDate(year int, month Month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, int(month), day)
}

// MarkAppointmentDates returns the set of dates that should be highlighted:
// dates of appointments that are not cancelled and start at or after now.
// The result is a fresh set each call; callers replace their previous marks
// wholesale rather than diffing.
func MarkAppointmentDates(appts []model.Appointment, now time.Time) map[string]struct{} {
	marked := make(map[string]struct{})
	for _, a := range appts {
		if a.IsCancelled() {
			continue
		}
		start, err := a.StartsAt(now.Location())
		if err != nil {
			continue
		}
		if !start.Before(now) {
			marked[a.Date] = struct{}{}
		}
	}
	return marked
}
