package bot

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"groombot/internal/calendar"
	"groombot/internal/model"
)

// generateCalendarKeyboard builds an inline calendar for a month. Dates in
// marked get a paw so the user can see days that already hold an upcoming
// appointment. Day callbacks carry the full ISO date.
func generateCalendarKeyboard(year int, month time.Month, locale string, marked map[string]struct{}) tgbotapi.InlineKeyboardMarkup {
	firstDay := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	weekdayOffset := int(firstDay.Weekday())
	if weekdayOffset == 0 {
		weekdayOffset = 7 // Monday-first grid
	}
	daysInMonth := daysIn(month, year)

	rows := make([][]tgbotapi.InlineKeyboardButton, 0)

	monthName := calendar.MonthName(locale, calendar.Month(month))
	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%s %d", monthName, year), "noop"),
	})

	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("Lun", "noop"),
		tgbotapi.NewInlineKeyboardButtonData("Mar", "noop"),
		tgbotapi.NewInlineKeyboardButtonData("Mer", "noop"),
		tgbotapi.NewInlineKeyboardButtonData("Gio", "noop"),
		tgbotapi.NewInlineKeyboardButtonData("Ven", "noop"),
		tgbotapi.NewInlineKeyboardButtonData("Sab", "noop"),
		tgbotapi.NewInlineKeyboardButtonData("Dom", "noop"),
	})

	day := 1
	for day <= daysInMonth {
		row := make([]tgbotapi.InlineKeyboardButton, 0, 7)
		for col := 1; col <= 7; col++ {
			if len(rows) == 2 && col < weekdayOffset {
				row = append(row, tgbotapi.NewInlineKeyboardButtonData(" ", "noop"))
				continue
			}
			if day > daysInMonth {
				row = append(row, tgbotapi.NewInlineKeyboardButtonData(" ", "noop"))
				continue
			}
			dateStr := calendar.FormatDate(year, calendar.Month(month), day)
			label := fmt.Sprintf("%d", day)
			if _, ok := marked[dateStr]; ok {
				label = fmt.Sprintf("🐾%d", day)
			}
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, "date:"+dateStr))
			day++
		}
		rows = append(rows, row)
	}

	prev := firstDay.AddDate(0, -1, 0)
	next := firstDay.AddDate(0, 1, 0)
	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("⬅️", fmt.Sprintf("cal:%04d-%02d", prev.Year(), int(prev.Month()))),
		tgbotapi.NewInlineKeyboardButtonData("➡️", fmt.Sprintf("cal:%04d-%02d", next.Year(), int(next.Month()))),
	})

	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// generateSlotsKeyboard builds the time-slot keyboard for a day. Only
// available slots are shown, three per row, labels trimmed to HH:MM.
func generateSlotsKeyboard(slots []model.TimeSlot) (tgbotapi.InlineKeyboardMarkup, int) {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0)
	var currentRow []tgbotapi.InlineKeyboardButton
	shown := 0
	for _, slot := range slots {
		if !slot.Available {
			continue
		}
		shown++
		currentRow = append(currentRow, tgbotapi.NewInlineKeyboardButtonData(slot.ShortLabel(), "slot:"+slot.TimeSlot))
		if len(currentRow) == 3 {
			rows = append(rows, currentRow)
			currentRow = nil
		}
	}
	if len(currentRow) > 0 {
		rows = append(rows, currentRow)
	}

	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Cambia data", "back:date"),
	})
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}, shown
}

// generateServicesKeyboard lists the service catalog, one button per row.
func generateServicesKeyboard(services []model.Service) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(services))
	for _, s := range services {
		label := fmt.Sprintf("%s — %.2f €", s.Name, s.Price)
		rows = append(rows, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("svc:%d", s.ID)),
		})
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// generateDogsKeyboard lists the user's dogs for the booking flow.
func generateDogsKeyboard(dogs []model.Dog) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(dogs))
	for _, d := range dogs {
		rows = append(rows, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(d.Label(), fmt.Sprintf("dog:%d", d.ID)),
		})
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func daysIn(m time.Month, year int) int {
	switch m {
	case time.February:
		if (year%4 == 0 && year%100 != 0) || year%400 == 0 {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}
