package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"groombot/internal/model"
)

const historyPerPage = 8

// renderPastAppointments shows one page of the appointment history, newest
// first. With messageID set the existing message is edited in place.
func (b *Bot) renderPastAppointments(chatID int64, messageID, page int, past []model.Appointment) {
	totalPages := (len(past) + historyPerPage - 1) / historyPerPage
	if totalPages == 0 {
		totalPages = 1
	}
	if page >= totalPages {
		page = totalPages - 1
	}
	startIdx := page * historyPerPage
	endIdx := startIdx + historyPerPage
	if endIdx > len(past) {
		endIdx = len(past)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🗂 Storico (pagina %d di %d):\n\n", page+1, totalPages))
	for _, a := range past[startIdx:endIdx] {
		status := "COMPLETATO"
		if a.IsCancelled() {
			status = "ANNULLATO"
		}
		sb.WriteString(fmt.Sprintf("• %s alle %s · %s per %s · %s",
			a.Date, shortTime(a.Time), a.ServiceName(), a.DogName(), status))
		if price, ok := a.ServicePrice(); ok {
			sb.WriteString(fmt.Sprintf(" · %.2f €", price))
		}
		sb.WriteString("\n")
	}

	var nav []tgbotapi.InlineKeyboardButton
	if page > 0 {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("⬅️", fmt.Sprintf("apptpage:%d", page-1)))
	}
	if endIdx < len(past) {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("➡️", fmt.Sprintf("apptpage:%d", page+1)))
	}

	var keyboard [][]tgbotapi.InlineKeyboardButton
	if len(nav) > 0 {
		keyboard = append(keyboard, nav)
	}
	markup := tgbotapi.InlineKeyboardMarkup{InlineKeyboard: keyboard}

	if messageID != 0 {
		edit := tgbotapi.NewEditMessageText(chatID, messageID, sb.String())
		if len(keyboard) > 0 {
			edit.ReplyMarkup = &markup
		}
		b.send(edit)
		return
	}
	msg := tgbotapi.NewMessage(chatID, sb.String())
	if len(keyboard) > 0 {
		msg.ReplyMarkup = markup
	}
	b.send(msg)
}
