package bot

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"groombot/internal/booking"
	"groombot/internal/export"
	"groombot/internal/metrics"
)

// handleAppointments shows upcoming appointments with cancel buttons and
// the first page of the history.
func (b *Bot) handleAppointments(ctx context.Context, chatID, userID int64) {
	token := b.requireToken(ctx, chatID, userID)
	if token == "" {
		return
	}
	appts, err := b.api.Appointments(ctx, token)
	if err != nil {
		b.handleAPIError(ctx, chatID, userID, err, "Impossibile caricare gli appuntamenti.")
		return
	}

	buckets := booking.Partition(appts, b.now().In(b.loc))

	if len(buckets.Upcoming) == 0 {
		b.reply(chatID, "Non hai appuntamenti in programma. Prenota con /book! 🐾")
	} else {
		var sb strings.Builder
		sb.WriteString("📋 Prossimi appuntamenti:\n\n")
		rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(buckets.Upcoming))
		for _, a := range buckets.Upcoming {
			sb.WriteString(fmt.Sprintf("• %s alle %s · %s per %s", a.Date, shortTime(a.Time), a.ServiceName(), a.DogName()))
			if price, ok := a.ServicePrice(); ok {
				sb.WriteString(fmt.Sprintf(" · %.2f €", price))
			}
			sb.WriteString("\n")
			rows = append(rows, []tgbotapi.InlineKeyboardButton{
				tgbotapi.NewInlineKeyboardButtonData(
					fmt.Sprintf("❌ Annulla %s %s", a.Date, shortTime(a.Time)),
					fmt.Sprintf("cancelapt:%d:%s", a.ID, a.Date),
				),
			})
		}
		msg := tgbotapi.NewMessage(chatID, sb.String())
		msg.ReplyMarkup = tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
		b.send(msg)
	}

	if len(buckets.PastOrCancelled) > 0 {
		b.renderPastAppointments(chatID, 0, 0, buckets.PastOrCancelled)
	}
}

// handleAppointmentsPage re-renders a page of the history in place.
func (b *Bot) handleAppointmentsPage(ctx context.Context, chatID, userID int64, messageID int, data string) {
	page, err := strconv.Atoi(strings.TrimPrefix(data, "apptpage:"))
	if err != nil || page < 0 {
		return
	}
	token := b.requireToken(ctx, chatID, userID)
	if token == "" {
		return
	}
	appts, err := b.api.Appointments(ctx, token)
	if err != nil {
		b.handleAPIError(ctx, chatID, userID, err, "Impossibile caricare gli appuntamenti.")
		return
	}
	buckets := booking.Partition(appts, b.now().In(b.loc))
	b.renderPastAppointments(chatID, messageID, page, buckets.PastOrCancelled)
}

func (b *Bot) handleCancelAppointment(ctx context.Context, chatID, userID int64, data string) {
	parts := strings.SplitN(strings.TrimPrefix(data, "cancelapt:"), ":", 2)
	if len(parts) != 2 {
		return
	}
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || id <= 0 {
		return
	}
	date := parts[1]

	token := b.requireToken(ctx, chatID, userID)
	if token == "" {
		return
	}
	if err := b.api.CancelAppointment(ctx, token, id, date); err != nil {
		b.handleAPIError(ctx, chatID, userID, err, "Impossibile annullare l'appuntamento.")
		return
	}
	metrics.IncBookingCancelled()
	_ = b.db.LogAction(ctx, userID, "booking_cancelled", fmt.Sprintf("appointment %d on %s", id, date))
	b.reply(chatID, fmt.Sprintf("Appuntamento del %s annullato.", date))
	b.handleAppointments(ctx, chatID, userID)
}

// handleExport sends the user's appointments as an Excel workbook.
func (b *Bot) handleExport(ctx context.Context, chatID, userID int64) {
	token := b.requireToken(ctx, chatID, userID)
	if token == "" {
		return
	}
	appts, err := b.api.Appointments(ctx, token)
	if err != nil {
		b.handleAPIError(ctx, chatID, userID, err, "Impossibile caricare gli appuntamenti.")
		return
	}

	buckets := booking.Partition(appts, b.now().In(b.loc))
	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, buckets); err != nil {
		b.logger.Error().Err(err).Msg("export workbook")
		b.reply(chatID, "Esportazione non riuscita.")
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  export.Filename(b.now().In(b.loc)),
		Bytes: buf.Bytes(),
	})
	doc.Caption = "I tuoi appuntamenti 📊"
	b.send(doc)
	_ = b.db.LogAction(ctx, userID, "export", "")
}
