package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"groombot/internal/booking"
	"groombot/internal/calendar"
	"groombot/internal/metrics"
)

// startBookingFlow resets the user's selection and shows the service
// catalog. Service and dog survive a completed booking (see Reset), so a
// returning user only reselects date and time.
func (b *Bot) startBookingFlow(ctx context.Context, chatID, userID int64) {
	token := b.requireToken(ctx, chatID, userID)
	if token == "" {
		return
	}

	st := b.state.get(userID)
	st.Step = stepNone

	services, err := b.api.Services(ctx)
	if err != nil {
		b.handleAPIError(ctx, chatID, userID, err, "Impossibile caricare i servizi.")
		return
	}
	st.Services = services

	dogs, err := b.api.Dogs(ctx, token)
	if err != nil {
		b.handleAPIError(ctx, chatID, userID, err, "Impossibile caricare i cani.")
		return
	}
	st.Dogs = dogs

	appts, err := b.api.Appointments(ctx, token)
	if err == nil {
		st.Marked = calendar.MarkAppointmentDates(appts, b.now().In(b.loc))
	} else {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("load appointments for calendar marks")
		st.Marked = nil
	}

	now := b.now().In(b.loc)
	st.CalYear = now.Year()
	st.CalMonth = now.Month()

	logger := b.logger
	st.Selection.Subscribe(func(change booking.Change, s *booking.Selection) {
		logger.Debug().
			Int64("user_id", userID).
			Str("change", string(change)).
			Bool("complete", s.IsComplete()).
			Msg("selection changed")
	})

	msg := tgbotapi.NewMessage(chatID, "Scegli il servizio:")
	msg.ReplyMarkup = generateServicesKeyboard(services)
	b.send(msg)
}

func (b *Bot) handleServiceCallback(ctx context.Context, chatID, userID int64, st *userState, data string) {
	id := strings.TrimPrefix(data, "svc:")
	name := ""
	for _, s := range st.Services {
		if fmt.Sprintf("%d", s.ID) == id {
			name = s.Name
			break
		}
	}
	st.Selection.SetService(id, name)

	switch len(st.Dogs) {
	case 0:
		b.reply(chatID, "Non hai ancora registrato nessun cane. Aggiungilo con /adddog, poi riprova con /book.")
	case 1:
		// Only one dog, no need to ask.
		st.Selection.SetDog(fmt.Sprintf("%d", st.Dogs[0].ID))
		b.reply(chatID, "Prenoto per "+st.Dogs[0].Label()+".")
		b.sendCalendarView(chatID, st)
	default:
		msg := tgbotapi.NewMessage(chatID, "Per quale cane?")
		msg.ReplyMarkup = generateDogsKeyboard(st.Dogs)
		b.send(msg)
	}
}

func (b *Bot) handleDogCallback(ctx context.Context, chatID, userID int64, st *userState, data string) {
	id := strings.TrimPrefix(data, "dog:")
	st.Selection.SetDog(id)
	b.sendCalendarView(chatID, st)
}

func (b *Bot) sendCalendarView(chatID int64, st *userState) {
	msg := tgbotapi.NewMessage(chatID, "Scegli una data (🐾 = hai già un appuntamento):")
	msg.ReplyMarkup = generateCalendarKeyboard(st.CalYear, st.CalMonth, b.locale, st.Marked)
	b.send(msg)
}

func (b *Bot) handleCalendarNav(chatID int64, st *userState, data string) {
	var year, month int
	if _, err := fmt.Sscanf(strings.TrimPrefix(data, "cal:"), "%d-%d", &year, &month); err != nil || month < 1 || month > 12 {
		return
	}
	st.CalYear = year
	st.CalMonth = time.Month(month)
	b.sendCalendarView(chatID, st)
}

// handleDateCallback records the date and kicks off an availability fetch
// in the background. The result comes back tagged with this date so that a
// slower response for an earlier pick cannot overwrite a newer one.
func (b *Bot) handleDateCallback(ctx context.Context, chatID, userID int64, st *userState, data string) {
	date := strings.TrimPrefix(data, "date:")
	st.Selection.SetDate(date)
	b.reply(chatID, "Controllo gli orari per il "+date+"...")

	go func() {
		fetchCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		slots, err := b.api.Availability(fetchCtx, date)
		b.availCh <- availabilityResult{userID: userID, chatID: chatID, date: date, slots: slots, err: err}
	}()
}

// handleAvailabilityResult runs on the update loop. Results for a date the
// user has already navigated away from are dropped.
func (b *Bot) handleAvailabilityResult(ctx context.Context, res availabilityResult) {
	st := b.state.get(res.userID)
	if st.Selection.Date() != res.date {
		metrics.IncStaleAvailabilityDropped()
		b.logger.Debug().
			Int64("user_id", res.userID).
			Str("stale_date", res.date).
			Str("current_date", st.Selection.Date()).
			Msg("dropping stale availability response")
		return
	}
	if res.err != nil {
		b.logger.Error().Err(res.err).Str("date", res.date).Msg("availability fetch failed")
		b.reply(res.chatID, "Impossibile caricare gli orari, riprova.")
		return
	}

	markup, shown := generateSlotsKeyboard(res.slots)
	if shown == 0 {
		b.reply(res.chatID, "Nessun orario disponibile per il "+res.date+", scegli un altro giorno.")
		b.sendCalendarView(res.chatID, st)
		return
	}
	msg := tgbotapi.NewMessage(res.chatID, "Orari disponibili per il "+res.date+":")
	msg.ReplyMarkup = markup
	b.send(msg)
}

func (b *Bot) handleSlotCallback(chatID int64, st *userState, data string) {
	slot := strings.TrimPrefix(data, "slot:")
	st.Selection.SetTime(slot)
	if st.Selection.Time() == "" {
		// SetTime refuses a slot when no date is selected.
		b.reply(chatID, "Prima scegli una data.")
		b.sendCalendarView(chatID, st)
		return
	}
	b.sendSummary(chatID, st)
}

// sendSummary shows the current selection. The confirm button appears only
// once all four fields are set.
func (b *Bot) sendSummary(chatID int64, st *userState) {
	sel := st.Selection
	dogLabel := sel.DogID()
	for _, d := range st.Dogs {
		if fmt.Sprintf("%d", d.ID) == sel.DogID() {
			dogLabel = d.Label()
			break
		}
	}

	var sb strings.Builder
	sb.WriteString("Riepilogo prenotazione:\n\n")
	sb.WriteString("✂️ Servizio: " + orDash(sel.ServiceName()) + "\n")
	sb.WriteString("🐶 Cane: " + orDash(dogLabel) + "\n")
	sb.WriteString("📅 Data: " + orDash(sel.Date()) + "\n")
	sb.WriteString("🕐 Ora: " + orDash(shortTime(sel.Time())) + "\n")

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, 2)
	if sel.IsComplete() {
		rows = append(rows, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("✅ Conferma", "confirm"),
		})
	}
	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("❌ Annulla", "abort"),
	})

	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ReplyMarkup = tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
	b.send(msg)
}

// handleConfirmCallback validates the selection and submits it in the
// background. At most one submission per user may be in flight.
func (b *Bot) handleConfirmCallback(ctx context.Context, chatID, userID int64, st *userState) {
	if st.SubmitInFlight {
		b.reply(chatID, "Sto già inviando la prenotazione, un attimo...")
		return
	}
	token := b.requireToken(ctx, chatID, userID)
	if token == "" {
		return
	}

	req, err := st.Selection.Build(len(st.Dogs) > 0)
	if err != nil {
		var vErr *booking.ValidationError
		if errors.As(err, &vErr) {
			metrics.IncBookingFailed("validation")
			b.reply(chatID, vErr.Error())
			return
		}
		metrics.IncBookingFailed("bad_selection")
		b.reply(chatID, "La selezione non è valida, ricomincia con /book.")
		return
	}

	st.SubmitInFlight = true
	b.reply(chatID, "Invio la prenotazione...")

	go func() {
		submitCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		appt, err := b.api.CreateAppointment(submitCtx, token, req)
		b.submitCh <- submitResult{userID: userID, chatID: chatID, appt: appt, err: err}
	}()
}

// handleSubmitResult runs on the update loop and releases the in-flight
// guard before anything else.
func (b *Bot) handleSubmitResult(ctx context.Context, res submitResult) {
	st := b.state.get(res.userID)
	st.SubmitInFlight = false

	if res.err != nil {
		metrics.IncBookingFailed("api")
		b.handleAPIError(ctx, res.chatID, res.userID, res.err, "Prenotazione non riuscita.")
		return
	}

	metrics.IncBookingCreated()
	_ = b.db.LogAction(ctx, res.userID, "booking_created",
		fmt.Sprintf("appointment %d on %s %s", res.appt.ID, res.appt.Date, res.appt.Time))

	// Date and time are cleared for the next booking, service and dog stay.
	st.Selection.Reset()
	if st.Marked == nil {
		st.Marked = make(map[string]struct{})
	}
	st.Marked[res.appt.Date] = struct{}{}

	b.reply(res.chatID, fmt.Sprintf("Appuntamento confermato! 🎉\n📅 %s alle %s (n. %d)",
		res.appt.Date, shortTime(res.appt.Time), res.appt.ID))
	b.sendMainMenu(res.chatID)

	if b.sheets != nil {
		token := b.token(ctx, res.userID)
		go b.syncSheets(res.userID, token)
	}
}

// syncSheets pushes the fresh appointment list to the staff spreadsheet.
func (b *Bot) syncSheets(userID int64, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	appts, err := b.api.Appointments(ctx, token)
	if err != nil {
		b.logger.Warn().Err(err).Msg("sheets sync: load appointments")
		return
	}
	if err := b.sheets.SyncAppointments(ctx, appts); err != nil {
		b.logger.Warn().Err(err).Int64("user_id", userID).Msg("sheets sync failed")
	}
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

func shortTime(t string) string {
	if len(t) >= 5 {
		return t[:5]
	}
	return t
}
