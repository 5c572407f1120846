package bot

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"groombot/internal/model"
)

// StartReminders schedules a daily sweep that reminds every logged-in user
// of their next-day appointments.
func (b *Bot) StartReminders(ctx context.Context) {
	if b == nil || b.db == nil {
		return
	}

	go func() {
		// First wait until the next 09:00 local time, then tick every 24h.
		wait := b.timeUntilNextHour(9)
		timer := time.NewTimer(wait)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
				b.sendTomorrowReminders(ctx)
				timer.Reset(24 * time.Hour)
			}
		}
	}()
}

func (b *Bot) sendTomorrowReminders(ctx context.Context) {
	tokens, err := b.db.ListTokenUsers(ctx)
	if err != nil {
		b.logger.Error().Err(err).Msg("reminder: list users")
		return
	}

	tomorrow := b.now().In(b.loc).AddDate(0, 0, 1).Format("2006-01-02")
	for userID, token := range tokens {
		appts, err := b.api.Appointments(ctx, token)
		if err != nil {
			b.logger.Warn().Err(err).Int64("user_id", userID).Msg("reminder: load appointments")
			continue
		}
		for _, a := range appts {
			if a.Date != tomorrow || a.IsCancelled() {
				continue
			}
			b.send(tgbotapi.NewMessage(userID, formatReminderMessage(a)))
		}
	}
}

func formatReminderMessage(a model.Appointment) string {
	return fmt.Sprintf("Promemoria: domani %s alle %s hai %s per %s. 🐾",
		a.Date, shortTime(a.Time), a.ServiceName(), a.DogName())
}

func (b *Bot) timeUntilNextHour(hour int) time.Duration {
	now := b.now().In(b.loc)
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, b.loc)
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next.Sub(now)
}
