package bot

import (
	"context"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groombot/internal/db"
	"groombot/internal/model"
)

type fakeTelegramClient struct {
	sent []tgbotapi.Chattable
}

func (c *fakeTelegramClient) Send(msg tgbotapi.Chattable) (tgbotapi.Message, error) {
	c.sent = append(c.sent, msg)
	return tgbotapi.Message{}, nil
}

func (c *fakeTelegramClient) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (c *fakeTelegramClient) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return make(chan tgbotapi.Update)
}

func (c *fakeTelegramClient) SelfUser() tgbotapi.User {
	return tgbotapi.User{UserName: "groombot_test"}
}

func newTestBot(t *testing.T) (*Bot, *fakeTelegramClient) {
	t.Helper()
	database, err := db.NewDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	tg := &fakeTelegramClient{}
	logger := zerolog.Nop()
	b, err := NewWithTelegramClient(tg, nil, database, nil, time.UTC, "it", &logger)
	require.NoError(t, err)
	return b, tg
}

func lastMessageText(t *testing.T, tg *fakeTelegramClient) string {
	t.Helper()
	require.NotEmpty(t, tg.sent)
	msg, ok := tg.sent[len(tg.sent)-1].(tgbotapi.MessageConfig)
	require.True(t, ok, "last sent item is not a message")
	return msg.Text
}

func TestStaleAvailabilityResultIsDropped(t *testing.T) {
	b, tg := newTestBot(t)

	st := b.state.get(42)
	st.Selection.SetService("1", "Bagno")
	st.Selection.SetDate("2024-06-12")

	// Response for a date the user already abandoned.
	b.handleAvailabilityResult(context.Background(), availabilityResult{
		userID: 42,
		chatID: 100,
		date:   "2024-06-10",
		slots:  []model.TimeSlot{{TimeSlot: "09:00:00", Available: true}},
	})

	assert.Empty(t, tg.sent, "stale result must not produce any message")
	assert.Equal(t, "2024-06-12", st.Selection.Date())
}

func TestCurrentAvailabilityResultRendersSlots(t *testing.T) {
	b, tg := newTestBot(t)

	st := b.state.get(42)
	st.Selection.SetDate("2024-06-10")

	b.handleAvailabilityResult(context.Background(), availabilityResult{
		userID: 42,
		chatID: 100,
		date:   "2024-06-10",
		slots: []model.TimeSlot{
			{TimeSlot: "09:00:00", Available: true},
			{TimeSlot: "10:00:00", Available: false},
		},
	})

	require.Len(t, tg.sent, 1)
	msg := tg.sent[0].(tgbotapi.MessageConfig)
	markup := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	// One row of slots plus the back row; the unavailable slot is hidden.
	require.Len(t, markup.InlineKeyboard, 2)
	assert.Equal(t, "09:00", markup.InlineKeyboard[0][0].Text)
	assert.Equal(t, "slot:09:00:00", *markup.InlineKeyboard[0][0].CallbackData)
}

func TestNoAvailableSlotsFallsBackToCalendar(t *testing.T) {
	b, tg := newTestBot(t)

	st := b.state.get(42)
	st.Selection.SetDate("2024-06-10")
	st.CalYear = 2024
	st.CalMonth = time.June

	b.handleAvailabilityResult(context.Background(), availabilityResult{
		userID: 42,
		chatID: 100,
		date:   "2024-06-10",
		slots:  []model.TimeSlot{{TimeSlot: "09:00:00", Available: false}},
	})

	require.Len(t, tg.sent, 2)
	first := tg.sent[0].(tgbotapi.MessageConfig)
	assert.Contains(t, first.Text, "Nessun orario disponibile")
}

func TestConfirmWhileSubmitInFlightIsRejected(t *testing.T) {
	b, tg := newTestBot(t)

	st := b.state.get(42)
	st.SubmitInFlight = true

	b.handleConfirmCallback(context.Background(), 100, 42, st)

	require.Len(t, tg.sent, 1)
	assert.Contains(t, lastMessageText(t, tg), "già inviando")
	assert.True(t, st.SubmitInFlight)
}

func TestSubmitResultClearsGuardAndResetsDateTime(t *testing.T) {
	b, tg := newTestBot(t)

	st := b.state.get(42)
	st.Selection.SetService("3", "Bagno e Spazzolatura")
	st.Selection.SetDog("7")
	st.Selection.SetDate("2024-06-10")
	st.Selection.SetTime("09:00:00")
	st.SubmitInFlight = true

	b.handleSubmitResult(context.Background(), submitResult{
		userID: 42,
		chatID: 100,
		appt:   model.Appointment{ID: 55, Date: "2024-06-10", Time: "09:00:00"},
	})

	assert.False(t, st.SubmitInFlight)
	assert.Equal(t, "3", st.Selection.ServiceID())
	assert.Equal(t, "7", st.Selection.DogID())
	assert.Empty(t, st.Selection.Date())
	assert.Empty(t, st.Selection.Time())
	assert.Contains(t, st.Marked, "2024-06-10")
	require.NotEmpty(t, tg.sent)
	first := tg.sent[0].(tgbotapi.MessageConfig)
	assert.Contains(t, first.Text, "Appuntamento confermato")
}

func TestCalendarKeyboard(t *testing.T) {
	marked := map[string]struct{}{"2024-06-10": {}}
	markup := generateCalendarKeyboard(2024, time.June, "it", marked)

	header := markup.InlineKeyboard[0][0].Text
	assert.Equal(t, "Giugno 2024", header)

	var found, foundMarked bool
	for _, row := range markup.InlineKeyboard {
		for _, btn := range row {
			if btn.CallbackData == nil {
				continue
			}
			if *btn.CallbackData == "date:2024-06-05" {
				found = true
				assert.Equal(t, "5", btn.Text)
			}
			if *btn.CallbackData == "date:2024-06-10" {
				foundMarked = true
				assert.Equal(t, "🐾10", btn.Text)
			}
		}
	}
	assert.True(t, found, "day 5 button with zero-padded callback")
	assert.True(t, foundMarked, "marked day carries the paw label")

	nav := markup.InlineKeyboard[len(markup.InlineKeyboard)-1]
	require.Len(t, nav, 2)
	assert.Equal(t, "cal:2024-05", *nav[0].CallbackData)
	assert.Equal(t, "cal:2024-07", *nav[1].CallbackData)
}

func TestCalendarKeyboardDecemberNavWrapsYear(t *testing.T) {
	markup := generateCalendarKeyboard(2024, time.December, "it", nil)
	nav := markup.InlineKeyboard[len(markup.InlineKeyboard)-1]
	assert.Equal(t, "cal:2024-11", *nav[0].CallbackData)
	assert.Equal(t, "cal:2025-01", *nav[1].CallbackData)
}

func TestDaysIn(t *testing.T) {
	assert.Equal(t, 29, daysIn(time.February, 2024))
	assert.Equal(t, 28, daysIn(time.February, 2023))
	assert.Equal(t, 28, daysIn(time.February, 1900))
	assert.Equal(t, 29, daysIn(time.February, 2000))
	assert.Equal(t, 30, daysIn(time.April, 2024))
	assert.Equal(t, 31, daysIn(time.July, 2024))
}

func TestShortTime(t *testing.T) {
	assert.Equal(t, "09:00", shortTime("09:00:00"))
	assert.Equal(t, "09:00", shortTime("09:00"))
	assert.Equal(t, "9:00", shortTime("9:00"))
}
