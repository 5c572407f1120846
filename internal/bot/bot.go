// Package bot implements the Telegram front end of the grooming salon:
// login and registration, the booking flow, appointment management and
// dog profiles, all backed by the salon REST API.
package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"groombot/internal/db"
	"groombot/internal/google"
	"groombot/internal/groomapi"
	"groombot/internal/model"
)

type telegramClient interface {
	Send(tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	SelfUser() tgbotapi.User
}

type realTelegramClient struct {
	api *tgbotapi.BotAPI
}

func (c *realTelegramClient) Send(msg tgbotapi.Chattable) (tgbotapi.Message, error) {
	return c.api.Send(msg)
}

func (c *realTelegramClient) Request(msg tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return c.api.Request(msg)
}

func (c *realTelegramClient) GetUpdatesChan(cfg tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return c.api.GetUpdatesChan(cfg)
}

func (c *realTelegramClient) SelfUser() tgbotapi.User {
	return c.api.Self
}

// availabilityResult carries the outcome of a time-slot fetch back to the
// update loop, together with the date it was requested for. The loop drops
// the result when the user's selected date has moved on in the meantime.
type availabilityResult struct {
	userID int64
	chatID int64
	date   string
	slots  []model.TimeSlot
	err    error
}

// submitResult carries the outcome of a booking submission back to the
// update loop.
type submitResult struct {
	userID int64
	chatID int64
	appt   model.Appointment
	err    error
}

// Bot is the Telegram bot for the grooming salon.
type Bot struct {
	api     *groomapi.Client
	db      *db.DB
	tg      telegramClient
	state   *stateStore
	sheets  *google.SheetsService
	logger  *zerolog.Logger
	limiter *rate.Limiter
	loc     *time.Location
	locale  string

	availCh  chan availabilityResult
	submitCh chan submitResult

	now func() time.Time
}

func New(
	token string,
	debug bool,
	apiClient *groomapi.Client,
	database *db.DB,
	sheets *google.SheetsService,
	loc *time.Location,
	locale string,
	logger *zerolog.Logger,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	api.Debug = debug
	return newBot(&realTelegramClient{api: api}, apiClient, database, sheets, loc, locale, logger)
}

// NewWithTelegramClient allows injecting a mocked Telegram client for tests.
func NewWithTelegramClient(
	tg telegramClient,
	apiClient *groomapi.Client,
	database *db.DB,
	sheets *google.SheetsService,
	loc *time.Location,
	locale string,
	logger *zerolog.Logger,
) (*Bot, error) {
	return newBot(tg, apiClient, database, sheets, loc, locale, logger)
}

func newBot(
	tg telegramClient,
	apiClient *groomapi.Client,
	database *db.DB,
	sheets *google.SheetsService,
	loc *time.Location,
	locale string,
	logger *zerolog.Logger,
) (*Bot, error) {
	if tg == nil {
		return nil, fmt.Errorf("telegram client is nil")
	}
	if loc == nil {
		loc = time.Local
	}
	if locale == "" {
		locale = "it"
	}
	return &Bot{
		api:      apiClient,
		db:       database,
		tg:       tg,
		state:    newStateStore(),
		sheets:   sheets,
		logger:   logger,
		limiter:  rate.NewLimiter(rate.Limit(25), 5),
		loc:      loc,
		locale:   locale,
		availCh:  make(chan availabilityResult, 16),
		submitCh: make(chan submitResult, 16),
		now:      time.Now,
	}, nil
}

var mainMenu = tgbotapi.NewReplyKeyboard(
	tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton("🗓 Prenota"),
		tgbotapi.NewKeyboardButton("📋 I miei appuntamenti"),
	),
	tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton("🐶 I miei cani"),
		tgbotapi.NewKeyboardButton("👤 Profilo"),
	),
)

func (b *Bot) sendMainMenu(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, "Cosa vuoi fare?")
	msg.ReplyMarkup = mainMenu
	b.send(msg)
}

// Start begins polling updates. Availability fetches and booking
// submissions run in goroutines and report back over channels so that all
// state mutation stays on this loop.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.tg.GetUpdatesChan(u)
	b.logger.Info().Str("username", b.tg.SelfUser().UserName).Msg("Groombot authorized")

	for {
		select {
		case <-ctx.Done():
			return
		case update := <-updates:
			requestID := uuid.New().String()
			l := b.logger.With().Str("request_id", requestID).Logger()
			b.handleUpdate(l.WithContext(ctx), &update)
		case res := <-b.availCh:
			b.handleAvailabilityResult(ctx, res)
		case res := <-b.submitCh:
			b.handleSubmitResult(ctx, res)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update *tgbotapi.Update) {
	l := zerolog.Ctx(ctx)
	if update.CallbackQuery != nil {
		l.Debug().
			Int64("user_id", update.CallbackQuery.From.ID).
			Str("data", update.CallbackQuery.Data).
			Msg("Handling callback query")
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}
	if update.Message != nil {
		l.Debug().
			Int64("user_id", update.Message.From.ID).
			Msg("Handling message")
		b.handleMessage(ctx, update.Message)
		return
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg == nil || msg.From == nil {
		return
	}
	text := strings.TrimSpace(msg.Text)

	// Commands and menu buttons interrupt any active flow.
	switch {
	case strings.HasPrefix(text, "/start"):
		b.state.reset(msg.From.ID)
		b.reply(msg.Chat.ID, "Benvenuto da Toelettatura Dolci Zampe! 🐾")
		b.checkStoredSession(ctx, msg.Chat.ID, msg.From.ID)
		b.sendMainMenu(msg.Chat.ID)
		return
	case strings.HasPrefix(text, "/help"):
		b.reply(msg.Chat.ID, "Comandi: /book prenota, /appointments i tuoi appuntamenti, "+
			"/dogs i tuoi cani, /profile profilo, /export esporta in Excel, "+
			"/login accedi, /register registrati, /logout esci, /cancel annulla l'operazione corrente")
		return
	case strings.HasPrefix(text, "/cancel"):
		b.state.reset(msg.From.ID)
		b.reply(msg.Chat.ID, "Operazione annullata.")
		b.sendMainMenu(msg.Chat.ID)
		return
	case strings.HasPrefix(text, "/login"):
		b.startLoginFlow(msg)
		return
	case strings.HasPrefix(text, "/register"):
		b.startRegisterFlow(msg)
		return
	case strings.HasPrefix(text, "/logout"):
		b.handleLogout(ctx, msg)
		return
	case strings.HasPrefix(text, "/book") || text == "🗓 Prenota":
		b.startBookingFlow(ctx, msg.Chat.ID, msg.From.ID)
		return
	case strings.HasPrefix(text, "/appointments") || text == "📋 I miei appuntamenti":
		b.handleAppointments(ctx, msg.Chat.ID, msg.From.ID)
		return
	case strings.HasPrefix(text, "/dogs") || text == "🐶 I miei cani":
		b.handleDogs(ctx, msg.Chat.ID, msg.From.ID)
		return
	case strings.HasPrefix(text, "/adddog"):
		b.startDogFlow(msg.Chat.ID, msg.From.ID, 0)
		return
	case strings.HasPrefix(text, "/profile") || text == "👤 Profilo":
		b.handleProfile(ctx, msg.Chat.ID, msg.From.ID)
		return
	case strings.HasPrefix(text, "/export"):
		b.handleExport(ctx, msg.Chat.ID, msg.From.ID)
		return
	}

	st := b.state.get(msg.From.ID)
	switch st.Step {
	case stepLoginEmail, stepLoginPassword:
		b.handleLoginStep(ctx, msg, st, text)
	case stepRegisterName, stepRegisterEmail, stepRegisterPassword,
		stepRegisterDogName, stepRegisterDogBreed, stepRegisterDogAge:
		b.handleRegisterStep(ctx, msg, st, text)
	case stepDogName, stepDogBreed, stepDogAge:
		b.handleDogStep(ctx, msg, st, text)
	}
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq == nil || cq.Message == nil {
		return
	}
	data := cq.Data
	_ = b.answerCallback(cq.ID)
	if data == "noop" {
		return
	}

	userID := cq.From.ID
	chatID := cq.Message.Chat.ID
	st := b.state.get(userID)

	switch {
	case strings.HasPrefix(data, "svc:"):
		b.handleServiceCallback(ctx, chatID, userID, st, data)
	case strings.HasPrefix(data, "dog:"):
		b.handleDogCallback(ctx, chatID, userID, st, data)
	case strings.HasPrefix(data, "cal:"):
		b.handleCalendarNav(chatID, st, data)
	case strings.HasPrefix(data, "date:"):
		b.handleDateCallback(ctx, chatID, userID, st, data)
	case strings.HasPrefix(data, "slot:"):
		b.handleSlotCallback(chatID, st, data)
	case data == "back:date":
		b.sendCalendarView(chatID, st)
	case data == "confirm":
		b.handleConfirmCallback(ctx, chatID, userID, st)
	case data == "abort":
		b.state.reset(userID)
		b.reply(chatID, "Prenotazione annullata.")
		b.sendMainMenu(chatID)
	case strings.HasPrefix(data, "cancelapt:"):
		b.handleCancelAppointment(ctx, chatID, userID, data)
	case strings.HasPrefix(data, "dogedit:"):
		b.handleDogEditCallback(chatID, userID, data)
	case strings.HasPrefix(data, "dogdel:"):
		b.handleDogDeleteCallback(ctx, chatID, userID, data)
	case strings.HasPrefix(data, "apptpage:"):
		b.handleAppointmentsPage(ctx, chatID, userID, cq.Message.MessageID, data)
	}
}

func (b *Bot) send(msg tgbotapi.Chattable) {
	_ = b.limiter.Wait(context.Background())
	if _, err := b.tg.Send(msg); err != nil {
		b.logger.Warn().Err(err).Msg("telegram send failed")
	}
}

func (b *Bot) reply(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) answerCallback(id string) error {
	_, err := b.tg.Request(tgbotapi.NewCallback(id, ""))
	return err
}

// token returns the stored API token for a Telegram user, or "" when the
// user has never logged in.
func (b *Bot) token(ctx context.Context, userID int64) string {
	token, err := b.db.GetToken(ctx, userID)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("user_id", userID).Msg("load token")
		return ""
	}
	return token
}

// requireToken sends a login prompt and returns "" when the user has no
// stored token.
func (b *Bot) requireToken(ctx context.Context, chatID, userID int64) string {
	token := b.token(ctx, userID)
	if token == "" {
		b.reply(chatID, "Devi prima accedere: /login (oppure /register per creare un account)")
	}
	return token
}
