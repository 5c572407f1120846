package bot

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"groombot/internal/groomapi"
	"groombot/internal/metrics"
)

func (b *Bot) startLoginFlow(msg *tgbotapi.Message) {
	b.state.reset(msg.From.ID)
	st := b.state.get(msg.From.ID)
	st.Step = stepLoginEmail
	b.reply(msg.Chat.ID, "Inserisci la tua email:")
}

func (b *Bot) handleLoginStep(ctx context.Context, msg *tgbotapi.Message, st *userState, text string) {
	switch st.Step {
	case stepLoginEmail:
		st.LoginEmail = text
		st.Step = stepLoginPassword
		b.reply(msg.Chat.ID, "Inserisci la password:")
	case stepLoginPassword:
		email := st.LoginEmail
		b.state.reset(msg.From.ID)

		token, err := b.api.Login(ctx, email, text)
		if err != nil {
			metrics.IncAuthFailure()
			b.reply(msg.Chat.ID, groomapi.ServerMessage(err, "Accesso non riuscito. Riprova con /login."))
			return
		}
		if err := b.db.SetToken(ctx, msg.From.ID, token); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("store token")
			b.reply(msg.Chat.ID, "Errore interno, riprova.")
			return
		}
		_ = b.db.LogAction(ctx, msg.From.ID, "login", email)
		b.reply(msg.Chat.ID, "Accesso effettuato! ✅")
		b.sendMainMenu(msg.Chat.ID)
	}
}

func (b *Bot) startRegisterFlow(msg *tgbotapi.Message) {
	b.state.reset(msg.From.ID)
	st := b.state.get(msg.From.ID)
	st.Step = stepRegisterName
	b.reply(msg.Chat.ID, "Come ti chiami? (nome e cognome)")
}

func (b *Bot) handleRegisterStep(ctx context.Context, msg *tgbotapi.Message, st *userState, text string) {
	switch st.Step {
	case stepRegisterName:
		st.Register.FullName = text
		st.Step = stepRegisterEmail
		b.reply(msg.Chat.ID, "La tua email:")
	case stepRegisterEmail:
		if !strings.Contains(text, "@") {
			b.reply(msg.Chat.ID, "Email non valida, riprova:")
			return
		}
		st.Register.Email = text
		st.Step = stepRegisterPassword
		b.reply(msg.Chat.ID, "Scegli una password:")
	case stepRegisterPassword:
		st.Register.Password = text
		st.Step = stepRegisterDogName
		b.reply(msg.Chat.ID, "Il nome del tuo cane (oppure \"salta\" per aggiungerlo dopo):")
	case stepRegisterDogName:
		if strings.EqualFold(text, "salta") {
			b.finishRegistration(ctx, msg, st)
			return
		}
		st.Register.DogName = text
		st.Step = stepRegisterDogBreed
		b.reply(msg.Chat.ID, "La razza (oppure \"salta\"):")
	case stepRegisterDogBreed:
		if !strings.EqualFold(text, "salta") {
			st.Register.DogBreed = text
		}
		st.Step = stepRegisterDogAge
		b.reply(msg.Chat.ID, "L'età in anni (oppure \"salta\"):")
	case stepRegisterDogAge:
		if !strings.EqualFold(text, "salta") {
			age, err := strconv.Atoi(text)
			if err != nil || age < 0 || age > 30 {
				b.reply(msg.Chat.ID, "Età non valida, inserisci un numero tra 0 e 30 (oppure \"salta\"):")
				return
			}
			st.Register.DogAge = &age
		}
		b.finishRegistration(ctx, msg, st)
	}
}

func (b *Bot) finishRegistration(ctx context.Context, msg *tgbotapi.Message, st *userState) {
	req := st.Register
	b.state.reset(msg.From.ID)

	if err := b.api.Register(ctx, req); err != nil {
		b.reply(msg.Chat.ID, groomapi.ServerMessage(err, "Registrazione non riuscita."))
		return
	}
	_ = b.db.LogAction(ctx, msg.From.ID, "register", req.Email)
	b.reply(msg.Chat.ID, "Account creato! Ora accedi con /login.")
}

// checkStoredSession verifies a previously stored token on /start. An
// expired or rejected token is dropped so the menus don't pretend the user
// is logged in.
func (b *Bot) checkStoredSession(ctx context.Context, chatID, userID int64) {
	token := b.token(ctx, userID)
	if token == "" {
		b.reply(chatID, "Accedi con /login oppure registrati con /register.")
		return
	}
	status, err := b.api.Status(ctx, token)
	if err != nil || !status.LoggedIn {
		if err != nil && !groomapi.IsAuthError(err) {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("session check failed")
			return
		}
		if err := b.db.ClearToken(ctx, userID); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("clear stale token")
		}
		b.reply(chatID, "La sessione è scaduta, accedi di nuovo con /login.")
	}
}

// handleLogout clears the stored token. The backend call is best effort:
// the token is removed locally even when the API is unreachable.
func (b *Bot) handleLogout(ctx context.Context, msg *tgbotapi.Message) {
	token := b.token(ctx, msg.From.ID)
	if token == "" {
		b.reply(msg.Chat.ID, "Non sei connesso.")
		return
	}
	if err := b.api.Logout(ctx, token); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("logout call failed")
	}
	if err := b.db.ClearToken(ctx, msg.From.ID); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("clear token")
	}
	b.state.reset(msg.From.ID)
	_ = b.db.LogAction(ctx, msg.From.ID, "logout", "")
	b.reply(msg.Chat.ID, "Sei uscito. A presto! 👋")
}

func (b *Bot) handleProfile(ctx context.Context, chatID, userID int64) {
	token := b.requireToken(ctx, chatID, userID)
	if token == "" {
		return
	}
	profile, err := b.api.GetProfile(ctx, token)
	if err != nil {
		b.handleAPIError(ctx, chatID, userID, err, "Impossibile caricare il profilo.")
		return
	}
	dogs, err := b.api.Dogs(ctx, token)
	if err != nil {
		b.handleAPIError(ctx, chatID, userID, err, "Impossibile caricare i cani.")
		return
	}

	var sb strings.Builder
	sb.WriteString("👤 " + profile.FullName + "\n")
	if profile.Email != "" {
		sb.WriteString("✉️ " + profile.Email + "\n")
	}
	sb.WriteString("\n🐶 Cani:\n")
	if len(dogs) == 0 {
		sb.WriteString("nessun cane registrato (/adddog)\n")
	}
	for _, d := range dogs {
		sb.WriteString("• " + d.Label() + "\n")
	}
	b.reply(chatID, sb.String())
}

// handleAPIError reports an API failure to the user. A 401 means the stored
// token expired, so it is dropped and the user is asked to log in again.
func (b *Bot) handleAPIError(ctx context.Context, chatID, userID int64, err error, fallback string) {
	if groomapi.IsAuthError(err) {
		metrics.IncAuthFailure()
		if dbErr := b.db.ClearToken(ctx, userID); dbErr != nil {
			zerolog.Ctx(ctx).Error().Err(dbErr).Msg("clear expired token")
		}
		b.state.reset(userID)
		b.reply(chatID, "La sessione è scaduta, accedi di nuovo con /login.")
		return
	}
	zerolog.Ctx(ctx).Error().Err(err).Msg("api call failed")
	b.reply(chatID, groomapi.ServerMessage(err, fallback))
}
