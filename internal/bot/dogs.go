package bot

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"groombot/internal/model"
)

// handleDogs lists the user's dogs with edit and delete buttons.
func (b *Bot) handleDogs(ctx context.Context, chatID, userID int64) {
	token := b.requireToken(ctx, chatID, userID)
	if token == "" {
		return
	}
	dogs, err := b.api.Dogs(ctx, token)
	if err != nil {
		b.handleAPIError(ctx, chatID, userID, err, "Impossibile caricare i cani.")
		return
	}
	st := b.state.get(userID)
	st.Dogs = dogs

	if len(dogs) == 0 {
		b.reply(chatID, "Non hai ancora registrato nessun cane. Aggiungilo con /adddog! 🐶")
		return
	}

	var sb strings.Builder
	sb.WriteString("🐶 I tuoi cani:\n\n")
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(dogs))
	for _, d := range dogs {
		sb.WriteString("• " + d.Label())
		if d.Age != nil {
			sb.WriteString(", " + strconv.Itoa(*d.Age) + " anni")
		}
		sb.WriteString("\n")
		rows = append(rows, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("✏️ "+d.Name, "dogedit:"+strconv.FormatInt(d.ID, 10)),
			tgbotapi.NewInlineKeyboardButtonData("🗑 "+d.Name, "dogdel:"+strconv.FormatInt(d.ID, 10)),
		})
	}
	sb.WriteString("\nPer aggiungerne un altro: /adddog")

	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ReplyMarkup = tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
	b.send(msg)
}

// startDogFlow begins the add or edit dialog. editDogID 0 means add.
func (b *Bot) startDogFlow(chatID, userID int64, editDogID int64) {
	b.state.reset(userID)
	st := b.state.get(userID)
	st.Step = stepDogName
	st.EditDogID = editDogID
	if editDogID != 0 {
		b.reply(chatID, "Nuovo nome del cane:")
		return
	}
	b.reply(chatID, "Come si chiama il cane?")
}

func (b *Bot) handleDogEditCallback(chatID, userID int64, data string) {
	id, err := strconv.ParseInt(strings.TrimPrefix(data, "dogedit:"), 10, 64)
	if err != nil || id <= 0 {
		return
	}
	b.startDogFlow(chatID, userID, id)
}

func (b *Bot) handleDogDeleteCallback(ctx context.Context, chatID, userID int64, data string) {
	id, err := strconv.ParseInt(strings.TrimPrefix(data, "dogdel:"), 10, 64)
	if err != nil || id <= 0 {
		return
	}
	token := b.requireToken(ctx, chatID, userID)
	if token == "" {
		return
	}
	if err := b.api.DeleteDog(ctx, token, id); err != nil {
		b.handleAPIError(ctx, chatID, userID, err, "Impossibile eliminare il cane.")
		return
	}
	_ = b.db.LogAction(ctx, userID, "dog_deleted", strconv.FormatInt(id, 10))
	b.reply(chatID, "Cane eliminato.")
	b.handleDogs(ctx, chatID, userID)
}

func (b *Bot) handleDogStep(ctx context.Context, msg *tgbotapi.Message, st *userState, text string) {
	switch st.Step {
	case stepDogName:
		st.DogForm.Name = text
		st.Step = stepDogBreed
		b.reply(msg.Chat.ID, "La razza (oppure \"salta\"):")
	case stepDogBreed:
		if !strings.EqualFold(text, "salta") {
			st.DogForm.Breed = text
		}
		st.Step = stepDogAge
		b.reply(msg.Chat.ID, "L'età in anni (oppure \"salta\"):")
	case stepDogAge:
		if !strings.EqualFold(text, "salta") {
			age, err := strconv.Atoi(text)
			if err != nil {
				b.reply(msg.Chat.ID, "Età non valida, inserisci un numero (oppure \"salta\"):")
				return
			}
			st.DogForm.Age = &age
		}
		b.finishDogFlow(ctx, msg, st)
	}
}

func (b *Bot) finishDogFlow(ctx context.Context, msg *tgbotapi.Message, st *userState) {
	form := st.DogForm
	editID := st.EditDogID
	b.state.reset(msg.From.ID)

	if err := model.ValidateDogInput(form.Name, form.Age); err != nil {
		b.reply(msg.Chat.ID, "Dati non validi: "+err.Error()+". Riprova con /adddog.")
		return
	}

	token := b.requireToken(ctx, msg.Chat.ID, msg.From.ID)
	if token == "" {
		return
	}

	var dog model.Dog
	var err error
	if editID != 0 {
		dog, err = b.api.UpdateDog(ctx, token, editID, form)
	} else {
		dog, err = b.api.AddDog(ctx, token, form)
	}
	if err != nil {
		b.handleAPIError(ctx, msg.Chat.ID, msg.From.ID, err, "Impossibile salvare il cane.")
		return
	}

	action := "dog_added"
	if editID != 0 {
		action = "dog_updated"
	}
	_ = b.db.LogAction(ctx, msg.From.ID, action, dog.Name)
	b.reply(msg.Chat.ID, "Fatto! "+dog.Label()+" è nel tuo profilo. 🐾")
}
