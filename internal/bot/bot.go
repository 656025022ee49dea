package bot

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	tbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/j0lvera/cbtbot/internal/chat"
	"github.com/j0lvera/cbtbot/internal/responder"
	"github.com/rs/zerolog"
)

// callbackPrefix marks inline keyboard callbacks that carry a quick action.
const callbackPrefix = "qa:"

// messenger is the part of the Telegram client the handler needs.
type messenger interface {
	SendMessage(ctx context.Context, params *tbot.SendMessageParams) (*models.Message, error)
	SendChatAction(ctx context.Context, params *tbot.SendChatActionParams) (bool, error)
	AnswerCallbackQuery(ctx context.Context, params *tbot.AnswerCallbackQueryParams) (bool, error)
}

// Handler turns Telegram updates into chat service events.
type Handler struct {
	chat        *chat.Service
	typingDelay time.Duration
	keyboard    *models.InlineKeyboardMarkup
	log         zerolog.Logger
}

// NewHandler creates a Telegram update handler.
func NewHandler(svc *chat.Service, typingDelay time.Duration, log zerolog.Logger) *Handler {
	return &Handler{
		chat:        svc,
		typingDelay: typingDelay,
		keyboard:    Keyboard(),
		log:         log,
	}
}

// Keyboard builds the inline keyboard with one button per quick action.
func Keyboard() *models.InlineKeyboardMarkup {
	rows := make([][]models.InlineKeyboardButton, 0, len(responder.QuickActions))
	for _, qa := range responder.QuickActions {
		rows = append(rows, []models.InlineKeyboardButton{
			{Text: qa.Label, CallbackData: callbackPrefix + qa.Token},
		})
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// ParseCallback extracts the quick-action token from callback data.
func ParseCallback(data string) (string, bool) {
	token, ok := strings.CutPrefix(data, callbackPrefix)
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

// ParseCommand returns the bot command in text, without its leading slash or
// a trailing @botname. It reports false for plain messages.
func ParseCommand(text string) (string, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", false
	}
	cmd := strings.TrimPrefix(fields[0], "/")
	cmd, _, _ = strings.Cut(cmd, "@")
	return strings.ToLower(cmd), cmd != ""
}

func sessionKey(chatID int64) string {
	return "tg:" + strconv.FormatInt(chatID, 10)
}

func (h *Handler) handleUpdate(ctx context.Context, tg messenger, update *models.Update) {
	switch {
	case update.CallbackQuery != nil:
		h.handleCallback(ctx, tg, update.CallbackQuery)
	case update.Message != nil:
		h.handleMessage(ctx, tg, update.Message)
	}
}

func (h *Handler) handleMessage(ctx context.Context, tg messenger, msg *models.Message) {
	chatID := msg.Chat.ID

	// Guard against nil user
	if msg.From == nil {
		h.log.Warn().Int64("chat_id", chatID).Msg("received message without user info")
		return
	}
	if msg.Text == "" {
		h.log.Debug().Int64("chat_id", chatID).Msg("ignoring message without text")
		return
	}

	key := sessionKey(chatID)

	if cmd, ok := ParseCommand(msg.Text); ok {
		switch cmd {
		case "start":
			h.send(ctx, tg, chatID, h.chat.Welcome(ctx, key).Text)
			return
		case "clear", "reset":
			snap := h.chat.Reset(ctx, key)
			h.send(ctx, tg, chatID, snap[0].Text)
			h.log.Info().Int64("chat_id", chatID).Int64("user_id", msg.From.ID).Msg("conversation reset by user")
			return
		}
	}

	if _, err := tg.SendChatAction(ctx, &tbot.SendChatActionParams{
		ChatID: chatID,
		Action: models.ChatActionTyping,
	}); err != nil {
		h.log.Warn().Err(err).Int64("chat_id", chatID).Msg("unable to send typing action")
	}
	if !h.wait(ctx) {
		return
	}

	res := h.chat.Send(ctx, key, msg.Text)
	if !res.Processed {
		return
	}
	h.send(ctx, tg, chatID, res.Turn.Bot.Text)
}

func (h *Handler) handleCallback(ctx context.Context, tg messenger, cq *models.CallbackQuery) {
	answer := &tbot.AnswerCallbackQueryParams{CallbackQueryID: cq.ID}
	defer func() {
		if _, err := tg.AnswerCallbackQuery(ctx, answer); err != nil {
			h.log.Warn().Err(err).Str("callback_id", cq.ID).Msg("unable to answer callback query")
		}
	}()

	chatID, ok := callbackChatID(cq)
	if !ok {
		h.log.Warn().Str("callback_id", cq.ID).Msg("callback query without chat")
		return
	}

	token, ok := ParseCallback(cq.Data)
	if !ok {
		h.log.Debug().Str("data", cq.Data).Msg("ignoring unrelated callback query")
		return
	}

	res, err := h.chat.QuickAction(ctx, sessionKey(chatID), token)
	if errors.Is(err, chat.ErrUnknownAction) {
		h.log.Warn().Int64("chat_id", chatID).Str("token", token).Msg("unknown quick action")
		answer.Text = "This option is no longer available."
		return
	}
	if res.Processed {
		h.send(ctx, tg, chatID, res.Turn.Bot.Text)
	}
}

func callbackChatID(cq *models.CallbackQuery) (int64, bool) {
	switch {
	case cq.Message.Message != nil:
		return cq.Message.Message.Chat.ID, true
	case cq.Message.InaccessibleMessage != nil:
		return cq.Message.InaccessibleMessage.Chat.ID, true
	case cq.From.ID != 0:
		// Private chats share the user's id
		return cq.From.ID, true
	}
	return 0, false
}

// wait pauses for the typing delay. It reports false if ctx ended first.
func (h *Handler) wait(ctx context.Context) bool {
	if h.typingDelay <= 0 {
		return true
	}
	t := time.NewTimer(h.typingDelay)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func (h *Handler) send(ctx context.Context, tg messenger, chatID int64, text string) {
	if _, err := tg.SendMessage(ctx, &tbot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: h.keyboard,
	}); err != nil {
		h.log.Error().Err(err).Int64("chat_id", chatID).Msg("unable to send message")
	}
}
