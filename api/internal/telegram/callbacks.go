package telegram

import (
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"screening-bot/api/internal/form"
	"screening-bot/api/internal/popup"
	"screening-bot/api/internal/schema"
)

func (r *Router) handleCallback(cb tgbotapi.CallbackQuery) {
	if cb.Message == nil || cb.Message.Chat == nil {
		r.ack(cb.ID, "")
		return
	}
	cid := cb.Message.Chat.ID
	ctx := r.ctx()
	data := cb.Data

	switch {
	case data == cbSubmit:
		r.onSubmit(ctx, cid, cb.ID)
	case data == cbClose:
		r.onClose(cid, cb.ID, cb.Message.MessageID)
	case data == cbCancel:
		r.onCancel(cid, cb.ID)
	case data == cbNoop:
		r.ack(cb.ID, "Sending…")
	case strings.HasPrefix(data, pfxForm):
		r.ack(cb.ID, "")
		kind, ok := schema.ParseKind(strings.TrimPrefix(data, pfxForm))
		if !ok || !kind.IsPrediction() {
			return
		}
		if !r.requireLogin(ctx, cid) {
			return
		}
		r.openForm(cid, kind)
	case strings.HasPrefix(data, pfxField):
		r.onField(cid, cb.ID, strings.TrimPrefix(data, pfxField))
	case strings.HasPrefix(data, pfxToggle):
		r.onToggle(cid, cb.ID, strings.TrimPrefix(data, pfxToggle))
	case strings.HasPrefix(data, pfxOpt):
		r.onOption(cid, cb.ID, cb.Message.MessageID, strings.TrimPrefix(data, pfxOpt))
	default:
		r.ack(cb.ID, "")
	}
}

func (r *Router) ack(callbackID, text string) {
	_, _ = r.Bot.Request(tgbotapi.NewCallback(callbackID, text))
}

// activeSession — сессия, форму которой сейчас можно редактировать.
func (r *Router) activeSession(chatID int64, callbackID string) (*chatSession, bool) {
	s, ok := r.session(chatID)
	if !ok {
		r.ack(callbackID, "This form is no longer active.")
		return nil, false
	}
	if !s.machine.Snapshot().TriggerEnabled() {
		r.ack(callbackID, "Close the result first.")
		return nil, false
	}
	return s, true
}

func (r *Router) onField(chatID int64, callbackID, name string) {
	s, ok := r.activeSession(chatID, callbackID)
	if !ok {
		return
	}
	f, ok := schema.MustLookup(s.kind).Field(name)
	if !ok || f.Kind == schema.Boolean {
		r.ack(callbackID, "")
		return
	}
	r.ack(callbackID, "")
	r.promptField(chatID, s, f)
}

func (r *Router) onToggle(chatID int64, callbackID, name string) {
	s, ok := r.activeSession(chatID, callbackID)
	if !ok {
		return
	}
	f, ok := schema.MustLookup(s.kind).Field(name)
	if !ok || f.Kind != schema.Boolean {
		r.ack(callbackID, "")
		return
	}
	_, err := s.machine.Edit(func(st form.State) form.State {
		cur, _ := st.Get(name)
		b, _ := cur.Bool()
		return st.With(name, form.Flag(!b))
	})
	if err != nil {
		r.ack(callbackID, waitResultText)
		return
	}
	r.ack(callbackID, "")
	r.refreshForm(chatID, s)
}

// onOption — data вида "<field>:<value>".
func (r *Router) onOption(chatID int64, callbackID string, msgID int, data string) {
	name, val, found := strings.Cut(data, ":")
	if !found {
		r.ack(callbackID, "")
		return
	}
	s, ok := r.activeSession(chatID, callbackID)
	if !ok {
		return
	}
	f, ok := schema.MustLookup(s.kind).Field(name)
	if !ok || f.Kind != schema.Enum || !f.HasOption(val) {
		r.ack(callbackID, "")
		return
	}
	r.ack(callbackID, "")
	s.takeAwaiting()
	r.clearKeyboard(chatID, msgID)
	r.setField(chatID, s, name, val)
}

func (r *Router) onCancel(chatID int64, callbackID string) {
	s, ok := r.session(chatID)
	if !ok {
		r.ack(callbackID, "")
		return
	}
	if s.machine.Snapshot().Loading() {
		r.ack(callbackID, waitResultText)
		return
	}
	r.ack(callbackID, "Form discarded.")
	r.discard(chatID, s)
	r.send(chatID, "Form discarded.")
}

func (r *Router) onClose(chatID int64, callbackID string, msgID int) {
	s, ok := r.session(chatID)
	if !ok {
		r.ack(callbackID, "")
		r.clearKeyboard(chatID, msgID)
		return
	}
	reset, err := s.machine.Close()
	if errors.Is(err, popup.ErrNotDisplaying) {
		r.ack(callbackID, "")
		r.clearKeyboard(chatID, msgID)
		return
	}
	r.ack(callbackID, "")
	r.clearKeyboard(chatID, s.swapPopupMsg(0))

	switch {
	case reset && s.kind == schema.Login:
		r.discard(chatID, s)
		r.send(chatID, "You are logged in. Use /report to open a screening form.")
	case reset && s.kind == schema.Signup:
		r.discard(chatID, s)
		r.send(chatID, "Account created. Use /login to sign in.")
	default:
		// после успешного отчёта — чистая форма для следующего, после ошибки — прежние значения
		r.showForm(chatID, s)
	}
}
