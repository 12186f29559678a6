package telegram

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"screening-bot/api/internal/form"
	"screening-bot/api/internal/normalize"
	"screening-bot/api/internal/popup"
	"screening-bot/api/internal/schema"
	"screening-bot/api/internal/store"
)

// loadingSubmitter вызывает onStart, когда форма прошла проверку и ушла в сеть.
type loadingSubmitter struct {
	popup.Submitter
	onStart func()
}

func (l loadingSubmitter) Resolve(ctx context.Context, v form.Validated) normalize.Presentation {
	l.onStart()
	return l.Submitter.Resolve(ctx, v)
}

func (r *Router) onSubmit(ctx context.Context, chatID int64, callbackID string) {
	s, ok := r.session(chatID)
	if !ok {
		r.ack(callbackID, "This form is no longer active.")
		return
	}
	r.inflight.Add(1)
	go func() {
		defer r.inflight.Done()
		r.submit(ctx, chatID, callbackID, s)
	}()
}

func (r *Router) submit(ctx context.Context, chatID int64, callbackID string, s *chatSession) {
	var loadingMsg int
	sub := loadingSubmitter{Submitter: r.Service, onStart: func() {
		r.ack(callbackID, "")
		r.refreshForm(chatID, s)
		loadingMsg, _ = r.sendHTML(chatID, "⏳ Sending…", nil)
	}}

	pres, err := s.machine.Submit(ctx, sub)
	switch {
	case errors.Is(err, popup.ErrBusy):
		r.ack(callbackID, "Already submitting…")
		return
	case err != nil:
		// ошибка проверки: сети не было, флаг входа не трогаем
		r.ack(callbackID, "")
	default:
		if loadingMsg != 0 {
			_, _ = r.Bot.Request(tgbotapi.NewDeleteMessage(chatID, loadingMsg))
		}
		r.afterResolve(ctx, chatID, s.kind, pres)
	}

	// форма вернётся после Close
	r.clearKeyboard(chatID, s.swapFormMsg(0))

	kb := makeCloseKeyboard()
	id, sendErr := r.sendHTML(chatID, popupView(pres), &kb)
	if sendErr != nil {
		return
	}
	r.clearKeyboard(chatID, s.swapPopupMsg(id))
}

// afterResolve — побочные эффекты ответа сервера: флаг входа и журнал результатов.
func (r *Router) afterResolve(ctx context.Context, chatID int64, kind schema.Kind, pres normalize.Presentation) {
	log := r.log().With("chat_id", chatID, "kind", string(kind))

	if kind == schema.Login {
		var err error
		if normalize.IsOutcome(pres) {
			err = r.Gate.MarkLoggedIn(ctx, chatID)
		} else {
			err = r.Gate.Clear(ctx, chatID)
		}
		if err != nil {
			log.Error("update session flag", "err", err)
		}
	}

	if !kind.IsPrediction() || r.History == nil {
		return
	}
	row := store.ResultRow{ChatID: chatID, Kind: string(kind)}
	switch x := pres.(type) {
	case normalize.Outcome:
		row.Type, row.Severity, row.Label, row.Detail = "outcome", x.Severity.String(), x.Label, x.Detail
	case normalize.Error:
		row.Type, row.Label = "error", x.Message
	}
	if err := r.History.Insert(ctx, row); err != nil {
		log.Warn("save result", "err", err)
	}
}
