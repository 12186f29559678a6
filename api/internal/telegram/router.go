package telegram

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"screening-bot/api/internal/form"
	"screening-bot/api/internal/popup"
	"screening-bot/api/internal/schema"
	"screening-bot/api/internal/session"
	"screening-bot/api/internal/store"
)

const (
	startText = "Health screening bot.\n\n" +
		"/login — sign in\n" +
		"/signup — create an account\n" +
		"/report — open a screening form (Malaria, Diabetes, Health)\n" +
		"/malaria, /diabetes, /health — open a form directly\n" +
		"/history — your recent results\n" +
		"/cancel — discard the current form\n" +
		"/logout — sign out"
	needLoginText  = "Please /login first."
	storeDownText  = "Session storage is unavailable, try again later."
	waitResultText = "Wait for the current submission to finish."
	noFormText     = "No active form. Use /report, /login or /signup."
)

// Sender — часть *tgbotapi.BotAPI, которая нужна роутеру.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// History — журнал показанных результатов (store.ResultRepo).
type History interface {
	Insert(ctx context.Context, row store.ResultRow) error
	Recent(ctx context.Context, chatID int64, limit int) ([]store.ResultRow, error)
}

type Router struct {
	Bot     Sender
	Service popup.Submitter
	Gate    *session.Gate
	History History // может быть nil
	Log     *slog.Logger
	// Ctx — базовый контекст обработчиков; его отмена прерывает отправки форм.
	Ctx context.Context

	sessions sync.Map // chatID -> *chatSession
	inflight sync.WaitGroup
}

func (r *Router) log() *slog.Logger {
	if r.Log == nil {
		return slog.Default()
	}
	return r.Log
}

func (r *Router) ctx() context.Context {
	if r.Ctx == nil {
		return context.Background()
	}
	return r.Ctx
}

// Wait ждёт завершения фоновых отправок форм.
func (r *Router) Wait() { r.inflight.Wait() }

func (r *Router) HandleUpdate(upd tgbotapi.Update) {
	// callback-кнопки
	if upd.CallbackQuery != nil {
		r.handleCallback(*upd.CallbackQuery)
		return
	}
	if upd.Message == nil {
		return
	}
	if upd.Message.IsCommand() {
		r.HandleCommand(upd.Message)
		return
	}
	if upd.Message.Text != "" {
		r.handleText(upd.Message)
	}
}

func (r *Router) HandleCommand(m *tgbotapi.Message) {
	ctx := r.ctx()
	cid := m.Chat.ID
	switch m.Command() {
	case "start", "help":
		r.send(cid, startText)
	case "login":
		r.openForm(cid, schema.Login)
	case "signup", "register":
		r.openForm(cid, schema.Signup)
	case "logout":
		if err := r.Gate.Clear(ctx, cid); err != nil {
			r.log().Error("clear session flag", "chat_id", cid, "err", err)
			r.send(cid, storeDownText)
			return
		}
		if s, ok := r.session(cid); ok && !s.machine.Snapshot().Loading() {
			r.discard(cid, s)
		}
		r.send(cid, "You have been logged out.")
	case "report":
		if !r.requireLogin(ctx, cid) {
			return
		}
		msg := tgbotapi.NewMessage(cid, "Choose a screening form:")
		msg.ReplyMarkup = makePickerKeyboard()
		_, _ = r.Bot.Send(msg)
	case "malaria", "diabetes", "health":
		kind, _ := schema.ParseKind(m.Command())
		if !r.requireLogin(ctx, cid) {
			return
		}
		r.openForm(cid, kind)
	case "history":
		if !r.requireLogin(ctx, cid) {
			return
		}
		r.showHistory(ctx, cid)
	case "cancel":
		s, ok := r.session(cid)
		if !ok {
			r.send(cid, noFormText)
			return
		}
		if s.machine.Snapshot().Loading() {
			r.send(cid, waitResultText)
			return
		}
		r.discard(cid, s)
		r.send(cid, "Form discarded.")
	default:
		r.send(cid, "Unknown command. See /start")
	}
}

// requireLogin — аналог защищённого маршрута: формы отчётов только после входа.
func (r *Router) requireLogin(ctx context.Context, chatID int64) bool {
	in, err := r.Gate.LoggedIn(ctx, chatID)
	if err != nil {
		r.log().Error("read session flag", "chat_id", chatID, "err", err)
		r.send(chatID, storeDownText)
		return false
	}
	if !in {
		r.send(chatID, needLoginText)
		return false
	}
	return true
}

func (r *Router) openForm(chatID int64, kind schema.Kind) {
	if s, ok := r.session(chatID); ok {
		if s.machine.Snapshot().Loading() {
			r.send(chatID, waitResultText)
			return
		}
		r.clearKeyboard(chatID, s.swapFormMsg(0))
		r.clearKeyboard(chatID, s.swapPopupMsg(0))
	}
	s := r.openSession(chatID, kind)
	r.advance(chatID, s, "")
}

func (r *Router) discard(chatID int64, s *chatSession) {
	r.clearKeyboard(chatID, s.swapFormMsg(0))
	r.clearKeyboard(chatID, s.swapPopupMsg(0))
	r.dropSession(chatID, s)
}

// advance спрашивает следующее пустое поле после after; если таких нет — показывает форму.
func (r *Router) advance(chatID int64, s *chatSession, after string) {
	sc := schema.MustLookup(s.kind)
	st := s.machine.Snapshot().Form
	passed := after == ""
	for _, f := range sc.Fields {
		if !passed {
			passed = f.Name == after
			continue
		}
		if f.Kind == schema.Boolean {
			continue
		}
		if v, _ := st.Get(f.Name); strings.TrimSpace(v.String()) == "" {
			r.promptField(chatID, s, f)
			return
		}
	}
	r.showForm(chatID, s)
}

func (r *Router) promptField(chatID int64, s *chatSession, f schema.Field) {
	s.await(f.Name)
	var msg tgbotapi.MessageConfig
	switch {
	case f.Kind == schema.Enum:
		msg = tgbotapi.NewMessage(chatID, "Choose "+f.Label()+":")
		msg.ReplyMarkup = optionsKeyboard(f)
	case f.Secret:
		msg = tgbotapi.NewMessage(chatID, "Enter "+f.Label()+" (the message will be deleted):")
	case f.Kind == schema.Number:
		msg = tgbotapi.NewMessage(chatID, "Enter "+f.Label()+" (number):")
	default:
		msg = tgbotapi.NewMessage(chatID, "Enter "+f.Label()+":")
	}
	_, _ = r.Bot.Send(msg)
}

func (r *Router) handleText(m *tgbotapi.Message) {
	cid := m.Chat.ID
	s, ok := r.session(cid)
	if !ok {
		r.send(cid, noFormText)
		return
	}
	name := s.takeAwaiting()
	if name == "" {
		r.send(cid, "Tap a field on the form to change it.")
		return
	}
	f, ok := schema.MustLookup(s.kind).Field(name)
	if !ok {
		return
	}
	val := m.Text
	if f.Secret {
		// пароль не остаётся в переписке
		_, _ = r.Bot.Request(tgbotapi.NewDeleteMessage(cid, m.MessageID))
	}
	switch f.Kind {
	case schema.Number:
		if _, ok := form.ParseNumber(val); !ok {
			s.await(name)
			r.send(cid, "Please enter a number for "+f.Label()+".")
			return
		}
	case schema.Enum:
		val = strings.TrimSpace(val)
		if !f.HasOption(val) {
			s.await(name)
			r.send(cid, "Choose one of: "+strings.Join(f.Options, ", "))
			return
		}
	}
	r.setField(cid, s, name, val)
}

func (r *Router) setField(chatID int64, s *chatSession, name, val string) {
	if _, err := s.machine.Edit(func(st form.State) form.State { return st.With(name, form.Text(val)) }); err != nil {
		r.send(chatID, waitResultText)
		return
	}
	r.advance(chatID, s, name)
}

func (r *Router) showHistory(ctx context.Context, chatID int64) {
	if r.History == nil {
		r.send(chatID, "History is not available.")
		return
	}
	rows, err := r.History.Recent(ctx, chatID, 5)
	if err != nil {
		r.log().Error("load history", "chat_id", chatID, "err", err)
		r.send(chatID, storeDownText)
		return
	}
	r.sendHTML(chatID, historyView(rows), nil)
}

func (r *Router) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	_, _ = r.Bot.Send(msg)
}

func (r *Router) sendHTML(chatID int64, text string, kb *tgbotapi.InlineKeyboardMarkup) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if kb != nil {
		msg.ReplyMarkup = *kb
	}
	sent, err := r.Bot.Send(msg)
	if err != nil {
		r.log().Warn("send message", "chat_id", chatID, "err", err)
		return 0, err
	}
	return sent.MessageID, nil
}

// clearKeyboard убирает inline-клавиатуру со старого сообщения.
func (r *Router) clearKeyboard(chatID int64, msgID int) {
	if msgID == 0 {
		return
	}
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, msgID, tgbotapi.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{},
	})
	_, _ = r.Bot.Send(edit)
}

// showForm отправляет форму новым сообщением; у предыдущего клавиатура снимается.
func (r *Router) showForm(chatID int64, s *chatSession) {
	text, kb := formView(s.kind, s.machine.Snapshot())
	id, err := r.sendHTML(chatID, text, &kb)
	if err != nil {
		return
	}
	r.clearKeyboard(chatID, s.swapFormMsg(id))
}

// refreshForm перерисовывает форму на месте.
func (r *Router) refreshForm(chatID int64, s *chatSession) {
	id := s.formMsgID()
	if id == 0 {
		r.showForm(chatID, s)
		return
	}
	text, kb := formView(s.kind, s.machine.Snapshot())
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, id, text, kb)
	edit.ParseMode = tgbotapi.ModeHTML
	_, _ = r.Bot.Send(edit)
}
