package telegram

import (
	"sync"

	"screening-bot/api/internal/form"
	"screening-bot/api/internal/popup"
	"screening-bot/api/internal/schema"
)

// chatSession — активная форма чата: значения и попап живут в machine,
// остальное — состояние диалога.
type chatSession struct {
	kind    schema.Kind
	machine *popup.Machine

	mu       sync.Mutex
	awaiting string // поле, для которого ждём текст
	formMsg  int    // сообщение с клавиатурой формы
	popupMsg int
}

func newChatSession(kind schema.Kind) *chatSession {
	return &chatSession{kind: kind, machine: popup.New(form.New(kind))}
}

func (s *chatSession) await(name string) {
	s.mu.Lock()
	s.awaiting = name
	s.mu.Unlock()
}

func (s *chatSession) takeAwaiting() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.awaiting
	s.awaiting = ""
	return n
}

func (s *chatSession) swapFormMsg(id int) (old int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, s.formMsg = s.formMsg, id
	return old
}

func (s *chatSession) formMsgID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.formMsg
}

func (s *chatSession) swapPopupMsg(id int) (old int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, s.popupMsg = s.popupMsg, id
	return old
}

// хелперы
func (r *Router) session(chatID int64) (*chatSession, bool) {
	v, ok := r.sessions.Load(chatID)
	if !ok {
		return nil, false
	}
	return v.(*chatSession), true
}

func (r *Router) openSession(chatID int64, kind schema.Kind) *chatSession {
	s := newChatSession(kind)
	r.sessions.Store(chatID, s)
	return s
}

func (r *Router) dropSession(chatID int64, s *chatSession) {
	r.sessions.CompareAndDelete(chatID, s)
}
