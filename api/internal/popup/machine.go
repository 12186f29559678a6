package popup

import (
	"context"
	"errors"
	"sync"

	"screening-bot/api/internal/form"
	"screening-bot/api/internal/normalize"
)

// Phase — состояние показа результата для одной формы.
type Phase int

const (
	Idle Phase = iota
	Submitting
	Displaying
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Displaying:
		return "displaying"
	default:
		return "unknown"
	}
}

var (
	ErrBusy          = errors.New("popup: submission already in progress")
	ErrNotEditable   = errors.New("popup: form is not editable right now")
	ErrNotDisplaying = errors.New("popup: nothing to close")
)

// Submitter — проверка и отправка формы. Resolve вызывается только для прошедшей проверку формы.
type Submitter interface {
	Validate(st form.State) (form.Validated, error)
	Resolve(ctx context.Context, v form.Validated) normalize.Presentation
}

type PopupState struct {
	Visible bool
	Content normalize.Presentation // nil, если попап скрыт
}

type Snapshot struct {
	Phase Phase
	Popup PopupState
	Form  form.State
}

// TriggerEnabled — кнопка отправки доступна только в Idle.
func (s Snapshot) TriggerEnabled() bool { return s.Phase == Idle }

// Loading — показывать индикатор ожидания.
func (s Snapshot) Loading() bool { return s.Phase == Submitting }

// Machine владеет формой и попапом одной формы: Idle -> Submitting -> Displaying -> Idle.
type Machine struct {
	mu      sync.Mutex
	phase   Phase
	content normalize.Presentation
	form    form.State
}

func New(st form.State) *Machine {
	return &Machine{form: st}
}

func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		Phase: m.phase,
		Popup: PopupState{Visible: m.phase == Displaying, Content: m.content},
		Form:  m.form,
	}
}

// Edit заменяет форму целиком. Разрешено только в Idle.
func (m *Machine) Edit(fn func(form.State) form.State) (form.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase != Idle {
		return m.form, ErrNotEditable
	}
	m.form = fn(m.form)
	return m.form, nil
}

// Submit проверяет форму и, если она валидна, отправляет её через s.
// Ошибка проверки сразу показывается в попапе без сетевого вызова и возвращается вторым значением.
// Повторный вызов вне Idle отклоняется с ErrBusy.
func (m *Machine) Submit(ctx context.Context, s Submitter) (normalize.Presentation, error) {
	m.mu.Lock()
	if m.phase != Idle {
		m.mu.Unlock()
		return nil, ErrBusy
	}
	v, err := s.Validate(m.form)
	if err != nil {
		pres := normalize.Error{Message: err.Error()}
		m.phase, m.content = Displaying, pres
		m.mu.Unlock()
		return pres, err
	}
	m.phase = Submitting
	m.mu.Unlock()

	pres := s.Resolve(ctx, v)
	if pres == nil {
		pres = normalize.Error{Message: normalize.MsgTransport}
	}

	m.mu.Lock()
	m.phase, m.content = Displaying, pres
	m.mu.Unlock()
	return pres, nil
}

// Close — подтверждение пользователя. Форма очищается только после успешного результата;
// после ошибок значения остаются, чтобы их можно было поправить.
func (m *Machine) Close() (reset bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase != Displaying {
		return false, ErrNotDisplaying
	}
	if normalize.IsOutcome(m.content) {
		m.form = m.form.Reset()
		reset = true
	}
	m.phase, m.content = Idle, nil
	return reset, nil
}
