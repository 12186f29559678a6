package form

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"screening-bot/api/internal/schema"
)

const (
	MsgMissingFields       = "Please fill all required fields before submitting!"
	MsgMissingSignupFields = "Please fill out all fields before submitting!"
	MsgInvalidEmail        = "Please enter a valid email address!"
)

// ErrValidation объединяет все ошибки клиентской проверки (errors.Is).
var ErrValidation = errors.New("form validation failed")

var reEmail = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// MissingFieldsError — одно общее сообщение, без перечисления полей.
type MissingFieldsError struct {
	Kind schema.Kind
}

func (e *MissingFieldsError) Error() string {
	if e.Kind == schema.Signup {
		return MsgMissingSignupFields
	}
	return MsgMissingFields
}

func (e *MissingFieldsError) Is(target error) bool { return target == ErrValidation }

type InvalidEmailError struct{}

func (e *InvalidEmailError) Error() string        { return MsgInvalidEmail }
func (e *InvalidEmailError) Is(target error) bool { return target == ErrValidation }

// Validated — форма, прошедшая проверку. Создаётся только через Validate.
type Validated struct {
	kind   schema.Kind
	values map[string]Value
}

func (v Validated) Kind() schema.Kind { return v.kind }

// Text — строковое значение поля (для флажков "true"/"false").
func (v Validated) Text(name string) string { return v.values[name].String() }

func (v Validated) Flag(name string) bool {
	b, _ := v.values[name].Bool()
	return b
}

func IsEmail(s string) bool { return reEmail.MatchString(s) }

// Validate проверяет наличие всех обязательных полей схемы kind.
// Формат и диапазоны не проверяются, кроме формы email у identity-форм.
func Validate(kind schema.Kind, st State) (Validated, error) {
	sc, ok := schema.Lookup(kind)
	if !ok || st.kind != kind {
		return Validated{}, &MissingFieldsError{Kind: kind}
	}

	// вход сначала проверяет адрес: пустой email — это неверный email
	if kind == schema.Login {
		if err := checkEmail(sc, st); err != nil {
			return Validated{}, err
		}
	}

	values := make(map[string]Value, len(sc.Fields))
	for _, f := range sc.Fields {
		v, ok := st.Get(f.Name)
		if f.Required && (!ok || !present(f, v)) {
			return Validated{}, &MissingFieldsError{Kind: kind}
		}
		values[f.Name] = v
	}

	if err := checkEmail(sc, st); err != nil {
		return Validated{}, err
	}
	return Validated{kind: kind, values: values}, nil
}

func checkEmail(sc schema.Schema, st State) error {
	for _, f := range sc.Fields {
		if !f.Email {
			continue
		}
		if v, _ := st.Get(f.Name); !IsEmail(strings.TrimSpace(v.String())) {
			return &InvalidEmailError{}
		}
	}
	return nil
}

func present(f schema.Field, v Value) bool {
	switch f.Kind {
	case schema.Boolean:
		// false — тоже заполненное значение
		return v.IsFlag()
	case schema.Number:
		if v.IsFlag() {
			return false
		}
		_, ok := ParseNumber(v.String())
		return ok
	case schema.Enum:
		return !v.IsFlag() && f.HasOption(v.String())
	default:
		return !v.IsFlag() && strings.TrimSpace(v.String()) != ""
	}
}

// ParseNumber разбирает десятичное число; NaN и бесконечности не принимаются.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
