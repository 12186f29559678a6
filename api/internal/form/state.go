package form

import (
	"fmt"
	"maps"
	"strconv"
	"strings"

	"screening-bot/api/internal/schema"
)

// Value — сырое значение поля: строка ввода или флажок.
type Value struct {
	text   string
	flag   bool
	isFlag bool
}

func Text(s string) Value { return Value{text: s} }
func Flag(b bool) Value   { return Value{flag: b, isFlag: true} }

func (v Value) IsFlag() bool { return v.isFlag }

// Bool возвращает значение флажка; ok=false для текстовых значений.
func (v Value) Bool() (b, ok bool) { return v.flag, v.isFlag }

func (v Value) String() string {
	if v.isFlag {
		return strconv.FormatBool(v.flag)
	}
	return v.text
}

// State — живые значения одной формы. Неизменяемый снаружи: каждое редактирование
// возвращает новый State, старые копии остаются как были.
type State struct {
	kind   schema.Kind
	values map[string]Value
}

// New — пустая форма вида kind: "" для полей ввода и false для флажков.
func New(kind schema.Kind) State {
	s, ok := schema.Lookup(kind)
	if !ok {
		return State{kind: kind, values: map[string]Value{}}
	}
	values := make(map[string]Value, len(s.Fields))
	for _, f := range s.Fields {
		if f.Kind == schema.Boolean {
			values[f.Name] = Flag(false)
		} else {
			values[f.Name] = Text("")
		}
	}
	return State{kind: kind, values: values}
}

func (s State) Kind() schema.Kind { return s.kind }

func (s State) Get(name string) (Value, bool) {
	v, ok := s.values[name]
	return v, ok
}

// With возвращает копию формы с новым значением поля.
func (s State) With(name string, v Value) State {
	values := maps.Clone(s.values)
	if values == nil {
		values = map[string]Value{}
	}
	values[name] = v
	return State{kind: s.kind, values: values}
}

// Reset — форма в исходном пустом виде.
func (s State) Reset() State { return New(s.kind) }

func (s State) Equal(o State) bool {
	if s.kind != o.kind || len(s.values) != len(o.values) {
		return false
	}
	for k, v := range s.values {
		if ov, ok := o.values[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// IsEmpty — форма совпадает с исходной пустой.
func (s State) IsEmpty() bool { return s.Equal(New(s.kind)) }

// FromRaw собирает форму из произвольного JSON-объекта (HTTP-прокси).
// Строки и числа становятся текстом, bool — флажком; неизвестные поля игнорируются.
func FromRaw(kind schema.Kind, raw map[string]any) (State, error) {
	sc, ok := schema.Lookup(kind)
	if !ok {
		return State{}, fmt.Errorf("unknown form kind %q", kind)
	}
	st := New(kind)
	for _, f := range sc.Fields {
		rv, ok := raw[f.Name]
		if !ok || rv == nil {
			continue
		}
		switch x := rv.(type) {
		case bool:
			if f.Kind == schema.Boolean {
				st = st.With(f.Name, Flag(x))
			} else {
				st = st.With(f.Name, Text(strconv.FormatBool(x)))
			}
		case string:
			if f.Kind == schema.Boolean {
				b, err := strconv.ParseBool(strings.TrimSpace(x))
				if err != nil {
					return State{}, fmt.Errorf("field %s: expected boolean, got %q", f.Name, x)
				}
				st = st.With(f.Name, Flag(b))
			} else {
				st = st.With(f.Name, Text(x))
			}
		case float64:
			if f.Kind == schema.Boolean {
				st = st.With(f.Name, Flag(x != 0))
			} else {
				st = st.With(f.Name, Text(strconv.FormatFloat(x, 'f', -1, 64)))
			}
		default:
			return State{}, fmt.Errorf("field %s: unsupported value type %T", f.Name, rv)
		}
	}
	return st, nil
}
