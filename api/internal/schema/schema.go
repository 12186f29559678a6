package schema

import (
	"slices"
	"strings"
)

// Kind — вид формы: три предсказания и две identity-операции.
type Kind string

const (
	Malaria  Kind = "malaria"
	Diabetes Kind = "diabetes"
	Health   Kind = "health"
	Login    Kind = "login"
	Signup   Kind = "signup"
)

func (k Kind) IsPrediction() bool {
	return k == Malaria || k == Diabetes || k == Health
}

func (k Kind) IsIdentity() bool {
	return k == Login || k == Signup
}

// ParseKind принимает имя вида без учёта регистра ("Malaria", "health", ...).
func ParseKind(s string) (Kind, bool) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := registry[k]; !ok {
		return "", false
	}
	return k, true
}

// Predictions — виды предсказаний в порядке показа в меню.
func Predictions() []Kind {
	return []Kind{Malaria, Diabetes, Health}
}

type FieldKind int

const (
	Number FieldKind = iota
	Boolean
	Enum
	Text
)

func (fk FieldKind) String() string {
	switch fk {
	case Number:
		return "number"
	case Boolean:
		return "boolean"
	case Enum:
		return "enum"
	case Text:
		return "text"
	default:
		return "unknown"
	}
}

type Field struct {
	Name     string
	Kind     FieldKind
	Options  []string // только для Enum
	Required bool
	Secret   bool // пароль: не показываем и не логируем
	Email    bool // проверяется по форме адреса
}

// Label — подпись для UI: "Body_Temperature" -> "Body Temperature", "heart_rate" -> "Heart rate".
func (f Field) Label() string {
	s := strings.ReplaceAll(f.Name, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (f Field) HasOption(v string) bool {
	return slices.Contains(f.Options, v)
}

type Schema struct {
	Kind   Kind
	Title  string
	Fields []Field
}

func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func (s Schema) Names() []string {
	out := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		out = append(out, f.Name)
	}
	return out
}

// Lookup возвращает копию схемы: registry не должен меняться после старта.
func Lookup(k Kind) (Schema, bool) {
	s, ok := registry[k]
	if !ok {
		return Schema{}, false
	}
	s.Fields = slices.Clone(s.Fields)
	for i := range s.Fields {
		s.Fields[i].Options = slices.Clone(s.Fields[i].Options)
	}
	return s, true
}

func MustLookup(k Kind) Schema {
	s, ok := Lookup(k)
	if !ok {
		panic("schema: unknown kind " + string(k))
	}
	return s
}
