package normalize

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"screening-bot/api/internal/schema"
)

const (
	MsgServerError  = "Server Error!"
	MsgTransport    = "Something went wrong!"
	MsgLoginFailed  = "Invalid email or password!"
	MsgSignupFailed = "Registration failed!"
	MsgEmailTaken   = "This email is already registered!"
	MsgLoginOK      = "Login successful!"
	MsgSignupOK     = "Account created successfully!"

	NotAvailable = "N/A"
)

// ErrorShape — форма тела ошибки. Бэкенд отвечает по-разному на разных
// эндпоинтах, поэтому тело сводится к одному из вариантов ниже в порядке приоритета.
type ErrorShape interface {
	message() string
}

// DetailList — {"detail":[{"msg":"..."}, ...]}, берётся только первый элемент.
type DetailList struct{ Msg string }

// DetailString — {"detail":"..."}.
type DetailString struct{ Text string }

// MessageField — {"message":"..."}.
type MessageField struct{ Text string }

// ErrorField — {"error":"..."}.
type ErrorField struct{ Text string }

// Unrecognized — ни одно из известных полей не найдено.
type Unrecognized struct{}

func (s DetailList) message() string   { return s.Msg }
func (s DetailString) message() string { return s.Text }
func (s MessageField) message() string { return s.Text }
func (s ErrorField) message() string   { return s.Text }
func (Unrecognized) message() string   { return "" }

// ClassifyError выбирает форму тела ошибки; первое совпадение выигрывает.
func ClassifyError(body map[string]any) ErrorShape {
	if list, ok := body["detail"].([]any); ok && len(list) > 0 {
		var msg string
		if first, ok := list[0].(map[string]any); ok {
			msg = scalar(first["msg"])
		}
		return DetailList{Msg: msg}
	}
	if s, ok := body["detail"].(string); ok && s != "" {
		return DetailString{Text: s}
	}
	if s := scalar(body["message"]); s != "" {
		return MessageField{Text: s}
	}
	if s := scalar(body["error"]); s != "" {
		return ErrorField{Text: s}
	}
	return Unrecognized{}
}

// Normalize сводит ответ эндпоинта (или ошибку транспорта) к Outcome либо Error.
// raw — тело ответа как пришло; body — оно же, разобранное как объект.
func Normalize(kind schema.Kind, status int, body map[string]any, raw []byte, transportErr error) Presentation {
	if transportErr != nil {
		return Error{Message: MsgTransport}
	}
	if status < 200 || status >= 300 {
		return backendError(kind, body, raw)
	}
	return success(kind, body)
}

func backendError(kind schema.Kind, body map[string]any, raw []byte) Error {
	msg := ClassifyError(body).message()
	if msg == "" {
		msg = fallback(kind)
	}
	if kind == schema.Signup && mentionsEmail(msg, body, raw) {
		return Error{Message: MsgEmailTaken}
	}
	return Error{Message: msg}
}

func fallback(kind schema.Kind) string {
	switch kind {
	case schema.Login:
		return MsgLoginFailed
	case schema.Signup:
		return MsgSignupFailed
	default:
		return MsgServerError
	}
}

// mentionsEmail ищет "email" в тексте ошибки и во всём теле ответа, даже если оно не объект.
func mentionsEmail(msg string, body map[string]any, raw []byte) bool {
	if strings.Contains(strings.ToLower(msg), "email") {
		return true
	}
	if len(raw) > 0 {
		return bytes.Contains(bytes.ToLower(raw), []byte("email"))
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(string(raw)), "email")
}

func success(kind schema.Kind, body map[string]any) Presentation {
	switch kind {
	case schema.Malaria:
		sev, word := binary(body["Result"])
		return Outcome{
			Severity: sev,
			Label:    "Malaria Result: " + word,
			Detail:   "Confidence:" + orNA(body["confidence"]),
		}
	case schema.Diabetes:
		sev, word := binary(body["Outcome"])
		return Outcome{Severity: sev, Label: "Diabetes Result: " + word}
	case schema.Health:
		// у health нет бинарного исхода: результат всегда подсвечивается как тревожный
		return Outcome{Severity: Positive, Label: "Predicted Disease: " + orNA(body["predicted_disease"])}
	case schema.Login:
		return Outcome{Severity: Informational, Label: MsgLoginOK}
	case schema.Signup:
		return Outcome{Severity: Informational, Label: MsgSignupOK}
	default:
		return Outcome{Severity: Informational, Label: NotAvailable}
	}
}

// binary: только числовая 1 — Positive. Строка "1", true и отсутствие поля — Negative.
func binary(v any) (Severity, string) {
	if n, ok := number(v); ok && n == 1 {
		return Positive, "Positive"
	}
	return Negative, "Negative"
}

func number(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// orNA: пустые, нулевые и отсутствующие значения показываются как "N/A".
func orNA(v any) string {
	switch x := v.(type) {
	case float64:
		if x == 0 {
			return NotAvailable
		}
	case bool:
		if !x {
			return NotAvailable
		}
	}
	if s := scalar(v); s != "" {
		return s
	}
	return NotAvailable
}

func scalar(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}
