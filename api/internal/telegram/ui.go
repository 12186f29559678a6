package telegram

import (
	"bytes"
	"html/template"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"screening-bot/api/internal/form"
	"screening-bot/api/internal/normalize"
	"screening-bot/api/internal/popup"
	"screening-bot/api/internal/schema"
	"screening-bot/api/internal/store"
)

const (
	cbSubmit = "submit"
	cbClose  = "close"
	cbCancel = "cancel"
	cbNoop   = "noop"

	pfxForm   = "form:"
	pfxField  = "field:"
	pfxToggle = "toggle:"
	pfxOpt    = "opt:"
)

var views = template.Must(template.New("views").Parse(`
{{- define "form" -}}
<b>{{.Title}}</b>
{{range .Rows}}{{.Label}}: {{if .Value}}<code>{{.Value}}</code>{{else}}—{{end}}
{{end}}{{if .Loading}}
<i>⏳ Sending…</i>{{end}}
{{- end}}

{{- define "outcome" -}}
{{.Icon}} <b>{{.Label}}</b>{{if .Detail}}
{{.Detail}}{{end}}
{{- end}}

{{- define "error" -}}
⚠️ {{.Message}}
{{- end}}

{{- define "history" -}}
<b>Recent results</b>
{{range .}}{{.CreatedAt.Format "2006-01-02 15:04"}} · {{.Kind}} · {{.Label}}{{if .Detail}} ({{.Detail}}){{end}}
{{else}}No results yet.
{{end}}
{{- end}}
`))

type formRow struct {
	Label string
	Value string
}

type formData struct {
	Title   string
	Rows    []formRow
	Loading bool
}

type outcomeData struct {
	Icon   string
	Label  string
	Detail string
}

func render(name string, data any) string {
	var b bytes.Buffer
	if err := views.ExecuteTemplate(&b, name, data); err != nil {
		return template.HTMLEscapeString(name)
	}
	return b.String()
}

func severityIcon(s normalize.Severity) string {
	switch s {
	case normalize.Positive:
		return "🔴"
	case normalize.Negative:
		return "🔵"
	default:
		return "ℹ️"
	}
}

// displayValue: пароль не показывается, флажки — Yes/No.
func displayValue(f schema.Field, v form.Value) string {
	if b, ok := v.Bool(); ok {
		if b {
			return "Yes"
		}
		return "No"
	}
	s := strings.TrimSpace(v.String())
	if f.Secret && s != "" {
		return "••••••"
	}
	return s
}

func formView(kind schema.Kind, snap popup.Snapshot) (string, tgbotapi.InlineKeyboardMarkup) {
	sc := schema.MustLookup(kind)
	data := formData{Title: sc.Title, Loading: snap.Loading()}
	for _, f := range sc.Fields {
		v, _ := snap.Form.Get(f.Name)
		data.Rows = append(data.Rows, formRow{Label: f.Label(), Value: displayValue(f, v)})
	}
	return render("form", data), formKeyboard(sc, snap)
}

func formKeyboard(sc schema.Schema, snap popup.Snapshot) tgbotapi.InlineKeyboardMarkup {
	var (
		rows [][]tgbotapi.InlineKeyboardButton
		row  []tgbotapi.InlineKeyboardButton
	)
	for _, f := range sc.Fields {
		v, _ := snap.Form.Get(f.Name)
		var btn tgbotapi.InlineKeyboardButton
		if f.Kind == schema.Boolean {
			mark := "⬜"
			if b, _ := v.Bool(); b {
				mark = "✅"
			}
			btn = tgbotapi.NewInlineKeyboardButtonData(mark+" "+f.Label(), pfxToggle+f.Name)
		} else {
			text := f.Label()
			if d := displayValue(f, v); d != "" {
				text += ": " + d
			}
			btn = tgbotapi.NewInlineKeyboardButtonData(text, pfxField+f.Name)
		}
		row = append(row, btn)
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	submit := tgbotapi.NewInlineKeyboardButtonData("⏳ Sending…", cbNoop)
	if snap.TriggerEnabled() {
		submit = tgbotapi.NewInlineKeyboardButtonData(submitLabel(sc.Kind), cbSubmit)
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(submit),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Cancel", cbCancel)),
	)
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func submitLabel(kind schema.Kind) string {
	switch kind {
	case schema.Login:
		return "Log in"
	case schema.Signup:
		return "Sign up"
	default:
		return "Send report"
	}
}

func optionsKeyboard(f schema.Field) tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	for _, o := range f.Options {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(o, pfxOpt+f.Name+":"+o))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

// Выбор формы после /report
func makePickerKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, k := range schema.Predictions() {
		sc := schema.MustLookup(k)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(strings.TrimPrefix(sc.Title, "Send "), pfxForm+string(k)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func makeCloseKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Close", cbClose)),
	)
}

func popupView(p normalize.Presentation) string {
	switch x := p.(type) {
	case normalize.Outcome:
		return render("outcome", outcomeData{Icon: severityIcon(x.Severity), Label: x.Label, Detail: x.Detail})
	case normalize.Error:
		return render("error", x)
	default:
		return render("error", normalize.Error{Message: normalize.MsgTransport})
	}
}

func historyView(rows []store.ResultRow) string {
	return render("history", rows)
}
