package normalize

import (
	"encoding/json"
	"errors"
	"testing"

	"screening-bot/api/internal/schema"
)

func body(t *testing.T, s string) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		t.Fatalf("bad fixture %s: %v", s, err)
	}
	return m
}

func TestClassifyErrorPriority(t *testing.T) {
	tests := []struct {
		name string
		body string
		want ErrorShape
	}{
		{"detail list wins over everything", `{"error":"e","message":"m","detail":[{"msg":"first"},{"msg":"second"}]}`, DetailList{Msg: "first"}},
		{"detail string before message", `{"message":"m","detail":"d"}`, DetailString{Text: "d"}},
		{"message before error", `{"error":"e","message":"m"}`, MessageField{Text: "m"}},
		{"error alone", `{"error":"e"}`, ErrorField{Text: "e"}},
		{"empty detail list skipped", `{"detail":[],"message":"m"}`, MessageField{Text: "m"}},
		{"empty detail string skipped", `{"detail":"","error":"e"}`, ErrorField{Text: "e"}},
		{"detail list without msg", `{"detail":[{"loc":["body"]}],"message":"m"}`, DetailList{Msg: ""}},
		{"nothing known", `{"status":"fail"}`, Unrecognized{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(body(t, tt.body)); got != tt.want {
				t.Fatalf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestNormalizeErrors(t *testing.T) {
	tests := []struct {
		name   string
		kind   schema.Kind
		status int
		body   string
		want   string
	}{
		{"prediction detail list", schema.Malaria, 422, `{"detail":[{"msg":"value is not a valid float"}]}`, "value is not a valid float"},
		{"prediction detail string", schema.Diabetes, 400, `{"detail":"model not loaded"}`, "model not loaded"},
		{"prediction message", schema.Health, 500, `{"message":"boom"}`, "boom"},
		{"prediction fallback", schema.Health, 500, `{}`, MsgServerError},
		{"detail list without msg falls back", schema.Malaria, 422, `{"detail":[{}]}`, MsgServerError},
		{"login fallback", schema.Login, 401, `{}`, MsgLoginFailed},
		{"login error field", schema.Login, 401, `{"error":"locked"}`, "locked"},
		{"signup fallback", schema.Signup, 400, `{"status":"no"}`, MsgSignupFailed},
		{"signup message", schema.Signup, 400, `{"message":"weak password"}`, "weak password"},
		{"signup duplicate via message", schema.Signup, 409, `{"message":"Email already exists"}`, MsgEmailTaken},
		{"signup duplicate via raw body", schema.Signup, 400, `{"detail":"duplicate key","field":"EMAIL"}`, MsgEmailTaken},
		{"login does not special-case email", schema.Login, 400, `{"message":"email not verified"}`, "email not verified"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.kind, tt.status, body(t, tt.body), []byte(tt.body), nil)
			e, ok := got.(Error)
			if !ok {
				t.Fatalf("expected Error, got %#v", got)
			}
			if e.Message != tt.want {
				t.Fatalf("message %q, want %q", e.Message, tt.want)
			}
		})
	}
}

func TestNormalizeSignupNonObjectBody(t *testing.T) {
	for _, raw := range []string{`"Email already registered"`, `["email exists"]`} {
		got := Normalize(schema.Signup, 400, map[string]any{}, []byte(raw), nil)
		if got != (Error{Message: MsgEmailTaken}) {
			t.Fatalf("%s: got %#v", raw, got)
		}
	}
	got := Normalize(schema.Signup, 400, map[string]any{}, []byte(`["weak password"]`), nil)
	if got != (Error{Message: MsgSignupFailed}) {
		t.Fatalf("got %#v", got)
	}
}

func TestNormalizeBinaryIsNumericOnly(t *testing.T) {
	for _, s := range []string{`{"Outcome":"1"}`, `{"Outcome":true}`, `{"Outcome":2}`} {
		got := Normalize(schema.Diabetes, 200, body(t, s), []byte(s), nil)
		if o := got.(Outcome); o.Severity != Negative {
			t.Fatalf("%s: got %#v", s, o)
		}
	}
}

func TestNormalizeTransportFailure(t *testing.T) {
	for _, k := range []schema.Kind{schema.Malaria, schema.Login, schema.Signup} {
		got := Normalize(k, 0, nil, nil, errors.New("dial tcp: connection refused"))
		if got != (Error{Message: MsgTransport}) {
			t.Fatalf("%s: got %#v", k, got)
		}
	}
}

func TestNormalizeMalariaSuccess(t *testing.T) {
	got := Normalize(schema.Malaria, 200, body(t, `{"Result":1,"confidence":0.87}`), nil, nil)
	want := Outcome{Severity: Positive, Label: "Malaria Result: Positive", Detail: "Confidence:0.87"}
	if got != want {
		t.Fatalf("got %#v, want %#v", got, want)
	}

	got = Normalize(schema.Malaria, 200, body(t, `{"Result":0}`), nil, nil)
	want = Outcome{Severity: Negative, Label: "Malaria Result: Negative", Detail: "Confidence:N/A"}
	if got != want {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestNormalizeDiabetesSuccess(t *testing.T) {
	got := Normalize(schema.Diabetes, 200, body(t, `{"Outcome":0}`), nil, nil)
	want := Outcome{Severity: Negative, Label: "Diabetes Result: Negative"}
	if got != want {
		t.Fatalf("got %#v, want %#v", got, want)
	}
	got = Normalize(schema.Diabetes, 201, body(t, `{"Outcome":1}`), nil, nil)
	if o := got.(Outcome); o.Severity != Positive || o.Label != "Diabetes Result: Positive" {
		t.Fatalf("got %#v", o)
	}
}

func TestNormalizeHealthSuccess(t *testing.T) {
	got := Normalize(schema.Health, 200, body(t, `{"predicted_disease":"Influenza"}`), nil, nil)
	if got != (Outcome{Severity: Positive, Label: "Predicted Disease: Influenza"}) {
		t.Fatalf("got %#v", got)
	}
	got = Normalize(schema.Health, 200, body(t, `{}`), nil, nil)
	if o := got.(Outcome); o.Label != "Predicted Disease: N/A" || o.Severity != Positive {
		t.Fatalf("got %#v", o)
	}
}

func TestNormalizeDegradesOnMissingFields(t *testing.T) {
	got := Normalize(schema.Malaria, 200, map[string]any{}, nil, nil)
	if o := got.(Outcome); o.Severity != Negative || o.Detail != "Confidence:N/A" {
		t.Fatalf("got %#v", o)
	}
	got = Normalize(schema.Diabetes, 200, nil, nil, nil)
	if o := got.(Outcome); o.Severity != Negative {
		t.Fatalf("got %#v", o)
	}
}

func TestNormalizeIdentitySuccess(t *testing.T) {
	if got := Normalize(schema.Login, 200, body(t, `{"token":"x"}`), nil, nil); got != (Outcome{Severity: Informational, Label: MsgLoginOK}) {
		t.Fatalf("login: %#v", got)
	}
	if got := Normalize(schema.Signup, 201, body(t, `{"email":"a@b.c"}`), nil, nil); got != (Outcome{Severity: Informational, Label: MsgSignupOK}) {
		t.Fatalf("signup: %#v", got)
	}
}

func TestIsOutcome(t *testing.T) {
	if !IsOutcome(Outcome{}) || IsOutcome(Error{}) || IsOutcome(nil) {
		t.Fatal("IsOutcome mismatch")
	}
}
