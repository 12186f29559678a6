package payload_test

import (
	"encoding/json"
	"errors"
	"testing"

	"screening-bot/api/internal/form"
	"screening-bot/api/internal/payload"
	"screening-bot/api/internal/schema"
	"screening-bot/api/internal/testutil/formfixture"
)

func build(t *testing.T, kind schema.Kind, st form.State) payload.Request {
	t.Helper()
	v, err := form.Validate(kind, st)
	if err != nil {
		t.Fatalf("validate %s: %v", kind, err)
	}
	req, err := payload.Build(kind, v)
	if err != nil {
		t.Fatalf("build %s: %v", kind, err)
	}
	if req.Kind() != kind {
		t.Fatalf("request kind %s, want %s", req.Kind(), kind)
	}
	return req
}

func encode(t *testing.T, req payload.Request) string {
	t.Helper()
	b, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

func TestBuildWireFormat(t *testing.T) {
	tests := []struct {
		kind schema.Kind
		want string
	}{
		{
			schema.Malaria,
			`{"Age":34,"Body_Temperature":38.6,"Hemoglobin":11.2,"RBC_Count":4.1,"Platelet_Count":150000,` +
				`"Has_Fever":1,"Has_Chills":0,"Has_Vomiting":1,"Rainy_Season":0}`,
		},
		{
			schema.Diabetes,
			`{"Pregnancies":2,"Glucose":138,"BloodPressure":62,"SkinThickness":35,"Insulin":0,"BMI":33.6,` +
				`"DiabetesPedigreeFunction":0.127,"Age":47}`,
		},
		{
			schema.Health,
			`{"age":52,"gender":"female","temperature":37.2,"heart_rate":88,"systolic_bp":130,"diastolic_bp":85,` +
				`"glucose_level":110,"oxygen_level":97,"bmi":27.4,"cough":"yes","fatigue":"yes","headache":"no",` +
				`"nausea":"no","chest_pain":"no","shortness_of_breath":"no","vision_problem":"no",` +
				`"frequent_urination":"yes","joint_pain":"no"}`,
		},
		{
			schema.Login,
			`{"email":"ada@example.com","password":"s3cret"}`,
		},
		{
			schema.Signup,
			`{"name":"Ada","email":"ada@example.com","password":"s3cret","position":"Nurse","department":"Triage"}`,
		},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			got := encode(t, build(t, tt.kind, formfixture.Filled(tt.kind)))
			if got != tt.want {
				t.Fatalf("wire mismatch\n got: %s\nwant: %s", got, tt.want)
			}
		})
	}
}

func TestBuildIdentityTrimsButKeepsPassword(t *testing.T) {
	st := formfixture.Filled(schema.Login).
		With("email", form.Text("  ada@example.com ")).
		With("password", form.Text(" pass word "))
	req := build(t, schema.Login, st).(payload.LoginRequest)
	if req.Email != "ada@example.com" {
		t.Fatalf("email not trimmed: %q", req.Email)
	}
	if req.Password != " pass word " {
		t.Fatalf("password changed: %q", req.Password)
	}
}

func TestBuildKindMismatch(t *testing.T) {
	v, err := form.Validate(schema.Diabetes, formfixture.Filled(schema.Diabetes))
	if err != nil {
		t.Fatal(err)
	}
	_, err = payload.Build(schema.Malaria, v)
	if !errors.Is(err, payload.ErrKindMismatch) {
		t.Fatalf("expected ErrKindMismatch, got %v", err)
	}
}
