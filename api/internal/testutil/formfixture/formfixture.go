// Package formfixture builds fully filled forms for tests.
package formfixture

import (
	"screening-bot/api/internal/form"
	"screening-bot/api/internal/schema"
)

var samples = map[schema.Kind]map[string]form.Value{
	schema.Malaria: {
		"Age":              form.Text("34"),
		"Body_Temperature": form.Text("38.6"),
		"Hemoglobin":       form.Text("11.2"),
		"RBC_Count":        form.Text("4.1"),
		"Platelet_Count":   form.Text("150000"),
		"Has_Fever":        form.Flag(true),
		"Has_Chills":       form.Flag(false),
		"Has_Vomiting":     form.Flag(true),
		"Rainy_Season":     form.Flag(false),
	},
	schema.Diabetes: {
		"Pregnancies":              form.Text("2"),
		"Glucose":                  form.Text("138"),
		"BloodPressure":            form.Text("62"),
		"SkinThickness":            form.Text("35"),
		"Insulin":                  form.Text("0"),
		"BMI":                      form.Text("33.6"),
		"DiabetesPedigreeFunction": form.Text("0.127"),
		"Age":                      form.Text("47"),
	},
	schema.Health: {
		"age":                 form.Text("52"),
		"gender":              form.Text("female"),
		"temperature":         form.Text("37.2"),
		"heart_rate":          form.Text("88"),
		"systolic_bp":         form.Text("130"),
		"diastolic_bp":        form.Text("85"),
		"glucose_level":       form.Text("110"),
		"oxygen_level":        form.Text("97"),
		"bmi":                 form.Text("27.4"),
		"cough":               form.Text("yes"),
		"fatigue":             form.Text("yes"),
		"headache":            form.Text("no"),
		"nausea":              form.Text("no"),
		"chest_pain":          form.Text("no"),
		"shortness_of_breath": form.Text("no"),
		"vision_problem":      form.Text("no"),
		"frequent_urination":  form.Text("yes"),
		"joint_pain":          form.Text("no"),
	},
	schema.Login: {
		"email":    form.Text("ada@example.com"),
		"password": form.Text("s3cret"),
	},
	schema.Signup: {
		"name":       form.Text("Ada"),
		"email":      form.Text("ada@example.com"),
		"password":   form.Text("s3cret"),
		"position":   form.Text("Nurse"),
		"department": form.Text("Triage"),
	},
}

// Filled returns a form of kind with every required field set to a valid value.
func Filled(kind schema.Kind) form.State {
	st := form.New(kind)
	for name, v := range samples[kind] {
		st = st.With(name, v)
	}
	return st
}
