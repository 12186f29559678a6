package payload

import (
	"strings"

	"github.com/pkg/errors"

	"screening-bot/api/internal/form"
	"screening-bot/api/internal/schema"
)

// Request — типизированное тело запроса к бэкенду. Теги json — контракт с бэкендом,
// имена и регистр должны совпадать байт в байт.
type Request interface {
	Kind() schema.Kind
	isRequest()
}

type MalariaRequest struct {
	Age             float64 `json:"Age"`
	BodyTemperature float64 `json:"Body_Temperature"`
	Hemoglobin      float64 `json:"Hemoglobin"`
	RBCCount        float64 `json:"RBC_Count"`
	PlateletCount   float64 `json:"Platelet_Count"`
	HasFever        int     `json:"Has_Fever"`
	HasChills       int     `json:"Has_Chills"`
	HasVomiting     int     `json:"Has_Vomiting"`
	RainySeason     int     `json:"Rainy_Season"`
}

type DiabetesRequest struct {
	Pregnancies              float64 `json:"Pregnancies"`
	Glucose                  float64 `json:"Glucose"`
	BloodPressure            float64 `json:"BloodPressure"`
	SkinThickness            float64 `json:"SkinThickness"`
	Insulin                  float64 `json:"Insulin"`
	BMI                      float64 `json:"BMI"`
	DiabetesPedigreeFunction float64 `json:"DiabetesPedigreeFunction"`
	Age                      float64 `json:"Age"`
}

type HealthRequest struct {
	Age               float64 `json:"age"`
	Gender            string  `json:"gender"`
	Temperature       float64 `json:"temperature"`
	HeartRate         float64 `json:"heart_rate"`
	SystolicBP        float64 `json:"systolic_bp"`
	DiastolicBP       float64 `json:"diastolic_bp"`
	GlucoseLevel      float64 `json:"glucose_level"`
	OxygenLevel       float64 `json:"oxygen_level"`
	BMI               float64 `json:"bmi"`
	Cough             string  `json:"cough"`
	Fatigue           string  `json:"fatigue"`
	Headache          string  `json:"headache"`
	Nausea            string  `json:"nausea"`
	ChestPain         string  `json:"chest_pain"`
	ShortnessOfBreath string  `json:"shortness_of_breath"`
	VisionProblem     string  `json:"vision_problem"`
	FrequentUrination string  `json:"frequent_urination"`
	JointPain         string  `json:"joint_pain"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Position   string `json:"position"`
	Department string `json:"department"`
}

func (MalariaRequest) Kind() schema.Kind  { return schema.Malaria }
func (DiabetesRequest) Kind() schema.Kind { return schema.Diabetes }
func (HealthRequest) Kind() schema.Kind   { return schema.Health }
func (LoginRequest) Kind() schema.Kind    { return schema.Login }
func (SignupRequest) Kind() schema.Kind   { return schema.Signup }

func (MalariaRequest) isRequest()  {}
func (DiabetesRequest) isRequest() {}
func (HealthRequest) isRequest()   {}
func (LoginRequest) isRequest()    {}
func (SignupRequest) isRequest()   {}

var ErrKindMismatch = errors.New("validated form kind does not match request kind")

// Build превращает проверенную форму в тело запроса для kind.
func Build(kind schema.Kind, v form.Validated) (Request, error) {
	if v.Kind() != kind {
		return nil, errors.Wrapf(ErrKindMismatch, "build %s from %s form", kind, v.Kind())
	}
	r := reader{v: v}
	var req Request
	switch kind {
	case schema.Malaria:
		req = MalariaRequest{
			Age:             r.num("Age"),
			BodyTemperature: r.num("Body_Temperature"),
			Hemoglobin:      r.num("Hemoglobin"),
			RBCCount:        r.num("RBC_Count"),
			PlateletCount:   r.num("Platelet_Count"),
			HasFever:        r.bit("Has_Fever"),
			HasChills:       r.bit("Has_Chills"),
			HasVomiting:     r.bit("Has_Vomiting"),
			RainySeason:     r.bit("Rainy_Season"),
		}
	case schema.Diabetes:
		req = DiabetesRequest{
			Pregnancies:              r.num("Pregnancies"),
			Glucose:                  r.num("Glucose"),
			BloodPressure:            r.num("BloodPressure"),
			SkinThickness:            r.num("SkinThickness"),
			Insulin:                  r.num("Insulin"),
			BMI:                      r.num("BMI"),
			DiabetesPedigreeFunction: r.num("DiabetesPedigreeFunction"),
			Age:                      r.num("Age"),
		}
	case schema.Health:
		req = HealthRequest{
			Age:               r.num("age"),
			Gender:            r.option("gender"),
			Temperature:       r.num("temperature"),
			HeartRate:         r.num("heart_rate"),
			SystolicBP:        r.num("systolic_bp"),
			DiastolicBP:       r.num("diastolic_bp"),
			GlucoseLevel:      r.num("glucose_level"),
			OxygenLevel:       r.num("oxygen_level"),
			BMI:               r.num("bmi"),
			Cough:             r.option("cough"),
			Fatigue:           r.option("fatigue"),
			Headache:          r.option("headache"),
			Nausea:            r.option("nausea"),
			ChestPain:         r.option("chest_pain"),
			ShortnessOfBreath: r.option("shortness_of_breath"),
			VisionProblem:     r.option("vision_problem"),
			FrequentUrination: r.option("frequent_urination"),
			JointPain:         r.option("joint_pain"),
		}
	case schema.Login:
		req = LoginRequest{
			Email:    r.text("email"),
			Password: r.secret("password"),
		}
	case schema.Signup:
		req = SignupRequest{
			Name:       r.text("name"),
			Email:      r.text("email"),
			Password:   r.secret("password"),
			Position:   r.text("position"),
			Department: r.text("department"),
		}
	default:
		return nil, errors.Errorf("no payload for kind %q", kind)
	}
	if r.err != nil {
		return nil, errors.Wrapf(r.err, "build %s payload", kind)
	}
	return req, nil
}

// reader запоминает первую ошибку, чтобы собирать структуры одним литералом.
type reader struct {
	v   form.Validated
	err error
}

func (r *reader) num(name string) float64 {
	f, ok := form.ParseNumber(r.v.Text(name))
	if !ok && r.err == nil {
		r.err = errors.Errorf("field %s: %q is not a number", name, r.v.Text(name))
	}
	return f
}

func (r *reader) bit(name string) int {
	if r.v.Flag(name) {
		return 1
	}
	return 0
}

// option передаётся как есть: бэкенд ждёт сырые "yes"/"no"/"male"/"female".
func (r *reader) option(name string) string { return r.v.Text(name) }

func (r *reader) text(name string) string { return strings.TrimSpace(r.v.Text(name)) }

// secret не обрезается: пробелы в пароле значимы.
func (r *reader) secret(name string) string { return r.v.Text(name) }
