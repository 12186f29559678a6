package schema

var (
	genderOptions = []string{"male", "female"}
	yesNoOptions  = []string{"yes", "no"}
)

func num(name string) Field  { return Field{Name: name, Kind: Number, Required: true} }
func flag(name string) Field { return Field{Name: name, Kind: Boolean, Required: true} }
func text(name string) Field { return Field{Name: name, Kind: Text, Required: true} }
func enum(name string, opts []string) Field {
	return Field{Name: name, Kind: Enum, Options: opts, Required: true}
}

// Регистр имён полей задан бэкендом: Malaria/Diabetes — PascalCase, Health — snake_case.
var registry = map[Kind]Schema{
	Malaria: {
		Kind:  Malaria,
		Title: "Send Malaria Report",
		Fields: []Field{
			num("Age"),
			num("Body_Temperature"),
			num("Hemoglobin"),
			num("RBC_Count"),
			num("Platelet_Count"),
			flag("Has_Fever"),
			flag("Has_Chills"),
			flag("Has_Vomiting"),
			flag("Rainy_Season"),
		},
	},
	Diabetes: {
		Kind:  Diabetes,
		Title: "Send Diabetes Report",
		Fields: []Field{
			num("Pregnancies"),
			num("Glucose"),
			num("BloodPressure"),
			num("SkinThickness"),
			num("Insulin"),
			num("BMI"),
			num("DiabetesPedigreeFunction"),
			num("Age"),
		},
	},
	Health: {
		Kind:  Health,
		Title: "Send Health Report",
		Fields: []Field{
			num("age"),
			enum("gender", genderOptions),
			num("temperature"),
			num("heart_rate"),
			num("systolic_bp"),
			num("diastolic_bp"),
			num("glucose_level"),
			num("oxygen_level"),
			num("bmi"),
			enum("cough", yesNoOptions),
			enum("fatigue", yesNoOptions),
			enum("headache", yesNoOptions),
			enum("nausea", yesNoOptions),
			enum("chest_pain", yesNoOptions),
			enum("shortness_of_breath", yesNoOptions),
			enum("vision_problem", yesNoOptions),
			enum("frequent_urination", yesNoOptions),
			enum("joint_pain", yesNoOptions),
		},
	},
	Login: {
		Kind:  Login,
		Title: "Login",
		Fields: []Field{
			{Name: "email", Kind: Text, Required: true, Email: true},
			{Name: "password", Kind: Text, Required: true, Secret: true},
		},
	},
	Signup: {
		Kind:  Signup,
		Title: "Create Account",
		Fields: []Field{
			text("name"),
			{Name: "email", Kind: Text, Required: true, Email: true},
			{Name: "password", Kind: Text, Required: true, Secret: true},
			text("position"),
			text("department"),
		},
	},
}
