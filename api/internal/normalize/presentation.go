package normalize

type Severity int

const (
	Negative Severity = iota
	Positive
	Informational
)

func (s Severity) String() string {
	switch s {
	case Positive:
		return "positive"
	case Negative:
		return "negative"
	default:
		return "informational"
	}
}

// Presentation — нормализованный результат отправки: Outcome или Error.
type Presentation interface {
	isPresentation()
}

// Outcome строится только из успешного ответа. Detail пустой — детали нет.
type Outcome struct {
	Severity Severity
	Label    string
	Detail   string
}

// Error — сообщение для пользователя; сырые детали транспорта сюда не попадают.
type Error struct {
	Message string
}

func (Outcome) isPresentation() {}
func (Error) isPresentation()   {}

// IsOutcome — true только для успешного результата.
func IsOutcome(p Presentation) bool {
	_, ok := p.(Outcome)
	return ok
}
