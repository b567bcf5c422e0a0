package validator

// Validator validates inbound API requests before they reach the use cases.
type Validator struct {
	maxAnswerLength int
	maxTitleLength  int
}

const (
	defaultMaxAnswerLength = 4000
	defaultMaxTitleLength  = 200
)

func New() *Validator {
	return &Validator{
		maxAnswerLength: defaultMaxAnswerLength,
		maxTitleLength:  defaultMaxTitleLength,
	}
}
