package valueobjects

// AttemptOutcome is the normalized result of one charge attempt.
// A decline is terminal for the attempt; an error is transient at the gateway
// but both feed the retry ladder identically.
type AttemptOutcome string

const (
	OutcomeSuccess  AttemptOutcome = "success"
	OutcomeDeclined AttemptOutcome = "declined"
	OutcomeError    AttemptOutcome = "error"
)

func (o AttemptOutcome) IsValid() bool {
	switch o {
	case OutcomeSuccess, OutcomeDeclined, OutcomeError:
		return true
	default:
		return false
	}
}

func (o AttemptOutcome) IsSuccess() bool {
	return o == OutcomeSuccess
}

// IsFailure reports whether the outcome counts toward the consecutive-failure streak.
func (o AttemptOutcome) IsFailure() bool {
	return o == OutcomeDeclined || o == OutcomeError
}

func (o AttemptOutcome) String() string {
	return string(o)
}
