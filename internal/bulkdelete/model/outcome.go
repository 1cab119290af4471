package model

import "fmt"

// Outcome classifies a single delete attempt.
type Outcome int

const (
	OutcomeDeleted Outcome = iota
	OutcomeNotFound
	OutcomeUnauthorized
	OutcomeOtherError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDeleted:
		return "deleted"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeUnauthorized:
		return "unauthorized"
	case OutcomeOtherError:
		return "other_error"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// MarshalText lets outcomes appear by name in JSON output.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Line prefixes written in front of every reported result.
const (
	PrefixDeleted      = "O: "
	PrefixNotFound     = "X: "
	PrefixUnauthorized = "F: "
	PrefixOtherError   = "E: "

	UnauthorizedMessage = "Need to grab a new token"
)
