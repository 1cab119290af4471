package model

import "time"

// Result is the outcome of one identifier, in input order by Seq.
type Result struct {
	Seq        int     `json:"seq"`
	ID         string  `json:"id"`
	URL        string  `json:"url"`
	Outcome    Outcome `json:"outcome"`
	StatusCode int     `json:"status,omitempty"`
	Detail     string  `json:"detail,omitempty"`
	Attempts   int     `json:"attempts"`
}

// Line renders the result in the console format:
//
//	O: <url>      deleted
//	X: <url>      not found
//	F: Need to grab a new token
//	E: <summary>  anything else
func (r Result) Line() string {
	switch r.Outcome {
	case OutcomeDeleted:
		return PrefixDeleted + r.URL
	case OutcomeNotFound:
		return PrefixNotFound + r.URL
	case OutcomeUnauthorized:
		return PrefixUnauthorized + UnauthorizedMessage
	default:
		return PrefixOtherError + r.Detail
	}
}

// Summary aggregates the results of a run.
type Summary struct {
	RunID        string        `json:"run_id"`
	Total        int           `json:"total"`
	Deleted      int           `json:"deleted"`
	NotFound     int           `json:"not_found"`
	Unauthorized int           `json:"unauthorized"`
	OtherErrors  int           `json:"other_errors"`
	Halted       bool          `json:"halted"`
	Elapsed      time.Duration `json:"elapsed"`
}

// Add counts r into the summary.
func (s *Summary) Add(r Result) {
	s.Total++
	switch r.Outcome {
	case OutcomeDeleted:
		s.Deleted++
	case OutcomeNotFound:
		s.NotFound++
	case OutcomeUnauthorized:
		s.Unauthorized++
	default:
		s.OtherErrors++
	}
}
