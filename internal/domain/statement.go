package domain

import "errors"

// Predicate is the fixed enumeration of claims a statement can make.
type Predicate string

const (
	PredicateRole     Predicate = "role"
	PredicateLocation Predicate = "location"
	PredicateDid      Predicate = "did"
)

func ValidPredicate(p string) bool {
	switch Predicate(p) {
	case PredicateRole, PredicateLocation, PredicateDid:
		return true
	}
	return false
}

// ErrMalformedStatement is a construction-time validation failure,
// distinct from gameplay legality errors.
var ErrMalformedStatement = errors.New("malformed statement")

// Statement is an immutable structured claim made by a speaker about a
// subject, e.g. "npc1 says npc3's role is bad".
type Statement struct {
	Predicate Predicate `json:"predicate"`
	Subject   string    `json:"subject"`
	Value     string    `json:"value"`
	Speaker   string    `json:"speaker"`
	Timestamp float64   `json:"timestamp"`
}

func NewStatement(predicate, subject, value, speaker string, timestamp float64) (*Statement, error) {
	if !ValidPredicate(predicate) {
		return nil, ErrMalformedStatement
	}
	if subject == "" || value == "" || speaker == "" {
		return nil, ErrMalformedStatement
	}
	return &Statement{
		Predicate: Predicate(predicate),
		Subject:   subject,
		Value:     value,
		Speaker:   speaker,
		Timestamp: timestamp,
	}, nil
}
