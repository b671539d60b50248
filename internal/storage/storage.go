package storage

import "errors"

// Exchange is one user prompt paired with the model's generated response.
// Both fields are always serialized, empty strings included.
type Exchange struct {
	User string `json:"user"`
	AI   string `json:"ai"`
}

// ErrMalformed is returned by Load when the backing file exists but does not
// hold a JSON array of exchange objects.
var ErrMalformed = errors.New("malformed history file")

// Store abstracts persistence of the exchange sequence.
// Load returns exchanges in chronological order; a missing backing file is an
// empty sequence, not an error. Save replaces the whole stored sequence.
type Store interface {
	Load() ([]Exchange, error)
	Save(exchanges []Exchange) error
}
