package app

import (
	"errors"

	"github.com/Guilhem-Bonnet/Manga-Reader/internal/ports"
)

var ErrNotFound = ports.ErrNotFound

var ErrSessionNotFound = errors.New("session not found")

// CodedError permet aux services de renvoyer un code d'erreur stable,
// exposé tel quel par l'API HTTP.
//
// Exemples de codes: invalid_input, tracker_unavailable, http_status.
type CodedError struct {
	Code    string
	Message string
	Err     error
}

func (e *CodedError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *CodedError) Unwrap() error { return e.Err }

func invalidInput(msg string, err error) error {
	return &CodedError{Code: "invalid_input", Message: msg, Err: err}
}
