package tracking

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is the base of every lookup failure.
	ErrNotFound = errors.New("not found")
	// ErrSessionNotFound indicates the session doesn't exist.
	ErrSessionNotFound = fmt.Errorf("session %w", ErrNotFound)
	// ErrRecordNotFound indicates the manual record doesn't exist.
	ErrRecordNotFound = fmt.Errorf("manual record %w", ErrNotFound)

	ErrInvalidStatus       = errors.New("operation not allowed in the session's current status")
	ErrActiveSessionExists = errors.New("an active study session already exists; finish or pause it before starting a new one")
	ErrSessionTooShort     = errors.New("session must last at least the minimum duration to be valid")
	// ErrPauseTimeout is returned by Resume together with the interrupted session.
	ErrPauseTimeout       = errors.New("session paused for longer than allowed was interrupted automatically")
	ErrTimeOverlap        = errors.New("a study record or live session already covers this time")
	ErrDailyLimitExceeded = errors.New("daily study limit reached for this date")
	ErrEditPeriodExpired  = errors.New("edit period has expired")
	ErrInvalidInput       = errors.New("invalid input")
)

// Error codes exposed to API clients
const (
	CodeNotFound            = "NOT_FOUND"
	CodeInvalidStatus       = "INVALID_STATUS"
	CodeActiveSessionExists = "ACTIVE_SESSION_EXISTS"
	CodeSessionTooShort     = "SESSION_TOO_SHORT"
	CodePauseTimeout        = "PAUSE_TIMEOUT"
	CodeTimeOverlap         = "TIME_OVERLAP"
	CodeDailyLimitExceeded  = "DAILY_LIMIT_EXCEEDED"
	CodeEditPeriodExpired   = "EDIT_PERIOD_EXPIRED"
	CodeValidation          = "VALIDATION_ERROR"
	CodeInternal            = "INTERNAL_ERROR"
)

var codes = []struct {
	err  error
	code string
}{
	{ErrNotFound, CodeNotFound},
	{ErrInvalidStatus, CodeInvalidStatus},
	{ErrActiveSessionExists, CodeActiveSessionExists},
	{ErrSessionTooShort, CodeSessionTooShort},
	{ErrPauseTimeout, CodePauseTimeout},
	{ErrTimeOverlap, CodeTimeOverlap},
	{ErrDailyLimitExceeded, CodeDailyLimitExceeded},
	{ErrEditPeriodExpired, CodeEditPeriodExpired},
	{ErrInvalidInput, CodeValidation},
}

// Code maps an error returned by the Service to its stable code
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return CodeInternal
}

// IsBusinessError reports whether err is a rule violation rather than an infrastructure failure
func IsBusinessError(err error) bool {
	return err != nil && Code(err) != CodeInternal
}

// FieldError describes one invalid input field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every invalid field of a request
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return ErrInvalidInput.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

func (e *ValidationError) add(field, format string, args ...interface{}) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// err returns nil when no field failed
func (e *ValidationError) err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
