package readings

import "errors"

var (
	ErrEmptyID              = errors.New("readings: empty reading id")
	ErrEmptyMeterID         = errors.New("readings: empty meter id")
	ErrNotFound             = errors.New("readings: reading not found")
	ErrRejected             = errors.New("readings: reading failed validation")
	ErrConfirmationRequired = errors.New("readings: high consumption warning requires confirmation")
)
