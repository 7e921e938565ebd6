package metering

import "errors"

var (
	ErrEmptyDeviceID    = errors.New("metering: empty device id")
	ErrEmptyProviderID  = errors.New("metering: empty provider id")
	ErrDeviceNotFound   = errors.New("metering: device not found")
	ErrProviderNotFound = errors.New("metering: provider not found")
	ErrNegativePrice    = errors.New("metering: negative price per unit")
	ErrUnknownPolicy    = errors.New("metering: unknown accumulation policy")
)
