package transport

import "errors"

var (
	ErrBusy         = errors.New("transmitter holdoff has not elapsed")
	ErrWriteFailed  = errors.New("radio write failed")
	ErrTooManyPipes = errors.New("too many reading pipes")
	ErrNoPipes      = errors.New("no reading pipes configured")
)
