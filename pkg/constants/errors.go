package constants

import "errors"

// Errors
var (
	ErrInvalidResponse   = errors.New("invalid service response")
	ErrRecordNotFound    = errors.New("record not found")
	ErrFieldNotFound     = errors.New("field not found")
	ErrFieldNotWritable  = errors.New("field not writable")
	ErrMissingPrimaryKey = errors.New("primary key field missing")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrNoOwner           = errors.New("record is not attached to a client")
)

var (
	ErrTransport     = errors.New("transport failure")
	ErrNoBaseURL     = errors.New("base url not set")
	ErrNoTransport   = errors.New("transport is not set")
	ErrUnknownAuth   = errors.New("unknown auth mode")
	ErrInvalidScheme = errors.New("url scheme must be http or https")
)
