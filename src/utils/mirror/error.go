package mirror

import "errors"

var (
	ErrNotFound      = errors.New("transaction not found")
	ErrBadResponse   = errors.New("bad response")
	ErrFailedToParse = errors.New("failed to parse response")
)
