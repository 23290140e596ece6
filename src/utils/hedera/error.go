package hedera

import "errors"

var (
	ErrInvalidTransactionId = errors.New("invalid transaction id")
	ErrOperatorNotSet       = errors.New("operator account not configured")
)
