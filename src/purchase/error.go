package purchase

import (
	"errors"
	"fmt"
)

var (
	ErrDatasetNotFound = errors.New("dataset not found")

	// The dataset row exists but its credential token was never
	// attached, issuing access for it can only fail
	ErrNoCredentialToken = errors.New("dataset has no credential token")
)

// Ledger steps that can fail independently
const (
	StepPayout = "seller_payout"
	StepIssue  = "token_issue"
)

// RejectedError means the payment claim did not verify.
// Nothing has been mutated, the attempt is safe to retry.
type RejectedError struct {
	Verdict *Verdict
}

func (self *RejectedError) Error() string {
	return "payment verification failed: " + self.Verdict.ErrorReason
}

// LedgerError means a ledger write failed mid-sequence.
// Steps before the failed one are final and cannot be rolled back.
type LedgerError struct {
	Step string
	Err  error
}

func (self *LedgerError) Error() string {
	return fmt.Sprintf("ledger operation failed at %s: %s", self.Step, self.Err)
}

func (self *LedgerError) Unwrap() error {
	return self.Err
}

// PersistenceError means the database write failed after all ledger
// operations succeeded. The most severe failure mode, the ledger
// already reflects the purchase.
type PersistenceError struct {
	Err error
}

func (self *PersistenceError) Error() string {
	return "failed to record purchase: " + self.Err.Error()
}

func (self *PersistenceError) Unwrap() error {
	return self.Err
}
