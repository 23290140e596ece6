package monitoring

import (
	"go.uber.org/atomic"
)

type RunState struct {
	StartTimestamp atomic.Int64  `json:"start_timestamp"`
	UpForSeconds   atomic.Uint64 `json:"up_for_seconds"`
}

type RunReport struct {
	State RunState `json:"state"`
}

type ServerState struct {
	RequestsServed atomic.Uint64 `json:"requests_served"`
}

type ServerErrors struct {
	Unauthorized atomic.Uint64 `json:"unauthorized"`
	BadRequest   atomic.Uint64 `json:"bad_request"`
	DbError      atomic.Uint64 `json:"db_error"`
}

type ServerReport struct {
	State  ServerState  `json:"state"`
	Errors ServerErrors `json:"errors"`
}

type PurchaserState struct {
	PurchasesCompleted  atomic.Uint64  `json:"purchases_completed"`
	PaymentsRejected    atomic.Uint64  `json:"payments_rejected"`
	TokensIssued        atomic.Uint64  `json:"tokens_issued"`
	AverageVerifyMillis atomic.Float64 `json:"average_verify_millis"`
}

type PurchaserErrors struct {
	VerificationError atomic.Uint64 `json:"verification_error"`
	PayoutError       atomic.Uint64 `json:"payout_error"`
	IssueError        atomic.Uint64 `json:"issue_error"`

	// Ledger operations went through but the purchase row failed to
	// persist. Requires manual reconciliation.
	DbAfterLedgerError atomic.Uint64 `json:"db_after_ledger_error"`
}

type PurchaserReport struct {
	State  PurchaserState  `json:"state"`
	Errors PurchaserErrors `json:"errors"`
}

type PublisherErrors struct {
	Publish atomic.Uint64 `json:"publish"`
}

type PublisherReport struct {
	Errors PublisherErrors `json:"errors"`
}

type Report struct {
	Run       *RunReport       `json:"run,omitempty"`
	Server    *ServerReport    `json:"server,omitempty"`
	Purchaser *PurchaserReport `json:"purchaser,omitempty"`
	Publisher *PublisherReport `json:"publisher,omitempty"`
}
