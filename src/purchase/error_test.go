package purchase

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLedgerErrorUnwraps(t *testing.T) {
	cause := errors.New("receipt status: INSUFFICIENT_PAYER_BALANCE")
	err := fmt.Errorf("purchase failed: %w", &LedgerError{Step: StepPayout, Err: cause})

	var ledger *LedgerError
	require.True(t, errors.As(err, &ledger))
	require.Equal(t, StepPayout, ledger.Step)
	require.ErrorIs(t, err, cause)
}

func TestRejectedErrorCarriesVerdict(t *testing.T) {
	verdict := &Verdict{ErrorReason: "Verification failed: amount mismatch"}
	err := error(&RejectedError{Verdict: verdict})

	var rejected *RejectedError
	require.True(t, errors.As(err, &rejected))
	require.Same(t, verdict, rejected.Verdict)
	require.Contains(t, err.Error(), "amount mismatch")
}

func TestIsUniqueViolation(t *testing.T) {
	require.True(t, isUniqueViolation(errors.New(
		`ERROR: duplicate key value violates unique constraint "purchases_payment_tx_id_completed" (SQLSTATE 23505)`)))
	require.True(t, isUniqueViolation(errors.New(
		"constraint failed: UNIQUE constraint failed: index 'purchases_payment_tx_id_completed' (2067)")))
	require.False(t, isUniqueViolation(errors.New("connection refused")))
}
