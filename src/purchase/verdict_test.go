package purchase

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFinalizeAllChecksPassed(t *testing.T) {
	verdict := &Verdict{
		TransactionExists: true,
		AmountMatches:     true,
		RecipientCorrect:  true,
		IsRecent:          true,
		IsUnused:          true,
	}
	verdict.finalize()
	require.True(t, verdict.IsValid)
	require.Empty(t, verdict.ErrorReason)
}

func TestFinalizeSynthesizesReason(t *testing.T) {
	verdict := &Verdict{
		TransactionExists: true,
		AmountMatches:     true,
		RecipientCorrect:  true,
		IsRecent:          false,
		IsUnused:          true,
	}
	verdict.finalize()
	require.False(t, verdict.IsValid)
	require.Equal(t, "Verification failed: transaction too old", verdict.ErrorReason)
}

func TestFinalizeJoinsMultipleReasons(t *testing.T) {
	verdict := &Verdict{
		TransactionExists: true,
		IsRecent:          true,
	}
	verdict.finalize()
	require.False(t, verdict.IsValid)
	require.Equal(t,
		"Verification failed: amount mismatch, wrong recipient, transaction already used",
		verdict.ErrorReason)
}

func TestFinalizeKeepsEarlierReason(t *testing.T) {
	verdict := &Verdict{
		TransactionExists: true,
		ErrorReason:       "Transaction was not successful: DUPLICATE_TRANSACTION",
	}
	verdict.finalize()
	require.False(t, verdict.IsValid)
	require.Equal(t, "Transaction was not successful: DUPLICATE_TRANSACTION", verdict.ErrorReason)
}
