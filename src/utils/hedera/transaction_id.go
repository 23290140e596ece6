package hedera

import (
	"math"
	"regexp"
	"strings"
)

// Tinybar is the smallest HBAR denomination
const TinybarPerHbar = 100_000_000

// Two textual encodings of a transaction id circulate in the tooling.
// The SDK prints "0.0.123@1700000000.000000001", the mirror node REST
// api addresses transactions as "0.0.123-1700000000-000000001".
var (
	mirrorTxIdRegex = regexp.MustCompile(`^\d+\.\d+\.\d+-\d+-\d+$`)
	sdkTxIdRegex    = regexp.MustCompile(`^\d+\.\d+\.\d+@\d+\.\d+$`)
)

// NormalizeTransactionId rewrites the @-delimited form to the
// dash-delimited one the mirror node accepts for direct lookup.
// Ids failing structural validation are rejected.
func NormalizeTransactionId(id string) (out string, err error) {
	id = strings.TrimSpace(id)
	out = id

	if sdkTxIdRegex.MatchString(id) {
		account, timestamp, _ := strings.Cut(id, "@")
		seconds, nanos, _ := strings.Cut(timestamp, ".")
		out = account + "-" + seconds + "-" + nanos
		return
	}

	if !mirrorTxIdRegex.MatchString(id) {
		err = ErrInvalidTransactionId
		return
	}

	return
}

// TinybarFromHbar converts a decimal HBAR amount to tinybars.
// Rounding absorbs float noise from price columns.
func TinybarFromHbar(amount float64) int64 {
	return int64(math.Round(amount * TinybarPerHbar))
}
