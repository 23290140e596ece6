package mirror

import (
	"encoding/json"
	"strconv"
	"time"
)

const (
	ResultSuccess      = "SUCCESS"
	NameCryptoTransfer = "CRYPTOTRANSFER"
)

type TransactionsResponse struct {
	Transactions []Transaction `json:"transactions"`
}

type Transaction struct {
	TransactionId string `json:"transaction_id"`
	Result        string `json:"result"`
	Name          string `json:"name"`

	// Seconds with a fractional nanosecond part, e.g. "1700000000.000000001"
	ConsensusTimestamp string `json:"consensus_timestamp"`

	Transfers []Transfer `json:"transfers"`
}

type Transfer struct {
	Account string `json:"account"`

	// Tinybars. Kept as json.Number to avoid float64 precision loss
	// on large transfers.
	Amount json.Number `json:"amount"`
}

func (self *Transfer) Tinybars() (int64, error) {
	return self.Amount.Int64()
}

// ConsensusTime parses the consensus timestamp. Nanosecond precision is
// irrelevant to the freshness window, seconds are enough.
func (self *Transaction) ConsensusTime() (time.Time, error) {
	seconds, err := strconv.ParseFloat(self.ConsensusTimestamp, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(int64(seconds), 0), nil
}
