package purchase

import "strings"

// Verdict is the structured result of payment verification.
// It is produced fresh per purchase attempt and never persisted.
type Verdict struct {
	IsValid bool `json:"isValid"`

	TransactionExists bool `json:"transactionExists"`
	AmountMatches     bool `json:"amountMatches"`
	RecipientCorrect  bool `json:"recipientCorrect"`
	IsRecent          bool `json:"isRecent"`
	IsUnused          bool `json:"isUnused"`

	ErrorReason string `json:"errorReason,omitempty"`
}

// finalize computes the conjunction and synthesizes a reason when no
// earlier short-circuit set one
func (self *Verdict) finalize() {
	self.IsValid = self.TransactionExists &&
		self.AmountMatches &&
		self.RecipientCorrect &&
		self.IsRecent &&
		self.IsUnused

	if self.IsValid || self.ErrorReason != "" {
		return
	}

	var failedChecks []string
	if !self.AmountMatches {
		failedChecks = append(failedChecks, "amount mismatch")
	}
	if !self.RecipientCorrect {
		failedChecks = append(failedChecks, "wrong recipient")
	}
	if !self.IsRecent {
		failedChecks = append(failedChecks, "transaction too old")
	}
	if !self.IsUnused {
		failedChecks = append(failedChecks, "transaction already used")
	}
	self.ErrorReason = "Verification failed: " + strings.Join(failedChecks, ", ")
}
