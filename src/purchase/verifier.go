package purchase

import (
	"context"
	"errors"
	"time"

	"github.com/hiveminds/marketplace/src/utils/config"
	"github.com/hiveminds/marketplace/src/utils/hedera"
	"github.com/hiveminds/marketplace/src/utils/logger"
	"github.com/hiveminds/marketplace/src/utils/mirror"
	"github.com/hiveminds/marketplace/src/utils/model"
	"github.com/hiveminds/marketplace/src/utils/monitoring"
	"github.com/hiveminds/marketplace/src/utils/task"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Verifier decides whether a claimed ledger transaction constitutes
// sufficient, fresh, single-use payment to the custodial account.
type Verifier struct {
	config *config.Config
	log    *logrus.Entry

	mirror          *mirror.Client
	db              *gorm.DB
	platformAccount string
	monitor         *monitoring.Monitor
}

func NewVerifier(config *config.Config) (self *Verifier) {
	self = new(Verifier)
	self.config = config
	self.log = logger.NewSublogger("verifier")
	return
}

func (self *Verifier) WithMirror(v *mirror.Client) *Verifier {
	self.mirror = v
	return self
}

func (self *Verifier) WithDB(v *gorm.DB) *Verifier {
	self.db = v
	return self
}

func (self *Verifier) WithPlatformAccount(accountId string) *Verifier {
	self.platformAccount = accountId
	return self
}

func (self *Verifier) WithMonitor(v *monitoring.Monitor) *Verifier {
	self.monitor = v
	return self
}

// Verify runs all checks and always returns a populated verdict,
// unexpected failures are folded into an invalid one.
func (self *Verifier) Verify(ctx context.Context, paymentTxId string, expectedAmountHbar float64, buyerWallet string) (verdict *Verdict) {
	verdict = new(Verdict)

	if self.monitor != nil {
		started := time.Now()
		defer func() {
			self.monitor.RecordVerifyDuration(time.Since(started))
		}()
	}

	txId, err := hedera.NormalizeTransactionId(paymentTxId)
	if err != nil {
		verdict.ErrorReason = "Invalid transaction id format"
		return
	}

	tx, err := self.fetchTransaction(ctx, txId)
	if err != nil {
		if errors.Is(err, mirror.ErrNotFound) {
			verdict.ErrorReason = "Transaction not found in mirror node"
		} else {
			if self.monitor != nil {
				self.monitor.Report.Purchaser.Errors.VerificationError.Inc()
			}
			self.log.WithError(err).WithField("tx_id", txId).Error("Failed to query mirror node")
			verdict.ErrorReason = "Verification error: " + err.Error()
		}
		return
	}

	verdict.TransactionExists = true

	if tx.Result != mirror.ResultSuccess {
		verdict.ErrorReason = "Transaction was not successful: " + tx.Result
		return
	}

	if tx.Name != mirror.NameCryptoTransfer {
		verdict.ErrorReason = "Transaction is not a crypto transfer"
		return
	}

	self.checkAmount(tx, expectedAmountHbar, verdict)
	self.checkFreshness(tx, verdict)

	err = self.checkUnused(ctx, txId, verdict)
	if err != nil {
		if self.monitor != nil {
			self.monitor.Report.Purchaser.Errors.VerificationError.Inc()
		}
		self.log.WithError(err).WithField("tx_id", txId).Error("Failed to check payment reuse")
		verdict.ErrorReason = "Verification error: " + err.Error()
		return
	}

	verdict.finalize()
	return
}

// fetchTransaction polls the mirror node until the transaction is
// indexed or the configured window passes. The indexer lags consensus,
// a just-submitted payment may legitimately 404 for a few seconds.
func (self *Verifier) fetchTransaction(ctx context.Context, txId string) (tx *mirror.Transaction, err error) {
	err = task.NewRetry().
		WithContext(ctx).
		WithMaxElapsedTime(self.config.Purchaser.VerifyMaxElapsedTime).
		WithMaxInterval(self.config.Purchaser.VerifyMaxInterval).
		WithOnError(func(err error, isDurationAcceptable bool) error {
			if errors.Is(err, mirror.ErrNotFound) {
				self.log.WithField("tx_id", txId).Debug("Transaction not indexed yet, retrying")
				return err
			}
			// Only not-found is worth waiting out
			return backoff.Permanent(err)
		}).
		Run(func() (err error) {
			tx, err = self.mirror.GetTransaction(ctx, txId)
			return
		})
	return
}

// checkAmount looks for the credit to the custodial account.
// Both checks are derived from the same transfer entry.
func (self *Verifier) checkAmount(tx *mirror.Transaction, expectedAmountHbar float64, verdict *Verdict) {
	expected := hedera.TinybarFromHbar(expectedAmountHbar)
	tolerance := self.config.Purchaser.AmountToleranceTinybars

	for i := range tx.Transfers {
		if tx.Transfers[i].Account != self.platformAccount {
			continue
		}

		got, err := tx.Transfers[i].Tinybars()
		if err != nil {
			self.log.WithError(err).Warn("Unparsable transfer amount")
			continue
		}

		diff := got - expected
		if diff < 0 {
			diff = -diff
		}

		if diff <= tolerance && got > 0 {
			verdict.AmountMatches = true
			verdict.RecipientCorrect = true
		} else {
			self.log.WithField("expected", expected).
				WithField("got", got).
				Error("Platform transfer amount mismatch")
		}
		return
	}
}

func (self *Verifier) checkFreshness(tx *mirror.Transaction, verdict *Verdict) {
	consensus, err := tx.ConsensusTime()
	if err != nil {
		self.log.WithError(err).Warn("Unparsable consensus timestamp")
		return
	}

	if time.Since(consensus) <= self.config.Purchaser.MaxPaymentAge {
		verdict.IsRecent = true
	}
}

// checkUnused is only a pre-check. The partial unique index on
// completed purchases is what actually serializes concurrent replays.
func (self *Verifier) checkUnused(ctx context.Context, txId string, verdict *Verdict) (err error) {
	var count int64
	err = self.db.WithContext(ctx).
		Model(&model.Purchase{}).
		Where("payment_tx_id = ? AND status = ?", txId, model.PurchaseStatusCompleted).
		Count(&count).
		Error
	if err != nil {
		return
	}

	if count == 0 {
		verdict.IsUnused = true
	}
	return
}
