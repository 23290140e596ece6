package purchase

import (
	"context"
	"errors"
	"strings"

	"github.com/hiveminds/marketplace/src/utils/config"
	"github.com/hiveminds/marketplace/src/utils/hedera"
	"github.com/hiveminds/marketplace/src/utils/logger"
	"github.com/hiveminds/marketplace/src/utils/model"
	"github.com/hiveminds/marketplace/src/utils/monitoring"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Purchaser sequences a dataset acquisition: verify the payment, pay
// the seller, issue the access token, persist the purchase record.
// The ledger steps are irreversible, there is no compensation on
// partial failure. Failures past the payout are recorded for manual
// reconciliation instead.
type Purchaser struct {
	config *config.Config
	log    *logrus.Entry

	db       *gorm.DB
	operator hedera.Operator
	verifier *Verifier
	monitor  *monitoring.Monitor

	// Optional channel completed purchases are announced on
	events chan *Event
}

func NewPurchaser(config *config.Config) (self *Purchaser) {
	self = new(Purchaser)
	self.config = config
	self.log = logger.NewSublogger("purchaser")
	return
}

func (self *Purchaser) WithDB(v *gorm.DB) *Purchaser {
	self.db = v
	return self
}

func (self *Purchaser) WithOperator(v hedera.Operator) *Purchaser {
	self.operator = v
	return self
}

func (self *Purchaser) WithVerifier(v *Verifier) *Purchaser {
	self.verifier = v
	return self
}

func (self *Purchaser) WithMonitor(v *monitoring.Monitor) *Purchaser {
	self.monitor = v
	return self
}

func (self *Purchaser) WithEventsChannel(v chan *Event) *Purchaser {
	self.events = v
	return self
}

// Purchase runs the strict sequence. The verdict is returned even on
// failure so the caller can tell a not-yet-indexed payment from a bad
// one.
func (self *Purchaser) Purchase(ctx context.Context, datasetId int, buyerWallet, paymentTxId, userId string) (purchase *model.Purchase, verdict *Verdict, err error) {
	// 1. Dataset lookup, no side effects yet
	var dataset model.Dataset
	err = self.db.WithContext(ctx).First(&dataset, datasetId).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = ErrDatasetNotFound
		return
	}
	if err != nil {
		return
	}

	// A dataset without its credential token cannot complete step 4,
	// refuse before any money moves
	if dataset.TokenId == "" {
		self.log.WithField("dataset_id", dataset.ID).
			Error("Dataset has no credential token, refusing purchase")
		err = ErrNoCredentialToken
		return
	}

	// 2. Payment verification, still no side effects
	verdict = self.verifier.Verify(ctx, paymentTxId, dataset.Price, buyerWallet)
	if !verdict.IsValid {
		if self.monitor != nil {
			self.monitor.Report.Purchaser.State.PaymentsRejected.Inc()
		}
		err = &RejectedError{Verdict: verdict}
		return
	}

	// Purchases are keyed by the normalized id so the same payment
	// cannot be replayed under its other encoding
	normalizedTxId, _ := hedera.NormalizeTransactionId(paymentTxId)

	sellerAmount, platformFee := self.split(dataset.Price)

	// 3. Pay the seller's share, the fee stays in the custodial account
	payoutTxId, err := self.operator.TransferHbar(ctx, dataset.OwnerWallet, sellerAmount)
	if err != nil {
		if self.monitor != nil {
			self.monitor.Report.Purchaser.Errors.PayoutError.Inc()
		}
		self.log.WithError(err).
			WithField("dataset_id", dataset.ID).
			WithField("payment_tx_id", normalizedTxId).
			Error("Seller payout failed")
		err = &LedgerError{Step: StepPayout, Err: err}
		return
	}

	// 4. Mint the access token and transfer it to the buyer
	mintTxId, transferTxId, err := self.operator.IssueAccessToken(ctx, dataset.TokenId, buyerWallet)
	if err != nil {
		if self.monitor != nil {
			self.monitor.Report.Purchaser.Errors.IssueError.Inc()
		}
		// The seller is already paid and that cannot be undone
		self.log.WithError(err).
			WithField("dataset_id", dataset.ID).
			WithField("payment_tx_id", normalizedTxId).
			WithField("payout_tx_id", payoutTxId).
			Error("Token issue failed after seller payout, needs manual reconciliation")
		self.recordFailure(ctx, &dataset, buyerWallet, normalizedTxId, userId, sellerAmount, platformFee)
		err = &LedgerError{Step: StepIssue, Err: err}
		return
	}

	if self.monitor != nil {
		self.monitor.Report.Purchaser.State.TokensIssued.Inc()
	}

	// 5. Persist the completed purchase
	purchase = &model.Purchase{
		ID:           xid.New().String(),
		UserId:       userId,
		DatasetId:    dataset.ID,
		BuyerWallet:  buyerWallet,
		SellerWallet: dataset.OwnerWallet,
		TokenId:      dataset.TokenId,
		PricePaid:    dataset.Price,
		PaymentTxId:  normalizedTxId,
		MintTxId:     mintTxId,
		TransferTxId: transferTxId,
		Status:       model.PurchaseStatusCompleted,
		Metadata: model.PurchaseMetadata{
			PlatformFee:  platformFee,
			SellerAmount: sellerAmount,
			Network:      self.operator.Network(),
		},
	}

	err = self.db.WithContext(ctx).Create(purchase).Error
	if err != nil {
		purchase = nil
		if isUniqueViolation(err) {
			// A concurrent attempt completed with the same payment id
			// between the pre-check and this insert. The ledger writes
			// above already happened.
			if self.monitor != nil {
				self.monitor.Report.Purchaser.State.PaymentsRejected.Inc()
			}
			self.log.WithField("payment_tx_id", normalizedTxId).
				Error("Duplicate payment detected after ledger operations, needs manual reconciliation")
			verdict.IsUnused = false
			verdict.IsValid = false
			verdict.ErrorReason = "Verification failed: transaction already used"
			err = &RejectedError{Verdict: verdict}
			return
		}

		if self.monitor != nil {
			self.monitor.Report.Purchaser.Errors.DbAfterLedgerError.Inc()
		}
		self.log.WithError(err).
			WithField("payment_tx_id", normalizedTxId).
			WithField("mint_tx_id", mintTxId).
			WithField("transfer_tx_id", transferTxId).
			Error("Failed to record purchase after successful ledger operations, needs manual backfill")
		err = &PersistenceError{Err: err}
		return
	}

	if self.monitor != nil {
		self.monitor.Report.Purchaser.State.PurchasesCompleted.Inc()
	}

	self.emit(purchase)

	return
}

// split divides the price between the seller and the platform
func (self *Purchaser) split(price float64) (sellerAmount, platformFee float64) {
	sellerAmount = price * self.config.Purchaser.SellerShare
	platformFee = price - sellerAmount
	return
}

// recordFailure keeps a failed row so operators can find purchases
// where the seller got paid but the buyer got nothing. Best effort.
func (self *Purchaser) recordFailure(ctx context.Context, dataset *model.Dataset, buyerWallet, paymentTxId, userId string, sellerAmount, platformFee float64) {
	row := &model.Purchase{
		ID:           xid.New().String(),
		UserId:       userId,
		DatasetId:    dataset.ID,
		BuyerWallet:  buyerWallet,
		SellerWallet: dataset.OwnerWallet,
		TokenId:      dataset.TokenId,
		PricePaid:    dataset.Price,
		PaymentTxId:  paymentTxId,
		Status:       model.PurchaseStatusFailed,
		Metadata: model.PurchaseMetadata{
			PlatformFee:  platformFee,
			SellerAmount: sellerAmount,
			Network:      self.operator.Network(),
			FailedStep:   StepIssue,
		},
	}

	err := self.db.WithContext(ctx).Create(row).Error
	if err != nil {
		self.log.WithError(err).
			WithField("payment_tx_id", paymentTxId).
			Error("Failed to record failed purchase")
	}
}

func (self *Purchaser) emit(p *model.Purchase) {
	if self.events == nil {
		return
	}

	select {
	case self.events <- NewEvent(p):
	default:
		self.log.WithField("purchase_id", p.ID).Warn("Events channel full, dropping event")
	}
}

// Postgres and sqlite spell the violation differently
func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "duplicate key value") ||
		strings.Contains(err.Error(), "UNIQUE constraint failed")
}
