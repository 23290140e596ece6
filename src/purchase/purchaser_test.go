package purchase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/hiveminds/marketplace/src/utils/config"
	"github.com/hiveminds/marketplace/src/utils/mirror"
	"github.com/hiveminds/marketplace/src/utils/model"

	"github.com/glebarez/sqlite"
	"github.com/lib/pq"
	"github.com/rs/xid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"testing"
)

func TestPurchaserTestSuite(t *testing.T) {
	suite.Run(t, new(PurchaserTestSuite))
}

const (
	buyerWallet  = "0.0.5678"
	sellerWallet = "0.0.4444"
	paymentTxId  = "0.0.5678@1700000000.000000001"
)

type PurchaserTestSuite struct {
	suite.Suite
	ctx    context.Context
	cancel context.CancelFunc

	config  *config.Config
	server  *httptest.Server
	handler http.HandlerFunc

	db        *gorm.DB
	operator  *fakeOperator
	purchaser *Purchaser
}

// fakeOperator records ledger writes instead of performing them
type fakeOperator struct {
	transfers []transferCall
	issues    int

	failIssue  bool
	onTransfer func()
}

type transferCall struct {
	toWallet   string
	amountHbar float64
}

func (self *fakeOperator) AccountId() string {
	return platformAccount
}

func (self *fakeOperator) Network() string {
	return "testnet"
}

func (self *fakeOperator) TransferHbar(ctx context.Context, toWallet string, amountHbar float64) (txId string, err error) {
	self.transfers = append(self.transfers, transferCall{toWallet, amountHbar})
	if self.onTransfer != nil {
		self.onTransfer()
	}
	return fmt.Sprintf("%s@1700000100.%09d", platformAccount, len(self.transfers)), nil
}

func (self *fakeOperator) CreateCredentialToken(ctx context.Context, datasetId int, title string) (tokenId string, err error) {
	return "0.0.7777", nil
}

func (self *fakeOperator) IssueAccessToken(ctx context.Context, tokenId, recipientWallet string) (mintTxId, transferTxId string, err error) {
	if self.failIssue {
		return "", "", errors.New("token mint failed")
	}
	self.issues++
	return platformAccount + "@1700000200.000000001", platformAccount + "@1700000300.000000001", nil
}

func (s *PurchaserTestSuite) SetupSuite() {
	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.handler(w, r)
	}))

	s.config = config.Default()
	s.config.Mirror.Url = s.server.URL
	s.config.Purchaser.VerifyMaxElapsedTime = 200 * time.Millisecond
	s.config.Purchaser.VerifyMaxInterval = 20 * time.Millisecond
}

func (s *PurchaserTestSuite) TearDownSuite() {
	s.server.Close()
	s.cancel()
}

// Each test gets its own in-memory store with the production schema
// shape, including the partial unique index concurrent replays race on
func (s *PurchaserTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	require.Nil(s.T(), err)

	sqlDB, err := db.DB()
	require.Nil(s.T(), err)
	// One connection so every statement sees the same memory database
	sqlDB.SetMaxOpenConns(1)

	statements := []string{
		`CREATE TABLE datasets (
			id integer PRIMARY KEY,
			title text NOT NULL,
			description text NOT NULL DEFAULT '',
			domain text NOT NULL DEFAULT '',
			data_source text NOT NULL DEFAULT '',
			collection_method text NOT NULL DEFAULT '',
			license text NOT NULL DEFAULT '',
			tags text NOT NULL DEFAULT '{}',
			price numeric NOT NULL DEFAULT 0,
			user_id text NOT NULL,
			owner_wallet text NOT NULL DEFAULT '',
			token_id text NOT NULL DEFAULT '',
			train_file_key text NOT NULL DEFAULT '',
			test_file_key text NOT NULL DEFAULT '',
			validation_file_key text NOT NULL DEFAULT '',
			additional_files_key text NOT NULL DEFAULT '',
			train_sample_key text NOT NULL DEFAULT '',
			test_sample_key text NOT NULL DEFAULT '',
			sample_metadata text,
			created_at datetime
		)`,
		`CREATE TABLE purchases (
			id text PRIMARY KEY,
			user_id text NOT NULL,
			dataset_id integer NOT NULL,
			buyer_wallet text NOT NULL,
			seller_wallet text NOT NULL,
			token_id text NOT NULL,
			price_paid numeric NOT NULL,
			payment_tx_id text NOT NULL,
			mint_tx_id text NOT NULL DEFAULT '',
			transfer_tx_id text NOT NULL DEFAULT '',
			status text NOT NULL DEFAULT 'completed',
			metadata text,
			created_at datetime,
			updated_at datetime
		)`,
		`CREATE UNIQUE INDEX purchases_payment_tx_id_completed
			ON purchases (payment_tx_id)
			WHERE status = 'completed'`,
	}
	for _, statement := range statements {
		require.Nil(s.T(), db.Exec(statement).Error)
	}

	s.db = db
	s.operator = new(fakeOperator)
	s.handler = s.paymentHandler(20_000_000_000)

	verifier := NewVerifier(s.config).
		WithMirror(mirror.NewClient(&s.config.Mirror, "testnet")).
		WithDB(db).
		WithPlatformAccount(platformAccount)

	s.purchaser = NewPurchaser(s.config).
		WithDB(db).
		WithOperator(s.operator).
		WithVerifier(verifier)
}

func (s *PurchaserTestSuite) paymentHandler(amount int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		payload, err := json.Marshal(map[string]any{"transactions": []any{map[string]any{
			"result":              "SUCCESS",
			"name":                "CRYPTOTRANSFER",
			"consensus_timestamp": fmt.Sprintf("%d.000000001", time.Now().Unix()),
			"transfers": []any{
				map[string]any{"account": buyerWallet, "amount": -amount},
				map[string]any{"account": platformAccount, "amount": amount},
			},
		}}})
		require.Nil(s.T(), err)
		w.Write(payload)
	}
}

func (s *PurchaserTestSuite) seedDataset(tokenId string) *model.Dataset {
	dataset := &model.Dataset{
		Title:       "Support tickets",
		Price:       200,
		Tags:        pq.StringArray{"nlp"},
		UserId:      "seller-1",
		OwnerWallet: sellerWallet,
		TokenId:     tokenId,
	}
	require.Nil(s.T(), s.db.Create(dataset).Error)
	return dataset
}

func (s *PurchaserTestSuite) countPurchases(status model.PurchaseStatus) (count int64) {
	err := s.db.Model(&model.Purchase{}).
		Where("status = ?", status).
		Count(&count).
		Error
	require.Nil(s.T(), err)
	return
}

func (s *PurchaserTestSuite) TestCompletedPurchase() {
	dataset := s.seedDataset("0.0.7777")

	purchase, verdict, err := s.purchaser.Purchase(s.ctx, dataset.ID, buyerWallet, paymentTxId, "buyer-1")
	require.Nil(s.T(), err)
	require.True(s.T(), verdict.IsValid)
	require.True(s.T(), verdict.IsUnused)

	require.Equal(s.T(), model.PurchaseStatusCompleted, purchase.Status)
	require.Equal(s.T(), "0.0.5678-1700000000-000000001", purchase.PaymentTxId)
	require.NotEmpty(s.T(), purchase.MintTxId)
	require.NotEmpty(s.T(), purchase.TransferTxId)
	require.Equal(s.T(), float64(10), purchase.Metadata.PlatformFee)
	require.Equal(s.T(), float64(190), purchase.Metadata.SellerAmount)

	require.Len(s.T(), s.operator.transfers, 1)
	require.Equal(s.T(), sellerWallet, s.operator.transfers[0].toWallet)
	require.Equal(s.T(), float64(190), s.operator.transfers[0].amountHbar)

	require.Equal(s.T(), int64(1), s.countPurchases(model.PurchaseStatusCompleted))
}

func (s *PurchaserTestSuite) TestDuplicatePaymentRejected() {
	dataset := s.seedDataset("0.0.7777")

	_, _, err := s.purchaser.Purchase(s.ctx, dataset.ID, buyerWallet, paymentTxId, "buyer-1")
	require.Nil(s.T(), err)

	// Replaying the same payment must not pay the seller again or add
	// a second completed row
	purchase, verdict, err := s.purchaser.Purchase(s.ctx, dataset.ID, buyerWallet, paymentTxId, "buyer-2")
	var rejected *RejectedError
	require.True(s.T(), errors.As(err, &rejected))
	require.Nil(s.T(), purchase)
	require.False(s.T(), verdict.IsUnused)
	require.Equal(s.T(), "Verification failed: transaction already used", verdict.ErrorReason)

	require.Len(s.T(), s.operator.transfers, 1)
	require.Equal(s.T(), int64(1), s.countPurchases(model.PurchaseStatusCompleted))
}

func (s *PurchaserTestSuite) TestSdkFormAndMirrorFormAreOnePayment() {
	dataset := s.seedDataset("0.0.7777")

	_, _, err := s.purchaser.Purchase(s.ctx, dataset.ID, buyerWallet, paymentTxId, "buyer-1")
	require.Nil(s.T(), err)

	// The mirror spelling of the same transaction id is still a replay
	_, _, err = s.purchaser.Purchase(s.ctx, dataset.ID, buyerWallet, "0.0.5678-1700000000-000000001", "buyer-2")
	var rejected *RejectedError
	require.True(s.T(), errors.As(err, &rejected))

	require.Len(s.T(), s.operator.transfers, 1)
	require.Equal(s.T(), int64(1), s.countPurchases(model.PurchaseStatusCompleted))
}

func (s *PurchaserTestSuite) TestUnverifiedPaymentLeavesNoTrace() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}
	dataset := s.seedDataset("0.0.7777")

	purchase, verdict, err := s.purchaser.Purchase(s.ctx, dataset.ID, buyerWallet, paymentTxId, "buyer-1")
	var rejected *RejectedError
	require.True(s.T(), errors.As(err, &rejected))
	require.Nil(s.T(), purchase)
	require.False(s.T(), verdict.TransactionExists)

	// Nothing moved on the ledger, nothing in the store
	require.Empty(s.T(), s.operator.transfers)
	require.Equal(s.T(), 0, s.operator.issues)
	require.Equal(s.T(), int64(0), s.countPurchases(model.PurchaseStatusCompleted))
	require.Equal(s.T(), int64(0), s.countPurchases(model.PurchaseStatusFailed))
}

func (s *PurchaserTestSuite) TestIssueFailureRecordsFailedRow() {
	s.operator.failIssue = true
	dataset := s.seedDataset("0.0.7777")

	purchase, _, err := s.purchaser.Purchase(s.ctx, dataset.ID, buyerWallet, paymentTxId, "buyer-1")
	var ledger *LedgerError
	require.True(s.T(), errors.As(err, &ledger))
	require.Equal(s.T(), StepIssue, ledger.Step)
	require.Nil(s.T(), purchase)

	// The payout went through and is recorded for reconciliation
	require.Len(s.T(), s.operator.transfers, 1)
	require.Equal(s.T(), int64(0), s.countPurchases(model.PurchaseStatusCompleted))

	var row model.Purchase
	err = s.db.Where("status = ?", model.PurchaseStatusFailed).First(&row).Error
	require.Nil(s.T(), err)
	require.Equal(s.T(), "0.0.5678-1700000000-000000001", row.PaymentTxId)
	require.Equal(s.T(), StepIssue, row.Metadata.FailedStep)
}

func (s *PurchaserTestSuite) TestConcurrentReplayHitsUniqueIndex() {
	dataset := s.seedDataset("0.0.7777")

	// A competing attempt completes with the same payment id after the
	// reuse pre-check has already passed
	s.operator.onTransfer = func() {
		row := &model.Purchase{
			ID:          xid.New().String(),
			UserId:      "buyer-2",
			DatasetId:   dataset.ID,
			BuyerWallet: buyerWallet,
			PaymentTxId: "0.0.5678-1700000000-000000001",
			Status:      model.PurchaseStatusCompleted,
		}
		require.Nil(s.T(), s.db.Create(row).Error)
	}

	purchase, verdict, err := s.purchaser.Purchase(s.ctx, dataset.ID, buyerWallet, paymentTxId, "buyer-1")
	var rejected *RejectedError
	require.True(s.T(), errors.As(err, &rejected))
	require.Nil(s.T(), purchase)
	require.False(s.T(), verdict.IsUnused)
	require.False(s.T(), verdict.IsValid)

	require.Equal(s.T(), int64(1), s.countPurchases(model.PurchaseStatusCompleted))
}

func (s *PurchaserTestSuite) TestMissingCredentialToken() {
	dataset := s.seedDataset("")

	purchase, verdict, err := s.purchaser.Purchase(s.ctx, dataset.ID, buyerWallet, paymentTxId, "buyer-1")
	require.True(s.T(), errors.Is(err, ErrNoCredentialToken))
	require.Nil(s.T(), purchase)
	require.Nil(s.T(), verdict)

	// Refused before verification, no money moved
	require.Empty(s.T(), s.operator.transfers)
	require.Equal(s.T(), 0, s.operator.issues)
	require.Equal(s.T(), int64(0), s.countPurchases(model.PurchaseStatusCompleted))
}

func (s *PurchaserTestSuite) TestDatasetNotFound() {
	_, _, err := s.purchaser.Purchase(s.ctx, 999, buyerWallet, paymentTxId, "buyer-1")
	require.True(s.T(), errors.Is(err, ErrDatasetNotFound))
	require.Empty(s.T(), s.operator.transfers)
}

func TestFeeSplit(t *testing.T) {
	purchaser := NewPurchaser(config.Default())

	sellerAmount, platformFee := purchaser.split(200)
	require.Equal(t, float64(190), sellerAmount)
	require.Equal(t, float64(10), platformFee)

	sellerAmount, platformFee = purchaser.split(0)
	require.Equal(t, float64(0), sellerAmount)
	require.Equal(t, float64(0), platformFee)
}

func TestFeeSplitConfigurableShare(t *testing.T) {
	conf := config.Default()
	conf.Purchaser.SellerShare = 0.8
	purchaser := NewPurchaser(conf)

	sellerAmount, platformFee := purchaser.split(100)
	require.Equal(t, float64(80), sellerAmount)
	require.Equal(t, float64(20), platformFee)
}
