package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

const TablePurchases = "purchases"

type PurchaseStatus string

const (
	PurchaseStatusPending   PurchaseStatus = "pending"
	PurchaseStatusCompleted PurchaseStatus = "completed"
	PurchaseStatusFailed    PurchaseStatus = "failed"
	PurchaseStatusRefunded  PurchaseStatus = "refunded"
)

type PurchaseMetadata struct {
	PlatformFee  float64 `json:"platform_fee"`
	SellerAmount float64 `json:"seller_amount"`
	Network      string  `json:"network"`

	// Which irreversible steps went through, recorded on failed rows
	// for manual reconciliation
	FailedStep string `json:"failed_step,omitempty"`
}

func (self PurchaseMetadata) Value() (driver.Value, error) {
	out, err := json.Marshal(self)
	if err != nil {
		return nil, err
	}
	return string(out), nil
}

func (self *PurchaseMetadata) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*self = PurchaseMetadata{}
		return nil
	case []byte:
		return json.Unmarshal(v, self)
	case string:
		return json.Unmarshal([]byte(v), self)
	default:
		return fmt.Errorf("unsupported metadata source type %T", value)
	}
}

// Purchase is the durable record of one acquisition.
// At most one completed row may reference a given PaymentTxId,
// enforced with a partial unique index.
type Purchase struct {
	ID string `gorm:"primaryKey" json:"id"`

	UserId       string `json:"user_id"`
	DatasetId    int    `json:"dataset_id"`
	BuyerWallet  string `json:"buyer_wallet"`
	SellerWallet string `json:"seller_wallet"`
	TokenId      string `json:"token_id"`

	PricePaid float64 `gorm:"type:numeric(18,8)" json:"price_paid"`

	PaymentTxId  string `json:"payment_tx_id"`
	MintTxId     string `json:"mint_tx_id"`
	TransferTxId string `json:"transfer_tx_id"`

	Status PurchaseStatus `json:"status"`

	Metadata PurchaseMetadata `gorm:"type:jsonb" json:"metadata"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Purchase) TableName() string {
	return TablePurchases
}
