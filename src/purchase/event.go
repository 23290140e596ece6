package purchase

import (
	"encoding/json"
	"time"

	"github.com/hiveminds/marketplace/src/utils/model"
)

// Event notifies downstream consumers about a completed purchase
type Event struct {
	PurchaseId  string    `json:"purchase_id"`
	DatasetId   int       `json:"dataset_id"`
	UserId      string    `json:"user_id"`
	BuyerWallet string    `json:"buyer_wallet"`
	PricePaid   float64   `json:"price_paid"`
	Network     string    `json:"network"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewEvent(p *model.Purchase) *Event {
	return &Event{
		PurchaseId:  p.ID,
		DatasetId:   p.DatasetId,
		UserId:      p.UserId,
		BuyerWallet: p.BuyerWallet,
		PricePaid:   p.PricePaid,
		Network:     p.Metadata.Network,
		CreatedAt:   p.CreatedAt,
	}
}

// Implements encoding.BinaryMarshaler for the Redis publisher
func (self *Event) MarshalBinary() ([]byte, error) {
	return json.Marshal(self)
}
