package request

type PurchaseDataset struct {
	BuyerWallet string `json:"buyerWallet" binding:"required"`
	PaymentTxId string `json:"paymentTxId" binding:"required"`
}
