package config

import (
	"time"

	"github.com/spf13/viper"
)

type Purchaser struct {
	// Share of the price forwarded to the seller, the rest stays
	// in the custodial account
	SellerShare float64

	// Acceptable difference between the expected and the received
	// payment, in tinybars
	AmountToleranceTinybars int64

	// Payments older than this are rejected
	MaxPaymentAge time.Duration

	// Backoff configuration of mirror node polling.
	// The indexer lags consensus, so not-found responses are retried
	// until VerifyMaxElapsedTime passes.
	VerifyMaxElapsedTime time.Duration
	VerifyMaxInterval    time.Duration
}

func setPurchaserDefaults() {
	viper.SetDefault("Purchaser.SellerShare", "0.95")
	viper.SetDefault("Purchaser.AmountToleranceTinybars", "1")
	viper.SetDefault("Purchaser.MaxPaymentAge", "24h")
	viper.SetDefault("Purchaser.VerifyMaxElapsedTime", "15s")
	viper.SetDefault("Purchaser.VerifyMaxInterval", "4s")
}
