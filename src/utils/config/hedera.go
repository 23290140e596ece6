package config

import (
	"time"

	"github.com/spf13/viper"
)

type Hedera struct {
	// mainnet, testnet or previewnet
	Network string

	// Platform custodial account, collects payments and holds supply keys
	OperatorId  string
	OperatorKey string

	// Deadline for a single consensus node gRPC call
	GrpcDeadline time.Duration
}

func setHederaDefaults() {
	viper.SetDefault("Hedera.Network", "testnet")
	viper.SetDefault("Hedera.OperatorId", "")
	viper.SetDefault("Hedera.OperatorKey", "")
	viper.SetDefault("Hedera.GrpcDeadline", "30s")
}
