package config

import (
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"testing"
)

func TestConfigTestSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

type ConfigTestSuite struct {
	suite.Suite
}

func (s *ConfigTestSuite) TestDefaults() {
	config := Default()
	require.NotNil(s.T(), config)

	require.Equal(s.T(), "0.0.0.0:4000", config.Server.ListenAddress)
	require.Equal(s.T(), "testnet", config.Hedera.Network)
	require.Equal(s.T(), 0.95, config.Purchaser.SellerShare)
	require.Equal(s.T(), int64(1), config.Purchaser.AmountToleranceTinybars)
	require.Equal(s.T(), 24*time.Hour, config.Purchaser.MaxPaymentAge)
	require.False(s.T(), config.Redis.Enabled)
}

func (s *ConfigTestSuite) TestEnvOverride() {
	s.T().Setenv("MARKETPLACE_PURCHASER_SELLER_SHARE", "0.9")
	s.T().Setenv("MARKETPLACE_HEDERA_NETWORK", "mainnet")

	config, err := Load("")
	require.Nil(s.T(), err)
	require.Equal(s.T(), 0.9, config.Purchaser.SellerShare)
	require.Equal(s.T(), "mainnet", config.Hedera.Network)
}
