package config

import (
	"time"

	"github.com/spf13/viper"
)

type Mirror struct {
	// Mirror node REST base url. Empty means derived from Hedera.Network.
	Url string

	// Single request timeout
	RequestTimeout time.Duration

	// Rate limiting of mirror node requests
	LimiterInterval time.Duration
	LimiterBurst    int
}

func setMirrorDefaults() {
	viper.SetDefault("Mirror.Url", "")
	viper.SetDefault("Mirror.RequestTimeout", "30s")
	viper.SetDefault("Mirror.LimiterInterval", "200ms")
	viper.SetDefault("Mirror.LimiterBurst", "5")
}
