package config

import (
	"time"

	"github.com/spf13/viper"
)

type Server struct {
	// REST API address
	ListenAddress string

	// Maximum time a single request may take
	RequestTimeout time.Duration

	// Secret used to verify access tokens issued by the identity provider
	JWTSecret string

	// Public dataset listing cache
	DatasetCacheTTL             time.Duration
	DatasetCacheCleanupInterval time.Duration

	// Expose pprof endpoints
	EnablePprof bool
}

func setServerDefaults() {
	viper.SetDefault("Server.ListenAddress", "0.0.0.0:4000")
	viper.SetDefault("Server.RequestTimeout", "120s")
	viper.SetDefault("Server.JWTSecret", "")
	viper.SetDefault("Server.DatasetCacheTTL", "1m")
	viper.SetDefault("Server.DatasetCacheCleanupInterval", "5m")
	viper.SetDefault("Server.EnablePprof", "false")
}
