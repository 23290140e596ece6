package common

import (
	"context"
	"errors"

	"github.com/hiveminds/marketplace/src/utils/config"
)

type contextKey int

const configContextKey contextKey = iota

var ErrConfigNotInContext = errors.New("config not present in the context")

func SetConfig(ctx context.Context, config *config.Config) context.Context {
	return context.WithValue(ctx, configContextKey, config)
}

func GetConfig(ctx context.Context) (cfg *config.Config, err error) {
	cfg, ok := ctx.Value(configContextKey).(*config.Config)
	if !ok {
		err = ErrConfigNotInContext
	}
	return
}
