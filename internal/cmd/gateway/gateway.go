// Package gateway wires configuration for the zenith-gateway command.
package gateway

import (
	"context"
	"flag"
	"time"

	platformcmd "github.com/blizx/zenith/internal/platform/cmd"
	"github.com/blizx/zenith/internal/services/gateway/app"
	"github.com/blizx/zenith/internal/services/gateway/token"
)

// Config holds gateway command configuration.
type Config struct {
	Port        int           `env:"ZENITH_GATEWAY_PORT" envDefault:"8090"`
	StoragePath string        `env:"ZENITH_GATEWAY_STORAGE_PATH" envDefault:"zenith.db"`
	TokenSecret string        `env:"ZENITH_GATEWAY_TOKEN_SECRET"`
	TokenTTL    time.Duration `env:"ZENITH_GATEWAY_TOKEN_TTL"`
}

// ParseConfig loads env defaults and then flag overrides into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := platformcmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = token.DefaultTTL
	}

	fs.IntVar(&cfg.Port, "port", cfg.Port, "The gateway HTTP port")
	fs.StringVar(&cfg.StoragePath, "storage", cfg.StoragePath, "Path to the SQLite database file")
	fs.StringVar(&cfg.TokenSecret, "token-secret", cfg.TokenSecret, "HS256 signing secret for access tokens")
	fs.DurationVar(&cfg.TokenTTL, "token-ttl", cfg.TokenTTL, "Access token lifetime")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the gateway server.
func Run(ctx context.Context, cfg Config) error {
	return platformcmd.RunWithTelemetry(ctx, platformcmd.ServiceGateway, func(ctx context.Context) error {
		return app.Run(ctx, app.Config{
			Port:        cfg.Port,
			StoragePath: cfg.StoragePath,
			TokenSecret: cfg.TokenSecret,
			TokenTTL:    cfg.TokenTTL,
		})
	})
}
