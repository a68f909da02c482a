package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/mold"
	"github.com/aretw0/mold/internal/config"
	"github.com/aretw0/mold/internal/sample"
	"github.com/aretw0/mold/pkg/adapters/redis"
)

// NewMold builds the Mold behind every command: the sample types, the rule
// file and the message overrides stored in Redis, when configured.
func NewMold(ctx context.Context, cfg config.Config, logger *slog.Logger, reg prometheus.Registerer) (*mold.Mold, error) {
	tag, err := cfg.Tag()
	if err != nil {
		return nil, err
	}
	opts := []mold.Option{
		mold.WithLogger(logger),
		mold.WithLocale(tag),
		mold.WithDefaults(cfg.Serialization()),
		mold.WithRules(sample.Register),
	}
	if reg != nil {
		opts = append(opts, mold.WithMetrics(reg))
	}
	if cfg.Rules != "" {
		f, err := os.Open(cfg.Rules)
		if err != nil {
			return nil, errors.Wrap(err, "failed to open rule file")
		}
		defer f.Close()
		opts = append(opts, mold.WithRuleFile(f))
	}

	m, err := mold.New(opts...)
	if err != nil {
		return nil, err
	}

	if cfg.Redis.Addr != "" {
		src := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redis.WithPrefix(cfg.Redis.Prefix),
			redis.WithLogger(logger),
		)
		defer src.Close()
		n, err := src.LoadInto(ctx, m.Messages())
		if err != nil {
			return nil, errors.Wrap(err, "failed to load messages from redis")
		}
		logger.Info("Message overrides loaded", "locales", n, "addr", cfg.Redis.Addr)
	}
	return m, nil
}
