package settings

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/trongle278/seasondecorbe-sub000/pkg/errors"
	"github.com/trongle278/seasondecorbe-sub000/pkg/logger"
)

const commissionRateKey = "commission_rate"

// Service exposes the platform settings the booking/ledger flows consume.
type Service interface {
	CommissionRate(ctx context.Context) (decimal.Decimal, error)
}

// Cache is the subset of the redis client the provider uses. A nil cache
// degrades to live reads.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	SettingKey(name string) string
}

type service struct {
	repo     Repository
	cache    Cache
	cacheTTL time.Duration
	logg     *logger.Logger
}

// NewService wires a settings provider with an optional read-through cache.
func NewService(repo Repository, cache Cache, cacheTTL time.Duration, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("settings repository required")
	}
	return &service{repo: repo, cache: cache, cacheTTL: cacheTTL, logg: logg}, nil
}

func (s *service) CommissionRate(ctx context.Context) (decimal.Decimal, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, s.cache.SettingKey(commissionRateKey)); err == nil {
			if rate, parseErr := parseRate(raw); parseErr == nil {
				return rate, nil
			}
		}
	}

	raw, err := s.repo.Get(ctx, commissionRateKey)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load commission rate")
	}
	rate, err := parseRate(raw)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "parse commission rate")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, s.cache.SettingKey(commissionRateKey), rate.String(), s.cacheTTL); err != nil && s.logg != nil {
			s.logg.Warn(ctx, "commission rate cache write failed")
		}
	}
	return rate, nil
}

func parseRate(raw string) (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, err
	}
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return decimal.Zero, fmt.Errorf("commission rate %s out of range [0,1)", raw)
	}
	return rate, nil
}
