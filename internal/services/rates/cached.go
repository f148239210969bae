package rates

import (
	"context"
	"time"

	"ledgerpay/internal/repositories/cache"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Cache is the subset of the redis cache used for rates.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// CachedProvider keeps rates of another provider for a while. Cache
// failures fall through to the wrapped provider.
type CachedProvider struct {
	next  Provider
	cache Cache
	ttl   time.Duration
	log   *zap.Logger
}

func NewCachedProvider(next Provider, c Cache, ttl time.Duration, log *zap.Logger) *CachedProvider {
	if log == nil {
		log = zap.NewNop()
	}
	return &CachedProvider{
		next:  next,
		cache: c,
		ttl:   ttl,
		log:   log,
	}
}

func (p *CachedProvider) Rate(ctx context.Context, base, target string) (decimal.Decimal, error) {
	base, err := Normalize(base)
	if err != nil {
		return decimal.Zero, err
	}
	target, err = Normalize(target)
	if err != nil {
		return decimal.Zero, err
	}
	if base == target {
		return decimal.NewFromInt(1), nil
	}

	key := cache.GenerateKey("rate", "pair", base+"-"+target)
	var rate decimal.Decimal
	found, err := p.cache.Get(ctx, key, &rate)
	if err != nil {
		p.log.Warn("rate cache read failed", zap.String("key", key), zap.Error(err))
	}
	if found {
		return rate, nil
	}

	rate, err = p.next.Rate(ctx, base, target)
	if err != nil {
		return decimal.Zero, err
	}
	if err := p.cache.SetWithTTL(ctx, key, rate, p.ttl); err != nil {
		p.log.Warn("rate cache write failed", zap.String("key", key), zap.Error(err))
	}
	return rate, nil
}

var _ Provider = (*CachedProvider)(nil)
