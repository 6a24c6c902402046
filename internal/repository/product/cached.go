package product

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type cachedRepo struct {
	inner  Repository
	client redis.Cmdable
	key    string
	ttl    time.Duration
	logger logrus.FieldLogger
}

// NewCached serves listings from redis and falls back to inner on a miss.
// Redis errors are logged and never fail a load. Warnings are not cached.
func NewCached(inner Repository, client redis.Cmdable, ttl time.Duration, logger logrus.FieldLogger) Repository {
	return &cachedRepo{
		inner:  inner,
		client: client,
		key:    "storefront:catalog:" + inner.Name(),
		ttl:    ttl,
		logger: logger.WithField("cache_key", "storefront:catalog:"+inner.Name()),
	}
}

func (r *cachedRepo) Name() string {
	return r.inner.Name()
}

func (r *cachedRepo) List(ctx context.Context) (Listing, error) {
	raw, err := r.client.Get(ctx, r.key).Bytes()
	switch {
	case err == nil:
		var listing Listing
		uerr := json.Unmarshal(raw, &listing.Products)
		if uerr == nil {
			r.logger.WithField("count", len(listing.Products)).Debug("catalog cache hit")
			return listing, nil
		}
		r.logger.WithError(uerr).Warn("catalog cache entry unreadable")
	case errors.Is(err, redis.Nil):
	default:
		r.logger.WithError(err).Warn("catalog cache get failed")
	}

	listing, err := r.inner.List(ctx)
	if err != nil {
		return Listing{}, err
	}

	payload, err := json.Marshal(listing.Products)
	if err != nil {
		r.logger.WithError(err).Warn("catalog cache encode failed")
		return listing, nil
	}
	if err := r.client.Set(ctx, r.key, payload, r.ttl).Err(); err != nil {
		r.logger.WithError(err).Warn("catalog cache set failed")
	}
	return listing, nil
}

// Invalidate drops the cached listing so the next List reaches the source.
func (r *cachedRepo) Invalidate(ctx context.Context) error {
	return r.client.Del(ctx, r.key).Err()
}
