package repository

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vibast-solutions/ms-go-reservations/app/entity"
)

// CachedPropertyRepository is a cache-aside decorator over a PropertyStore.
// Reads here are advisory only: every state transition is still decided by
// the primary store's conditional update, so a stale cached status can cost a
// round trip but never a double hold.
type CachedPropertyRepository struct {
	primary     PropertyStore
	redisClient *redis.Client
	ttl         time.Duration
}

func NewCachedPropertyRepository(primary PropertyStore, redisClient *redis.Client, cacheTTL time.Duration) *CachedPropertyRepository {
	return &CachedPropertyRepository{
		primary:     primary,
		redisClient: redisClient,
		ttl:         cacheTTL,
	}
}

func (r *CachedPropertyRepository) FindByID(ctx context.Context, id uint64) (*entity.Property, error) {
	cacheKey := propertyCacheKey(id)

	cached, err := r.redisClient.Get(ctx, cacheKey).Bytes()
	if err == nil {
		var property entity.Property
		if err := json.Unmarshal(cached, &property); err == nil {
			return &property, nil
		}
	}

	property, err := r.primary.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if property != nil {
		if data, err := json.Marshal(property); err == nil {
			r.redisClient.Set(ctx, cacheKey, data, r.ttl)
		}
	}

	return property, nil
}

func (r *CachedPropertyRepository) Upsert(ctx context.Context, property *entity.Property) error {
	defer r.redisClient.Del(ctx, propertyCacheKey(property.ID))
	return r.primary.Upsert(ctx, property)
}

func (r *CachedPropertyRepository) Reserve(ctx context.Context, id uint64, buyerID string, until time.Time, now time.Time) (bool, error) {
	defer r.redisClient.Del(ctx, propertyCacheKey(id))
	return r.primary.Reserve(ctx, id, buyerID, until, now)
}

func (r *CachedPropertyRepository) MarkPaid(ctx context.Context, id uint64, buyerID string, now time.Time) (bool, error) {
	defer r.redisClient.Del(ctx, propertyCacheKey(id))
	return r.primary.MarkPaid(ctx, id, buyerID, now)
}

func (r *CachedPropertyRepository) Release(ctx context.Context, id uint64, newStatus int32, now time.Time) (bool, error) {
	defer r.redisClient.Del(ctx, propertyCacheKey(id))
	return r.primary.Release(ctx, id, newStatus, now)
}

func (r *CachedPropertyRepository) ReleaseHold(ctx context.Context, id uint64, buyerID string, newStatus int32, now time.Time) (bool, error) {
	defer r.redisClient.Del(ctx, propertyCacheKey(id))
	return r.primary.ReleaseHold(ctx, id, buyerID, newStatus, now)
}

// ExpireStaleHolds cannot know which rows it touched, so the whole property
// cache namespace relies on the TTL to converge after a sweep.
func (r *CachedPropertyRepository) ExpireStaleHolds(ctx context.Context, now time.Time) (int64, error) {
	return r.primary.ExpireStaleHolds(ctx, now)
}

func propertyCacheKey(id uint64) string {
	return "property:" + strconv.FormatUint(id, 10)
}
