package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Intentional-Operating-Culture-LLC/ioc-workspace-sub014/internal/domain"
)

// OrgProfileCache guarda perfiles organizacionales ya calculados para no
// recalcular ni golpear la base en cada lectura.
type OrgProfileCache interface {
	Get(orgID string) (domain.OrganizationProfile, bool, error)
	Set(profile domain.OrganizationProfile, ttl time.Duration) error
	Invalidate(orgID string) error
}

type memoryOrgProfileCache struct {
	mu    sync.Mutex
	items map[string]cachedOrgProfile
}

type cachedOrgProfile struct {
	profile   domain.OrganizationProfile
	expiresAt time.Time
}

func NewMemoryOrgProfileCache() OrgProfileCache {
	return &memoryOrgProfileCache{
		items: make(map[string]cachedOrgProfile),
	}
}

func (c *memoryOrgProfileCache) Get(orgID string) (domain.OrganizationProfile, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.items[orgID]
	if !ok {
		return domain.OrganizationProfile{}, false, nil
	}
	if time.Now().UTC().After(item.expiresAt) {
		delete(c.items, orgID)
		return domain.OrganizationProfile{}, false, nil
	}
	return item.profile, true, nil
}

func (c *memoryOrgProfileCache) Set(profile domain.OrganizationProfile, ttl time.Duration) error {
	if strings.TrimSpace(profile.OrgID) == "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[profile.OrgID] = cachedOrgProfile{
		profile:   profile,
		expiresAt: time.Now().UTC().Add(ttl),
	}
	return nil
}

func (c *memoryOrgProfileCache) Invalidate(orgID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, orgID)
	return nil
}

type redisOrgProfileCache struct {
	client redisKV
	prefix string
}

type redisKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

func NewRedisOrgProfileCache(client *redis.Client) OrgProfileCache {
	if client == nil {
		return nil
	}
	return &redisOrgProfileCache{
		client: client,
		prefix: "org:profile:",
	}
}

func (c *redisOrgProfileCache) Get(orgID string) (domain.OrganizationProfile, bool, error) {
	if strings.TrimSpace(orgID) == "" {
		return domain.OrganizationProfile{}, false, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	payload, err := c.client.Get(ctx, c.prefix+orgID).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.OrganizationProfile{}, false, nil
	}
	if err != nil {
		return domain.OrganizationProfile{}, false, err
	}
	var profile domain.OrganizationProfile
	if err := json.Unmarshal(payload, &profile); err != nil {
		return domain.OrganizationProfile{}, false, err
	}
	return profile, true, nil
}

func (c *redisOrgProfileCache) Set(profile domain.OrganizationProfile, ttl time.Duration) error {
	if strings.TrimSpace(profile.OrgID) == "" {
		return nil
	}
	payload, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	return c.client.Set(ctx, c.prefix+profile.OrgID, payload, ttl).Err()
}

func (c *redisOrgProfileCache) Invalidate(orgID string) error {
	if strings.TrimSpace(orgID) == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	return c.client.Del(ctx, c.prefix+orgID).Err()
}
