package subscription

import (
	"context"
	"fmt"
	"sync"

	"github.com/fatflowers/membership/internal/models"
)

type lookupCacheKey struct{}

// LookupCache memoizes GetSubscriptionFor per user for one unit of work, such
// as an HTTP request. A cached nil means the user holds no plan.
type LookupCache struct {
	mu      sync.Mutex
	entries map[string]*models.Subscription
}

func NewLookupCache() *LookupCache {
	return &LookupCache{entries: map[string]*models.Subscription{}}
}

func (c *LookupCache) get(userID string) (*models.Subscription, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	plan, ok := c.entries[userID]
	return plan, ok
}

func (c *LookupCache) put(userID string, plan *models.Subscription) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[userID] = plan
}

// Invalidate drops the cached lookup for userID.
func (c *LookupCache) Invalidate(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
}

// Len returns the number of cached users.
func (c *LookupCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// WithLookupCache scopes c to ctx.
func WithLookupCache(ctx context.Context, c *LookupCache) context.Context {
	return context.WithValue(ctx, lookupCacheKey{}, c)
}

// LookupCacheFrom returns the cache scoped to ctx, or nil.
func LookupCacheFrom(ctx context.Context) *LookupCache {
	if ctx == nil {
		return nil
	}
	c, _ := ctx.Value(lookupCacheKey{}).(*LookupCache)
	return c
}

// InvalidateLookup drops userID from the cache scoped to ctx, if any. It must
// be called after every group membership change.
func InvalidateLookup(ctx context.Context, userID string) {
	if c := LookupCacheFrom(ctx); c != nil {
		c.Invalidate(userID)
	}
}

// GetSubscriptionFor returns the first plan whose group the user belongs to,
// or nil. Plans are ordered by creation time, then id. The result is cached
// on the LookupCache scoped to ctx; without one every call queries storage.
func (s *Service) GetSubscriptionFor(ctx context.Context, userID string) (*models.Subscription, error) {
	cache := LookupCacheFrom(ctx)
	if cache != nil {
		if plan, ok := cache.get(userID); ok {
			return plan, nil
		}
	}

	groupIDs, err := s.repo.UserGroupIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user groups: %w", err)
	}
	plans, err := s.repo.FindPlansByGroups(ctx, groupIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to find plans by groups: %w", err)
	}

	var plan *models.Subscription
	if len(plans) > 0 {
		plan = plans[0]
	}
	if cache != nil {
		cache.put(userID, plan)
	}
	return plan, nil
}
