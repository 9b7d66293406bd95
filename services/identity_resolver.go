// services/identity_resolver.go
package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/souqly/souqly_backend/models"
)

const (
	lookupTimeout        = 3 * time.Second
	identityCacheTTL     = 30 * time.Minute
	maxConcurrentLookups = 8

	// Redis marker for an id whose lookups were exhausted, so it is
	// not retried for the rest of the session.
	unresolvedMarker = "!unresolved"
)

// AdminDirectory is the lookup surface the resolver needs from the
// gateway: a primary directory and a fallback.
type AdminDirectory interface {
	LookupAdminPrimary(ctx context.Context, adminID string) (*models.AdminLookupResult, error)
	LookupAdminFallback(ctx context.Context, adminID string) (*models.AdminLookupResult, error)
}

// IdentityResolver resolves admin ids referenced as verifiedBy into
// display names. Resolution is best-effort and cosmetic: lookups run
// concurrently with per-id timeouts, failures are silent, and nothing
// here ever blocks the primary seller view.
type IdentityResolver struct {
	directory AdminDirectory
	redis     *redis.Client // nil when Redis is unavailable
	sem       chan struct{}

	mu      sync.RWMutex
	entries map[string]models.AdminIdentity
}

// NewIdentityResolver creates a resolver backed by the given directory.
// redisClient may be nil; the resolver then caches locally only.
func NewIdentityResolver(directory AdminDirectory, redisClient *redis.Client) *IdentityResolver {
	return &IdentityResolver{
		directory: directory,
		redis:     redisClient,
		sem:       make(chan struct{}, maxConcurrentLookups),
		entries:   make(map[string]models.AdminIdentity),
	}
}

// ResolveAll resolves a batch of admin ids concurrently. Each id races
// its own timeout and fallback chain; one id's failure never blocks
// another's resolution. Returns when the whole batch has settled.
func (r *IdentityResolver) ResolveAll(ctx context.Context, adminIDs []string) {
	var wg sync.WaitGroup
	seen := make(map[string]bool)
	for _, adminID := range adminIDs {
		if adminID == "" || seen[adminID] {
			continue
		}
		seen[adminID] = true
		if r.cached(adminID) {
			continue
		}

		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			r.sem <- struct{}{}
			defer func() { <-r.sem }()
			r.resolveOne(ctx, id)
		}(adminID)
	}
	wg.Wait()
}

// cached reports whether an id has already been resolved or exhausted,
// consulting the local map first and Redis second.
func (r *IdentityResolver) cached(adminID string) bool {
	r.mu.RLock()
	_, ok := r.entries[adminID]
	r.mu.RUnlock()
	if ok {
		return true
	}

	if r.redis == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	value, err := r.redis.Get(ctx, identityCacheKey(adminID)).Result()
	if err != nil {
		return false
	}

	entry := models.AdminIdentity{AdminID: adminID}
	if value != unresolvedMarker {
		entry.DisplayName = value
		entry.Resolved = true
	}
	r.mu.Lock()
	r.entries[adminID] = entry
	r.mu.Unlock()
	return true
}

// resolveOne runs the primary lookup, then the fallback, each bounded
// by its own timeout. On exhaustion the id is cached as unresolved so
// request volume stays bounded.
func (r *IdentityResolver) resolveOne(ctx context.Context, adminID string) {
	name := r.lookup(ctx, adminID, r.directory.LookupAdminPrimary)
	if name == "" {
		name = r.lookup(ctx, adminID, r.directory.LookupAdminFallback)
	}

	entry := models.AdminIdentity{AdminID: adminID}
	cacheValue := unresolvedMarker
	if name != "" {
		entry.DisplayName = name
		entry.Resolved = true
		cacheValue = name
	}

	r.mu.Lock()
	r.entries[adminID] = entry
	r.mu.Unlock()

	if r.redis != nil {
		cacheCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := r.redis.Set(cacheCtx, identityCacheKey(adminID), cacheValue, identityCacheTTL).Err(); err != nil {
			log.Printf("Failed to cache admin identity %s: %v", adminID, err)
		}
	}
}

type lookupFunc func(ctx context.Context, adminID string) (*models.AdminLookupResult, error)

func (r *IdentityResolver) lookup(ctx context.Context, adminID string, fn lookupFunc) string {
	lookupCtx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	result, err := fn(lookupCtx, adminID)
	if err != nil {
		// Silent to the end user; identity display is cosmetic.
		return ""
	}
	return result.BestName()
}

// DisplayName returns the resolved name for an admin id, or a formatted
// id fallback when unresolved.
func (r *IdentityResolver) DisplayName(adminID string) string {
	r.mu.RLock()
	entry, ok := r.entries[adminID]
	r.mu.RUnlock()
	if ok && entry.Resolved {
		return entry.DisplayName
	}
	return fmt.Sprintf("Admin %s", adminID)
}

// Identities returns the current cache entries for a set of ids,
// including unresolved ones with their display fallback.
func (r *IdentityResolver) Identities(adminIDs []string) []models.AdminIdentity {
	identities := make([]models.AdminIdentity, 0, len(adminIDs))
	seen := make(map[string]bool)
	for _, adminID := range adminIDs {
		if adminID == "" || seen[adminID] {
			continue
		}
		seen[adminID] = true

		r.mu.RLock()
		entry, ok := r.entries[adminID]
		r.mu.RUnlock()
		if !ok || !entry.Resolved {
			entry = models.AdminIdentity{AdminID: adminID, DisplayName: fmt.Sprintf("Admin %s", adminID)}
		}
		identities = append(identities, entry)
	}
	return identities
}

func identityCacheKey(adminID string) string {
	return "admin_identity:" + adminID
}
