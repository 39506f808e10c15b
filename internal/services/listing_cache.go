package services

import (
	"context"
	"sync"
	"time"

	"clouddrive/internal/models"
	"clouddrive/internal/utils"
	"clouddrive/pkg/cache"
	"clouddrive/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/singleflight"
)

// ListingCache de-duplicates folder listings. Concurrent identical requests
// share one load and the result is reused for ttl, unless a mutation of that
// folder invalidates it first.
type ListingCache struct {
	cache  cache.Cache
	group  singleflight.Group
	ttl    time.Duration
	logger *logger.Logger

	mu       sync.Mutex
	inflight map[string]*loadState
}

// loadState lives only while at least one load of its key is running.
type loadState struct {
	generation uint64
	loads      int
}

func NewListingCache(c cache.Cache, ttl time.Duration, log *logger.Logger) *ListingCache {
	if ttl <= 0 {
		ttl = utils.ListingCacheTTL
	}
	return &ListingCache{
		cache:    c,
		ttl:      ttl,
		logger:   log.WithField("component", "listing_cache"),
		inflight: make(map[string]*loadState),
	}
}

// ListingKey returns "files:<userID>:<folderID|root>".
func ListingKey(userID string, folderID *primitive.ObjectID) string {
	folder := utils.RootFolderKey
	if folderID != nil {
		folder = folderID.Hex()
	}
	return utils.CacheListingPrefix + userID + ":" + folder
}

func (l *ListingCache) beginLoad(key string) (*loadState, uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	state, ok := l.inflight[key]
	if !ok {
		state = &loadState{}
		l.inflight[key] = state
	}
	state.loads++
	return state, state.generation
}

// endLoad reports whether the key was invalidated since beginLoad.
func (l *ListingCache) endLoad(key string, state *loadState, generation uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	state.loads--
	if state.loads == 0 && l.inflight[key] == state {
		delete(l.inflight, key)
	}
	return state.generation != generation
}

func (l *ListingCache) tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.inflight)
}

func (l *ListingCache) Get(
	ctx context.Context,
	userID string,
	folderID *primitive.ObjectID,
	load func(ctx context.Context) (*models.Listing, error),
) (*models.Listing, error) {
	key := ListingKey(userID, folderID)

	var cached models.Listing
	if err := l.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	}

	result, err, _ := l.group.Do(key, func() (interface{}, error) {
		state, gen := l.beginLoad(key)

		// The load outlives the first caller's cancellation since others wait on it.
		detached := context.WithoutCancel(ctx)
		listing, err := load(detached)
		stale := l.endLoad(key, state, gen)
		if err != nil {
			return nil, err
		}

		if !stale {
			if err := l.cache.Set(detached, key, listing, l.ttl); err != nil {
				l.logger.WithError(err).Warn("Failed to cache listing")
			}
		}
		return listing, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*models.Listing), nil
}

// Invalidate drops the cached listings of the given folders. A nil entry
// stands for the root.
func (l *ListingCache) Invalidate(ctx context.Context, userID string, folderIDs ...*primitive.ObjectID) {
	keys := make([]string, 0, len(folderIDs))
	l.mu.Lock()
	for _, folderID := range folderIDs {
		key := ListingKey(userID, folderID)
		if state, ok := l.inflight[key]; ok {
			state.generation++
		}
		keys = append(keys, key)
	}
	l.mu.Unlock()

	for _, key := range keys {
		l.group.Forget(key)
	}
	if err := l.cache.Delete(ctx, keys...); err != nil {
		l.logger.WithError(err).WithUserID(userID).Warn("Failed to invalidate listings")
	}
}
