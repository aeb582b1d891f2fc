package usecase

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/shelfscout/backend/internal/domain"
	"github.com/shelfscout/backend/internal/logging"
)

// Seller labels that never reach the lookup service.
const (
	PlatformSellerID    = "AN1VRQENFRJN5"
	PlatformSellerLabel = "Amazon.co.jp"
	UnknownSellerLabel  = "Unknown"
)

// SellerNameCache resolves seller ids to display names, remembering every
// successful lookup in a persistent store. Entries are never evicted.
type SellerNameCache struct {
	store  domain.SellerStore
	lookup domain.SellerNameLookup
	logger *slog.Logger

	mu    sync.Mutex
	names map[string]string
}

// NewSellerNameCache loads the persisted mapping. A missing or unreadable
// store starts the cache empty. lookup may be nil.
func NewSellerNameCache(ctx context.Context, store domain.SellerStore, lookup domain.SellerNameLookup, logger *slog.Logger) *SellerNameCache {
	if logger == nil {
		logger = logging.Discard()
	}

	names, err := store.Load(ctx)
	if err != nil {
		logger.Warn("seller cache load failed, starting empty", "error", err)
		names = nil
	}
	if names == nil {
		names = make(map[string]string)
	}
	logger.Info("seller cache loaded", "entries", len(names))

	return &SellerNameCache{
		store:  store,
		lookup: lookup,
		logger: logger,
		names:  names,
	}
}

// Resolve returns a display name for sellerID. It never fails: when no name
// can be found the raw id is returned.
func (c *SellerNameCache) Resolve(ctx context.Context, sellerID string) string {
	sellerID = strings.TrimSpace(sellerID)
	if sellerID == "" {
		return UnknownSellerLabel
	}
	if sellerID == PlatformSellerID {
		return PlatformSellerLabel
	}

	// Held across the lookup so concurrent callers never persist a stale map
	// or look the same id up twice.
	c.mu.Lock()
	defer c.mu.Unlock()

	if name, ok := c.names[sellerID]; ok {
		return name
	}

	if c.lookup == nil || !c.lookup.Configured() {
		return sellerID
	}

	name, err := c.lookup.ResolveName(ctx, sellerID)
	name = strings.TrimSpace(name)
	if err != nil || name == "" {
		c.logger.Warn("seller lookup failed", "seller", sellerID, "error", err)
		return sellerID
	}

	c.names[sellerID] = name
	if err := c.store.Save(ctx, c.snapshot()); err != nil {
		c.logger.Warn("seller cache save failed, keeping in memory", "error", err)
	}
	return name
}

// Len returns the number of cached names.
func (c *SellerNameCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.names)
}

// snapshot copies the mapping. Caller holds mu.
func (c *SellerNameCache) snapshot() map[string]string {
	out := make(map[string]string, len(c.names))
	for k, v := range c.names {
		out[k] = v
	}
	return out
}
