// Package cache provides balance caching so repeated balance lookups do
// not hammer the RPC endpoints.
package cache

import (
	"sync"
	"time"

	"github.com/sidrisov/payflow-sub001/internal/chain"
)

// DefaultStaleness is the duration after which entries are considered stale.
const DefaultStaleness = 2 * time.Minute

// Cache defines the interface for balance caching operations.
type Cache interface {
	// Get retrieves a cached balance entry, whether it exists, and its age.
	Get(network chain.Network, address string) (*Entry, bool, time.Duration)

	// Set stores a balance entry.
	Set(entry Entry)

	// IsStale checks if an entry is older than DefaultStaleness.
	IsStale(network chain.Network, address string) bool

	// Delete removes an entry.
	Delete(network chain.Network, address string)

	// Clear removes all entries.
	Clear()

	// Size returns the number of entries.
	Size() int

	// Prune removes entries older than maxAge and returns the count removed.
	Prune(maxAge time.Duration) int
}

// Compile-time interface check
var _ Cache = (*BalanceCache)(nil)

// Entry is a single cached native balance.
type Entry struct {
	Network   chain.Network `json:"network"`
	Address   string        `json:"address"`
	WeiAmount string        `json:"wei"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// BalanceCache stores cached balances in memory.
type BalanceCache struct {
	mu      sync.RWMutex     `json:"-"`
	Entries map[string]Entry `json:"entries"`
}

// NewBalanceCache creates a new empty balance cache.
func NewBalanceCache() *BalanceCache {
	return &BalanceCache{Entries: make(map[string]Entry)}
}

// Key generates the cache key for an address on a network.
func Key(network chain.Network, address string) string {
	return network.Name() + ":" + address
}

// Get retrieves a cached balance entry.
func (c *BalanceCache) Get(network chain.Network, address string) (*Entry, bool, time.Duration) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.Entries[Key(network, address)]
	if !ok {
		return nil, false, 0
	}
	return &entry, true, time.Since(entry.UpdatedAt)
}

// Set stores a balance entry, stamping it with the current time when
// the caller left UpdatedAt zero.
func (c *BalanceCache) Set(entry Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = time.Now()
	}
	if c.Entries == nil {
		c.Entries = make(map[string]Entry)
	}
	c.Entries[Key(entry.Network, entry.Address)] = entry
}

// IsStale checks if an entry is older than DefaultStaleness. A missing
// entry is stale.
func (c *BalanceCache) IsStale(network chain.Network, address string) bool {
	_, ok, age := c.Get(network, address)
	return !ok || age > DefaultStaleness
}

// Delete removes an entry.
func (c *BalanceCache) Delete(network chain.Network, address string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.Entries, Key(network, address))
}

// Clear removes all entries.
func (c *BalanceCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Entries = make(map[string]Entry)
}

// Size returns the number of entries.
func (c *BalanceCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.Entries)
}

// Prune removes entries older than maxAge.
func (c *BalanceCache) Prune(maxAge time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var removed int
	cutoff := time.Now().Add(-maxAge)
	for key, entry := range c.Entries {
		if entry.UpdatedAt.Before(cutoff) {
			delete(c.Entries, key)
			removed++
		}
	}
	return removed
}
