// Package cache stores derived artifacts, chiefly DRC reports, keyed by the
// content that produced them.
//
// Every backend implements [Cache]: [FileCache] for the CLI, [LRUCache] for an
// in-process server cache, [RedisCache] for a shared cache, and [NullCache]
// when caching is off. Keys come from a [Keyer], so the same inputs always
// map to the same entry regardless of backend.
package cache

import (
	"context"
	"time"
)

// Default TTLs.
const (
	// ReportTTL bounds how long a DRC report is reused. Reports are keyed by
	// content, so a long TTL never serves stale results.
	ReportTTL = 7 * 24 * time.Hour

	// RatsnestTTL bounds rendered ratsnest artifacts.
	RatsnestTTL = 24 * time.Hour
)

// Cache is a byte store with per-entry expiry. A miss is not an error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// ReportKeyOpts are the inputs besides the board that shape a DRC report.
// Exclusions are not part of the key; they are applied to cached reports.
type ReportKeyOpts struct {
	NetlistHash string `json:"netlist"`
	RulesetHash string `json:"ruleset"`
}

// RatsnestKeyOpts select a ratsnest rendering.
type RatsnestKeyOpts struct {
	NetlistHash string `json:"netlist"`
	Format      string `json:"format"`
	Net         string `json:"net,omitempty"`
	All         bool   `json:"all,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	ReportKey(boardHash string, opts ReportKeyOpts) string
	RatsnestKey(boardHash string, opts RatsnestKeyOpts) string
}

// DefaultKeyer hashes every input into the key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ReportKey returns "drc:<sha256>".
func (DefaultKeyer) ReportKey(boardHash string, opts ReportKeyOpts) string {
	return hashKey("drc", boardHash, opts)
}

// RatsnestKey returns "ratsnest:<sha256>".
func (DefaultKeyer) RatsnestKey(boardHash string, opts RatsnestKeyOpts) string {
	return hashKey("ratsnest", boardHash, opts)
}

// NullCache stores nothing and misses every Get. It backs --no-cache and
// runners built without a cache.
type NullCache struct{}

// NewNullCache returns a NullCache.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error { return nil }
func (NullCache) Close() error { return nil }
