package domain

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
)

type SelectionMethod string

const (
	SelectionWeightedRandom SelectionMethod = "weighted_random"
	SelectionPureRandom     SelectionMethod = "pure_random"
	SelectionSequential     SelectionMethod = "sequential"
)

// ParseSelectionMethod maps unrecognized values to weighted_random.
func ParseSelectionMethod(raw string) SelectionMethod {
	switch method := SelectionMethod(strings.ToLower(strings.TrimSpace(raw))); method {
	case SelectionPureRandom, SelectionSequential, SelectionWeightedRandom:
		return method
	default:
		return SelectionWeightedRandom
	}
}

const (
	DefaultRecentlyShownCount    = 500
	DefaultRecentlyShownCooldown = 400
	DefaultPoolSize              = 1000
	DefaultPoolRotationInterval  = 2
	DefaultMaximumEntries        = 10000
	DefaultHistorySize           = 100
)

// Config is the full option set of a selection core. Durations keep the
// units the options were historically configured in: cooldown in minutes,
// rotation interval in hours.
type Config struct {
	SelectionMethod       SelectionMethod
	EnhancedShuffle       bool
	RecentlyShownTracking bool
	RecentlyShownCount    int
	RecentlyShownCooldown int
	RotatingPools         bool
	PoolSize              int
	PoolRotationInterval  float64
	MaximumEntries        int
	HistorySize           int
}

func DefaultConfig() Config {
	return Config{
		SelectionMethod:       SelectionWeightedRandom,
		EnhancedShuffle:       true,
		RecentlyShownTracking: true,
		RecentlyShownCount:    DefaultRecentlyShownCount,
		RecentlyShownCooldown: DefaultRecentlyShownCooldown,
		RotatingPools:         true,
		PoolSize:              DefaultPoolSize,
		PoolRotationInterval:  DefaultPoolRotationInterval,
		MaximumEntries:        DefaultMaximumEntries,
		HistorySize:           DefaultHistorySize,
	}
}

func (c Config) Validate() error {
	if c.RecentlyShownTracking && c.RecentlyShownCount <= 0 {
		return fmt.Errorf("%w: recently shown count must be positive", ErrInvalidConfig)
	}
	if c.RecentlyShownCooldown < 0 {
		return fmt.Errorf("%w: recently shown cooldown must not be negative", ErrInvalidConfig)
	}
	if c.PoolSize <= 0 {
		return fmt.Errorf("%w: pool size must be positive", ErrInvalidConfig)
	}
	if c.RotatingPools && c.PoolRotationInterval <= 0 {
		return fmt.Errorf("%w: pool rotation interval must be positive", ErrInvalidConfig)
	}
	if c.MaximumEntries < 0 {
		return fmt.Errorf("%w: maximum entries must not be negative", ErrInvalidConfig)
	}
	if c.HistorySize <= 0 {
		return fmt.Errorf("%w: history size must be positive", ErrInvalidConfig)
	}

	return nil
}

// LedgerFingerprint changes whenever an option that invalidates the recency
// ledger changes.
func (c Config) LedgerFingerprint() string {
	raw := fmt.Sprintf("%t|%d|%d", c.RecentlyShownTracking, c.RecentlyShownCount, c.RecentlyShownCooldown)
	hash := sha1.Sum([]byte(raw))
	return hex.EncodeToString(hash[:])
}

// PoolFingerprint changes whenever an option that shapes the active pool
// changes.
func (c Config) PoolFingerprint() string {
	raw := fmt.Sprintf("%t|%d|%g", c.RotatingPools, c.PoolSize, c.PoolRotationInterval)
	hash := sha1.Sum([]byte(raw))
	return hex.EncodeToString(hash[:])
}

// EffectiveMethod resolves the strategy actually used for fresh picks.
func (c Config) EffectiveMethod() SelectionMethod {
	if !c.EnhancedShuffle {
		return SelectionSequential
	}
	return ParseSelectionMethod(string(c.SelectionMethod))
}
