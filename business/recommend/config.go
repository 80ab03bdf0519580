package recommend

import (
	"time"

	"marketplace/business/similarity"
)

type Config struct {
	// results returned when the caller passes limit <= 0
	DefaultLimit int

	// per cart line, for the category fallback query
	FallbackPerItem int

	// neighbours kept per product in the similarity index
	IndexTopK int

	// goroutines used to rebuild the index
	IndexWorkers int

	// how long mirrored index entries live in the external cache
	MirrorTTL time.Duration

	Behavior RetentionConfig

	Weights similarity.Weights
}

// RetentionConfig bounds the behavior log. Zero values mean unbounded.
type RetentionConfig struct {
	MaxEvents int
	Retention time.Duration
}

const (
	defaultLimit           = 6
	defaultFallbackPerItem = 3
	defaultIndexTopK       = 10
	defaultIndexWorkers    = 4
	defaultMirrorTTL       = 24 * time.Hour
)

func DefaultConfig() Config {
	return Config{
		DefaultLimit:    defaultLimit,
		FallbackPerItem: defaultFallbackPerItem,
		IndexTopK:       defaultIndexTopK,
		IndexWorkers:    defaultIndexWorkers,
		MirrorTTL:       defaultMirrorTTL,
		Weights:         similarity.DefaultWeights(),
	}
}

// withDefaults keeps sane fallbacks for fields left at zero.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = d.DefaultLimit
	}
	if c.FallbackPerItem <= 0 {
		c.FallbackPerItem = d.FallbackPerItem
	}
	if c.IndexTopK <= 0 {
		c.IndexTopK = d.IndexTopK
	}
	if c.IndexWorkers <= 0 {
		c.IndexWorkers = d.IndexWorkers
	}
	if c.MirrorTTL <= 0 {
		c.MirrorTTL = d.MirrorTTL
	}
	if c.Behavior.MaxEvents < 0 {
		c.Behavior.MaxEvents = 0
	}
	if c.Behavior.Retention < 0 {
		c.Behavior.Retention = 0
	}
	return c
}
