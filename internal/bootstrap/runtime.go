// Package bootstrap establishes runtime dependencies shared by the commands.
package bootstrap

import (
	"fmt"

	"tintuc/internal/cache"
	"tintuc/internal/config"
	"tintuc/internal/database"
	"tintuc/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	EnsureAdmin bool
}

// InitRuntime connects to DB and Redis and optionally ensures an admin
// account exists. Redis being unreachable is not fatal; the client is nil
// and caching degrades to no-ops.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.EnsureAdmin && !cfg.IsProduction() {
		if err := seed.EnsureAdmin(db); err != nil {
			return nil, nil, fmt.Errorf("failed to bootstrap admin account: %w", err)
		}
	}

	return db, r, nil
}
