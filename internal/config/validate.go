package config

import (
	"fmt"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}
	if c.Auth.AccessTokenTTL <= 0 {
		return fmt.Errorf("auth.access_token_ttl must be positive (got %v)", c.Auth.AccessTokenTTL)
	}

	if c.Database.MaxConns < c.Database.MinConns {
		return fmt.Errorf("database.max_conns (%d) must be >= min_conns (%d)",
			c.Database.MaxConns, c.Database.MinConns)
	}

	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text (got %q)", c.Log.Format)
	}

	if c.Retention.ArchivedRetentionDays < 0 {
		return fmt.Errorf("retention.archived_retention_days must be >= 0 (got %d)",
			c.Retention.ArchivedRetentionDays)
	}
	if c.Retention.CleanupBatchSize <= 0 {
		return fmt.Errorf("retention.cleanup_batch_size must be positive (got %d)",
			c.Retention.CleanupBatchSize)
	}

	return nil
}
