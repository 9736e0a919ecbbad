package config

import (
	"fmt"
	"regexp"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate rejects configurations the server cannot start with. Table and
// column names are checked here because they end up interpolated into SQL
// statement templates.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendPostgres:
		if c.DatabaseDSN == "" {
			return fmt.Errorf("config: DATABASE_DSN is required for the %s backend", BackendPostgres)
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("config: REDIS_ADDR is required for the %s backend", BackendRedis)
		}
	default:
		return fmt.Errorf("config: unknown session backend %q", c.Backend)
	}

	for _, name := range []string{c.SessionTable, c.KeyColumn, c.DataColumn, c.ExpirationColumn} {
		if !identPattern.MatchString(name) {
			return fmt.Errorf("config: invalid SQL identifier %q", name)
		}
	}

	if c.Backend == BackendRedis && c.SweepSchedule != "" {
		return fmt.Errorf("config: the sweeper only applies to the %s backend", BackendPostgres)
	}

	return nil
}
