package store

import (
	"testing"

	"pulse/internal/platform/config"
)

func TestFromConfig_EnablesBackendsWithURLs(t *testing.T) {
	c := FromConfig(config.New(), "api")
	if c.PG.Enabled || c.CH.Enabled || c.RDS.Enabled {
		t.Fatalf("nothing should be enabled without urls: %+v", c)
	}
	if c.CH.Tag != "api" || c.RDS.Prefix != "pulse:" || c.PG.MaxConns != 4 {
		t.Fatalf("defaults %+v", c)
	}

	t.Setenv("SERVICE_PGSQL_DBURL", "postgres://localhost/pulse")
	t.Setenv("SERVICE_PGSQL_MAX_CONNS", "9")
	t.Setenv("SERVICE_REDIS_ADDR", "localhost:6379")
	c = FromConfig(config.New(), "crawl")
	if !c.PG.Enabled || c.PG.MaxConns != 9 || !c.RDS.Enabled || c.CH.Enabled {
		t.Fatalf("env not applied %+v", c)
	}
}
