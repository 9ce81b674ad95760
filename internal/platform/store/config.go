package store

import (
	"time"

	"pulse/internal/platform/config"
)

// Config aggregates per backend configuration
type Config struct {
	AppName string

	PG  PGConfig
	CH  CHConfig
	RDS RedisConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	// Guard/boot knobs:
	ConnectRetries int           // default 20
	PingTimeout    time.Duration // default 3s
}

// CHConfig configures clickhouse connectivity
type CHConfig struct {
	Enabled      bool
	URL          string
	Role         string
	Tag          string
	MaxOpenConns int
}

// RedisConfig configures redis connectivity
type RedisConfig struct {
	Enabled bool
	URL     string
	Addr    string
	DB      int
	Prefix  string
}

// FromConfig reads backend settings from SERVICE_PGSQL_, SERVICE_CLICKHOUSE_ and SERVICE_REDIS_
// a backend is enabled when its url is set, tag names the process in clickhouse client info
func FromConfig(root config.Conf, tag string) Config {
	pg := root.Prefix("SERVICE_PGSQL_")
	ch := root.Prefix("SERVICE_CLICKHOUSE_")
	rd := root.Prefix("SERVICE_REDIS_")

	pgURL := pg.MayString("DBURL", "")
	chURL := ch.MayString("DBURL", "")
	rdURL := rd.MayString("URL", "")
	rdAddr := rd.MayString("ADDR", "")

	return Config{
		AppName: "pulse",
		PG: PGConfig{
			Enabled:     pgURL != "",
			URL:         pgURL,
			MaxConns:    int32(pg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pg.MayInt("SLOW_MS", 500),
			LogSQL:      pg.MayBool("LOG_SQL", false),
		},
		CH: CHConfig{
			Enabled: chURL != "",
			URL:     chURL,
			Role:    "pulse",
			Tag:     tag,
		},
		RDS: RedisConfig{
			Enabled: rdURL != "" || rdAddr != "",
			URL:     rdURL,
			Addr:    rdAddr,
			DB:      rd.MayInt("DB", 0),
			Prefix:  rd.MayString("PREFIX", "pulse:"),
		},
	}
}
