package store

import "time"

// Config selects and configures the optional backends
type Config struct {
	AppName string

	PG PGConfig
	CH CHConfig
}

// PGConfig configures the Postgres pool that backs durable transfers
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	ConnectRetries int           // pings before Open gives up, default 6
	PingTimeout    time.Duration // per ping, default 5s
}

// CHConfig configures the ClickHouse connection that receives lodgement audit events
type CHConfig struct {
	Enabled bool
	URL     string
	Tag     string
}
