package main

import (
	"testing"

	"lodgement/internal/platform/config"
	"lodgement/internal/platform/store"
)

func TestStoreConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("SERVICE_PGSQL_DBURL", "")
		t.Setenv("SERVICE_CLICKHOUSE_DBURL", "")
		t.Setenv("SERVICE_PGSQL_CONNECT_RETRIES", "")

		c := storeConfig(config.New())
		if c.PG.Enabled || c.CH.Enabled {
			t.Fatalf("backends enabled without urls: pg=%v ch=%v", c.PG.Enabled, c.CH.Enabled)
		}
		if c.PG.ConnectRetries != store.DefaultConnectRetries || c.PG.MaxConns != 4 || c.PG.SlowQueryMs != 500 {
			t.Fatalf("pg = %+v", c.PG)
		}
	})

	t.Run("from env", func(t *testing.T) {
		t.Setenv("SERVICE_PGSQL_DBURL", "postgres://lodgement@db/lodgement")
		t.Setenv("SERVICE_CLICKHOUSE_DBURL", "clickhouse://ch:9000/default")
		t.Setenv("SERVICE_PGSQL_CONNECT_RETRIES", "2")

		c := storeConfig(config.New())
		if !c.PG.Enabled || !c.CH.Enabled {
			t.Fatalf("backends disabled: pg=%v ch=%v", c.PG.Enabled, c.CH.Enabled)
		}
		if c.PG.ConnectRetries != 2 || c.CH.URL != "clickhouse://ch:9000/default" {
			t.Fatalf("config = %+v", c)
		}
	})
}
