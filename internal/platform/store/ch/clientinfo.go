package ch

import (
	"os"
	"strings"

	"lodgement/internal/core/version"

	"github.com/ClickHouse/clickhouse-go/v2"
)

type product = struct{ Name, Version string }

// clientInfo names this process to the server; the products show up in
// system.query_log. Blank values are left out
func clientInfo(role, tag string) clickhouse.ClientInfo {
	bi := version.Info()
	host, _ := os.Hostname()

	var products []product
	add := func(name, v string) {
		if v = strings.TrimSpace(v); v != "" {
			products = append(products, product{Name: name, Version: v})
		}
	}
	add(bi.Service, bi.Version)
	add("tag", tag)
	add("role", role)
	add("commit", shortSHA(bi.Commit))
	add("go", bi.Go)
	add("host", host)
	return clickhouse.ClientInfo{Products: products}
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
