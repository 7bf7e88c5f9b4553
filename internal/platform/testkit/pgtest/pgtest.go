// Package pgtest runs a disposable Postgres container for integration tests.
// Callers live behind the integration_pg build tag and need a Docker daemon
package pgtest

import (
	"context"
	"fmt"
	"testing"
	"time"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const image = "postgres:16-alpine"

// Start launches Postgres and returns its DSN. The container is terminated when t
// finishes
func Start(t testing.TB) string {
	t.Helper()

	// the first run may pull the image
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        image,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "lodgement",
				"POSTGRES_PASSWORD": "lodgement",
				"POSTGRES_DB":       "lodgement",
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			).WithDeadline(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("pgtest: start %s: %v", image, err)
	}
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("pgtest: host: %v", err)
	}
	port, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("pgtest: port: %v", err)
	}
	return fmt.Sprintf("postgres://lodgement:lodgement@%s:%s/lodgement?sslmode=disable", host, port.Port())
}
