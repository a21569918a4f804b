package common

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	postgresImage = "docker.io/postgres:14.11-bookworm"
	rabbitmqImage = "rabbitmq:3.12.11-management-alpine"

	// MigrationsFromInternal is the migrations source for packages two levels below the module root.
	MigrationsFromInternal = "file://../../migrations"
)

// requireContainers skips t when containers are not wanted.
func requireContainers(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
}

// TestRabbitMQ starts a broker for the lifetime of t and returns its AMQP URL.
func TestRabbitMQ(t *testing.T) string {
	t.Helper()
	requireContainers(t)

	ctx := context.Background()
	container, err := rabbitmq.Run(ctx, rabbitmqImage,
		rabbitmq.WithAdminUsername("guest"),
		rabbitmq.WithAdminPassword("guest"))
	if err != nil {
		t.Fatalf("could not start rabbitmq container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Errorf("could not terminate rabbitmq container: %v", err)
		}
	})

	url, err := container.AmqpURL(ctx)
	if err != nil {
		t.Fatalf("could not get rabbitmq url: %v", err)
	}

	return url
}

// TestDB starts postgres, applies every migration under source and returns an open pool.
// The schema is dropped when t finishes.
func TestDB(source string, t *testing.T) *sql.DB {
	t.Helper()
	requireContainers(t)

	ctx := context.Background()
	container, err := postgres.Run(ctx, postgresImage,
		postgres.WithDatabase("blogcontent"),
		postgres.WithUsername("blog"),
		postgres.WithPassword("blog"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)))
	if err != nil {
		t.Fatalf("could not start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("could not get postgres dsn: %v", err)
	}

	m, err := migrate.New(source, dsn)
	if err != nil {
		t.Fatalf("could not load migrations from %s: %v", source, err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		t.Fatalf("could not run migrations: %v", err)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("could not open database: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
		m.Drop()
		m.Close()
		container.Terminate(ctx)
	})

	return db
}

// TruncateTables empties the given tables and restarts their sequences.
func TruncateTables(db *sql.DB, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}

	_, err := db.Exec(fmt.Sprintf("TRUNCATE %s RESTART IDENTITY CASCADE", strings.Join(tables, ", ")))
	return err
}
