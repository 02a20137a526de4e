// MapAdmin - Map Configuration Backend and Live Admin Presence
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mapadmin

//go:build integration

package testinfra

import (
	"context"
	"database/sql"
	"fmt"
	"os/exec"
	"testing"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// DefaultPostGISImage ships pg_trgm in contrib alongside PostGIS.
	DefaultPostGISImage = "postgis/postgis:16-3.4"

	postgresPort     = "5432/tcp"
	postgresUser     = "mapadmin"
	postgresPassword = "mapadmin"
	postgresDB       = "gis"
)

// SkipIfNoDocker skips the test if the Docker daemon is not reachable.
func SkipIfNoDocker(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if exec.CommandContext(ctx, "docker", "info").Run() != nil {
		t.Skip("Skipping test: Docker not available")
	}
}

// GISContainer is a throwaway PostGIS instance with pg_trgm enabled.
type GISContainer struct {
	testcontainers.Container
	DSN string
}

// PostGISOption configures NewGISContainer.
type PostGISOption func(*postgisConfig)

type postgisConfig struct {
	image        string
	initSQL      []string
	startTimeout time.Duration
}

// WithPostGISImage overrides the container image.
func WithPostGISImage(image string) PostGISOption {
	return func(c *postgisConfig) { c.image = image }
}

// WithInitSQL runs statements after pg_trgm is created, in order.
func WithInitSQL(stmts ...string) PostGISOption {
	return func(c *postgisConfig) { c.initSQL = append(c.initSQL, stmts...) }
}

// NewGISContainer starts PostGIS, creates the pg_trgm extension and runs
// any WithInitSQL statements.
//
//	gis, err := testinfra.NewGISContainer(ctx,
//	    testinfra.WithInitSQL(`CREATE TABLE addresses (street text)`),
//	)
//	if err != nil {
//	    t.Fatal(err)
//	}
//	defer testinfra.CleanupContainer(t, ctx, gis)
func NewGISContainer(ctx context.Context, opts ...PostGISOption) (*GISContainer, error) {
	cfg := &postgisConfig{
		image:        DefaultPostGISImage,
		startTimeout: 90 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	req := testcontainers.ContainerRequest{
		Image:        cfg.image,
		ExposedPorts: []string{postgresPort},
		Env: map[string]string{
			"POSTGRES_USER":     postgresUser,
			"POSTGRES_PASSWORD": postgresPassword,
			"POSTGRES_DB":       postgresDB,
		},
		// The entrypoint restarts postgres once after init scripts.
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort(postgresPort),
		).WithStartupTimeout(cfg.startTimeout),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("create postgis container: %w", err)
	}

	endpoint, err := container.PortEndpoint(ctx, postgresPort, "")
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("resolve postgis endpoint: %w", err)
	}
	dsn := fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable", postgresUser, postgresPassword, endpoint, postgresDB)

	if err := initDatabase(ctx, dsn, cfg.initSQL); err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, err
	}

	return &GISContainer{Container: container, DSN: dsn}, nil
}

func initDatabase(ctx context.Context, dsn string, stmts []string) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("open postgis: %w", err)
	}
	defer db.Close()

	all := append([]string{"CREATE EXTENSION IF NOT EXISTS pg_trgm"}, stmts...)
	for _, stmt := range all {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init postgis %q: %w", stmt, err)
		}
	}
	return nil
}

// CleanupContainer terminates container and logs any failure.
func CleanupContainer(t *testing.T, ctx context.Context, container testcontainers.Container) {
	t.Helper()

	if container != nil {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	}
}
