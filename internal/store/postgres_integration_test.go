//go:build postgres_integration

package store

import (
	"os"
	"testing"
)

func TestPostgresConnectivity(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set; skipping integration test")
	}
	p, err := NewPostgres(dsn)
	if err != nil {
		t.Fatalf("NewPostgres: %v", err)
	}
	defer func() { _ = p.Close() }()
	if err := p.Ping(t.Context()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	// Datasets may be empty on a fresh database; the queries just have to run.
	if _, err := p.ScenicPoints(t.Context()); err != nil {
		t.Fatalf("ScenicPoints: %v", err)
	}
	if _, err := p.EdgeMidpoints(t.Context()); err != nil {
		t.Fatalf("EdgeMidpoints: %v", err)
	}
	if _, err := p.RoadFeatures(t.Context()); err != nil {
		t.Fatalf("RoadFeatures: %v", err)
	}
}
