package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/DaanHessen/fieldmap-tui/internal/util"
)

func TestOpenPicksDriver(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	cfg := util.DefaultConfig()
	cfg.Store.Path = filepath.Join(dir, "data.json")
	g, closeFn, err := Open(ctx, cfg)
	if err != nil {
		t.Fatalf("file: %v", err)
	}
	if _, ok := g.(*FileGateway); !ok {
		t.Fatalf("expected FileGateway, got %T", g)
	}
	closeFn()

	cfg.Store.Driver = util.DriverSQLite
	cfg.Store.Path = filepath.Join(dir, "data.db")
	g, closeFn, err = Open(ctx, cfg)
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	defer closeFn()
	if _, ok := g.(*SQLiteGateway); !ok {
		t.Fatalf("expected SQLiteGateway, got %T", g)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	cfg := util.DefaultConfig()
	cfg.Store.Driver = "mongo"
	if _, _, err := Open(context.Background(), cfg); err == nil {
		t.Fatalf("expected error")
	}
}

func TestNewMigratorRequiresDSN(t *testing.T) {
	if _, err := NewMigrator("", ""); err == nil {
		t.Fatalf("expected error")
	}
	m, err := NewMigrator("postgres://localhost/x", "db/migrations")
	if err != nil {
		t.Fatal(err)
	}
	u, err := m.sourceURL()
	if err != nil || len(u) < len("file://") || u[:7] != "file://" {
		t.Fatalf("source url %q %v", u, err)
	}
}

func TestOpenPostgresRequiresDSN(t *testing.T) {
	if _, err := OpenPostgres(context.Background(), ""); err == nil {
		t.Fatalf("expected error")
	}
}
