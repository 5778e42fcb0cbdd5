package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/DaanHessen/fieldmap-tui/internal/engine"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS buildings (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL DEFAULT '',
    extra TEXT NOT NULL DEFAULT '',
    pos INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS floors (
    building_id TEXT NOT NULL REFERENCES buildings(id) ON DELETE CASCADE,
    id TEXT NOT NULL,
    label TEXT NOT NULL DEFAULT '',
    extra TEXT NOT NULL DEFAULT '',
    pos INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (building_id, id)
);
CREATE TABLE IF NOT EXISTS items (
    building_id TEXT NOT NULL,
    floor_id TEXT NOT NULL,
    id TEXT NOT NULL,
    type TEXT NOT NULL,
    x REAL NOT NULL DEFAULT 0,
    y REAL NOT NULL DEFAULT 0,
    z REAL NOT NULL DEFAULT 0,
    rotation REAL NOT NULL DEFAULT 0,
    scale REAL NOT NULL DEFAULT 1,
    label TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'NORMAL',
    auto INTEGER NOT NULL DEFAULT 0,
    extra TEXT NOT NULL DEFAULT '',
    pos INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (building_id, floor_id, id),
    FOREIGN KEY (building_id, floor_id) REFERENCES floors(building_id, id) ON DELETE CASCADE
);
`

// SQLiteGateway stores the dataset in a local SQLite file.
type SQLiteGateway struct {
	db   *sql.DB
	path string
}

// OpenSQLite creates or opens the database at path. ":memory:" gives a
// private in-memory database.
func OpenSQLite(path string) (*SQLiteGateway, error) {
	dsn := ":memory:?" + sqlitePragmas(false)
	if path != ":memory:" {
		if path == "" {
			return nil, fmt.Errorf("missing sqlite path")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
		dsn = path + "?" + sqlitePragmas(true)
	}
	sdb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// every new connection to :memory: would see an empty database
	sdb.SetMaxOpenConns(1)
	if _, err := sdb.Exec(sqliteSchema); err != nil {
		sdb.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return &SQLiteGateway{db: sdb, path: path}, nil
}

// sqlitePragmas is the modernc DSN query applying the connection pragmas.
// WAL needs a file.
func sqlitePragmas(file bool) string {
	q := "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if file {
		q += "&_pragma=journal_mode(WAL)"
	}
	return q
}

func (g *SQLiteGateway) Close() error { return g.db.Close() }

func (g *SQLiteGateway) Load(ctx context.Context) (engine.Dataset, error) {
	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return engine.Dataset{}, wrap(err, "begin")
	}
	defer tx.Rollback()
	ds, err := readDataset(ctx, tx.QueryContext)
	if err != nil {
		return engine.Dataset{}, wrap(err, "load dataset")
	}
	log.Printf("store: loaded %d items from %s", ds.Count(), g.path)
	return ds, nil
}

func (g *SQLiteGateway) Save(ctx context.Context, ds engine.Dataset) error {
	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap(err, "begin")
	}
	exec := func(ctx context.Context, query string, args ...any) error {
		_, err := tx.ExecContext(ctx, query, args...)
		return err
	}
	if err := writeDataset(ctx, exec, ds); err != nil {
		tx.Rollback()
		return wrap(err, "save dataset")
	}
	if err := tx.Commit(); err != nil {
		return wrap(err, "commit")
	}
	log.Printf("store: saved %d items to %s", ds.Count(), g.path)
	return nil
}
