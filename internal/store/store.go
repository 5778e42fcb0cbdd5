package store

import (
	"context"
	"database/sql"
	errs "errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/DaanHessen/fieldmap-tui/internal/engine"
)

var (
	ErrNoChange = errs.New("no change")
	ErrNotFound = errs.New("not found")
)

// DB wraps gorm.DB for the postgres gateway and exposes Close.
type DB struct {
	gorm *gorm.DB
	sql  *sql.DB
}

func (d *DB) Close() error   { return d.sql.Close() }
func (d *DB) Gorm() *gorm.DB { return d.gorm }

// OpenPostgres connects to postgres.
func OpenPostgres(ctx context.Context, dsn string) (*DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("missing DSN")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return nil, err
	}
	sdb, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sdb.SetConnMaxLifetime(30 * time.Minute)
	sdb.SetMaxOpenConns(10)
	sdb.SetMaxIdleConns(5)
	if err := sdb.PingContext(ctx); err != nil {
		return nil, err
	}
	return &DB{gorm: gdb, sql: sdb}, nil
}

// WithTx executes fn within a database transaction.
func (d *DB) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return d.gorm.WithContext(ctx).Transaction(fn)
}

// SaveRecord is one row of the save log.
type SaveRecord struct {
	ID        uuid.UUID
	SavedAt   time.Time
	ItemCount int
}

// PostgresGateway persists datasets in the buildings/floors/items tables.
// A save replaces all rows in one transaction and appends to the save log.
type PostgresGateway struct {
	db *DB
}

func NewPostgresGateway(db *DB) *PostgresGateway { return &PostgresGateway{db: db} }

func (g *PostgresGateway) Load(ctx context.Context) (engine.Dataset, error) {
	var ds engine.Dataset
	err := g.db.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		ds, err = readDataset(ctx, gormQuery(tx))
		return err
	})
	if err != nil {
		return engine.Dataset{}, wrap(err, "load dataset")
	}
	log.Printf("store: loaded %d items from postgres", ds.Count())
	return ds, nil
}

func (g *PostgresGateway) Save(ctx context.Context, ds engine.Dataset) error {
	err := g.db.WithTx(ctx, func(tx *gorm.DB) error {
		exec := gormExec(tx)
		if err := writeDataset(ctx, exec, ds); err != nil {
			return err
		}
		return exec(ctx, `INSERT INTO saves(id, saved_at, item_count) VALUES (?,?,?)`, uuid.New(), time.Now().UTC(), ds.Count())
	})
	if err != nil {
		return wrap(err, "save dataset")
	}
	log.Printf("store: saved %d items to postgres", ds.Count())
	return nil
}

// LastSave returns the most recent save log entry.
func (g *PostgresGateway) LastSave(ctx context.Context) (SaveRecord, error) {
	row := g.db.gorm.WithContext(ctx).Raw(`SELECT id, saved_at, item_count FROM saves ORDER BY saved_at DESC LIMIT 1`).Row()
	var rec SaveRecord
	if err := row.Scan(&rec.ID, &rec.SavedAt, &rec.ItemCount); err != nil {
		if errs.Is(err, sql.ErrNoRows) {
			return SaveRecord{}, ErrNotFound
		}
		return SaveRecord{}, err
	}
	return rec, nil
}

func gormQuery(tx *gorm.DB) queryFunc {
	return func(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
		return tx.WithContext(ctx).Raw(query, args...).Rows()
	}
}

func gormExec(tx *gorm.DB) execFunc {
	return func(ctx context.Context, query string, args ...any) error {
		return tx.WithContext(ctx).Exec(query, args...).Error
	}
}

// Helper error wrap
func wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, msg)
}
