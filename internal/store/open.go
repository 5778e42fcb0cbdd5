package store

import (
	"context"
	"fmt"

	"github.com/DaanHessen/fieldmap-tui/internal/engine"
	"github.com/DaanHessen/fieldmap-tui/internal/util"
)

// Open builds the gateway named by cfg.Store.Driver. The returned close
// function releases any connection the gateway holds.
func Open(ctx context.Context, cfg *util.Config) (engine.Gateway, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Store.Driver {
	case util.DriverFile, "":
		g, err := NewFileGateway(cfg.Store.Path)
		if err != nil {
			return nil, noop, err
		}
		return g, noop, nil
	case util.DriverSQLite:
		g, err := OpenSQLite(cfg.Store.Path)
		if err != nil {
			return nil, noop, err
		}
		return g, g.Close, nil
	case util.DriverPostgres:
		mig, err := NewMigrator(cfg.Store.DSN, cfg.Store.Migrations)
		if err != nil {
			return nil, noop, err
		}
		if err := mig.Up(ctx); err != nil && err != ErrNoChange {
			return nil, noop, wrap(err, "migrations")
		}
		db, err := OpenPostgres(ctx, cfg.Store.DSN)
		if err != nil {
			return nil, noop, err
		}
		return NewPostgresGateway(db), db.Close, nil
	case util.DriverS3:
		s3c := cfg.Store.S3
		g, err := NewS3Gateway(ctx, S3Config{
			Bucket:          s3c.Bucket,
			Key:             s3c.Key,
			Region:          s3c.Region,
			Endpoint:        s3c.Endpoint,
			PathStyle:       s3c.PathStyle,
			AccessKeyID:     s3c.AccessKeyID,
			SecretAccessKey: s3c.SecretAccessKey,
		})
		if err != nil {
			return nil, noop, err
		}
		return g, noop, nil
	}
	return nil, noop, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}
