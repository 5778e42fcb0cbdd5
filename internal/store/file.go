package store

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/DaanHessen/fieldmap-tui/internal/engine"
)

// FileGateway keeps the dataset as one JSON document on disk.
type FileGateway struct {
	path string
}

func NewFileGateway(path string) (*FileGateway, error) {
	if path == "" {
		return nil, errors.New("missing data file path")
	}
	return &FileGateway{path: path}, nil
}

// Load reads the document. A missing file is an empty dataset.
func (g *FileGateway) Load(ctx context.Context) (engine.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return engine.Dataset{}, err
	}
	data, err := os.ReadFile(g.path)
	if os.IsNotExist(err) {
		log.Printf("store: %s not found, starting empty", g.path)
		return engine.Dataset{}, nil
	}
	if err != nil {
		return engine.Dataset{}, wrap(err, "read data file")
	}
	ds, err := Decode(data)
	if err != nil {
		return engine.Dataset{}, err
	}
	log.Printf("store: loaded %d items from %s", ds.Count(), g.path)
	return ds, nil
}

// Save writes the document through a temp file and rename so a failed write
// never truncates the previous copy.
func (g *FileGateway) Save(ctx context.Context, ds engine.Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := Encode(ds)
	if err != nil {
		return wrap(err, "encode dataset")
	}
	dir := filepath.Dir(g.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return wrap(err, "create data dir")
	}
	tmp, err := os.CreateTemp(dir, ".fieldmap-*.json")
	if err != nil {
		return wrap(err, "create temp file")
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return wrap(err, "write temp file")
	}
	if err := tmp.Close(); err != nil {
		return wrap(err, "close temp file")
	}
	if err := os.Rename(tmp.Name(), g.path); err != nil {
		return wrap(err, "replace data file")
	}
	log.Printf("store: saved %d items to %s", ds.Count(), g.path)
	return nil
}
