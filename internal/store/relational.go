package store

import (
	"context"
	"database/sql"

	"github.com/DaanHessen/fieldmap-tui/internal/engine"
)

// queryFunc and execFunc let the gorm and database/sql backends share the
// row mapping below. Both use "?" placeholders.
type queryFunc func(ctx context.Context, query string, args ...any) (*sql.Rows, error)
type execFunc func(ctx context.Context, query string, args ...any) error

const (
	selectBuildings = `SELECT id, name, extra FROM buildings ORDER BY pos`
	selectFloors    = `SELECT building_id, id, label, extra FROM floors ORDER BY building_id, pos`
	selectItems     = `SELECT building_id, floor_id, id, type, x, y, z, rotation, scale, label, status, auto, extra
		FROM items ORDER BY building_id, floor_id, pos`
)

func readDataset(ctx context.Context, query queryFunc) (engine.Dataset, error) {
	var ds engine.Dataset
	bIndex := map[string]int{}
	rows, err := query(ctx, selectBuildings)
	if err != nil {
		return ds, wrap(err, "select buildings")
	}
	for rows.Next() {
		var b engine.Building
		var extra string
		if err := rows.Scan(&b.ID, &b.Name, &extra); err != nil {
			rows.Close()
			return ds, wrap(err, "scan building")
		}
		b.Extra = parseExtraColumn(extra)
		bIndex[b.ID] = len(ds.Buildings)
		ds.Buildings = append(ds.Buildings, b)
	}
	if err := closeRows(rows); err != nil {
		return ds, wrap(err, "read buildings")
	}

	type floorPos struct{ b, f int }
	fIndex := map[engine.FloorKey]floorPos{}
	rows, err = query(ctx, selectFloors)
	if err != nil {
		return ds, wrap(err, "select floors")
	}
	for rows.Next() {
		var bid, extra string
		var f engine.Floor
		if err := rows.Scan(&bid, &f.ID, &f.Label, &extra); err != nil {
			rows.Close()
			return ds, wrap(err, "scan floor")
		}
		bi, ok := bIndex[bid]
		if !ok {
			continue
		}
		f.Extra = parseExtraColumn(extra)
		fIndex[engine.FloorKey{Building: bid, Floor: f.ID}] = floorPos{bi, len(ds.Buildings[bi].Floors)}
		ds.Buildings[bi].Floors = append(ds.Buildings[bi].Floors, f)
	}
	if err := closeRows(rows); err != nil {
		return ds, wrap(err, "read floors")
	}

	rows, err = query(ctx, selectItems)
	if err != nil {
		return ds, wrap(err, "select items")
	}
	for rows.Next() {
		var key engine.FloorKey
		var it engine.PlacedItem
		var status, extra string
		if err := rows.Scan(&key.Building, &key.Floor, &it.ID, &it.Type, &it.X, &it.Y, &it.Z, &it.Rotation, &it.Scale, &it.Label, &status, &it.Auto, &extra); err != nil {
			rows.Close()
			return ds, wrap(err, "scan item")
		}
		pos, ok := fIndex[key]
		if !ok {
			continue
		}
		if it.Scale <= 0 {
			it.Scale = 1
		}
		it.Status = engine.ParseStatus(status)
		it.Extra = parseExtraColumn(extra)
		fl := &ds.Buildings[pos.b].Floors[pos.f]
		fl.Items = append(fl.Items, it)
	}
	if err := closeRows(rows); err != nil {
		return ds, wrap(err, "read items")
	}
	return ds, nil
}

// writeDataset replaces every row. Callers run it inside one transaction.
func writeDataset(ctx context.Context, exec execFunc, ds engine.Dataset) error {
	for _, stmt := range []string{`DELETE FROM items`, `DELETE FROM floors`, `DELETE FROM buildings`} {
		if err := exec(ctx, stmt); err != nil {
			return wrap(err, stmt)
		}
	}
	for bi, b := range ds.Buildings {
		extra, err := extraColumn(b.Extra)
		if err != nil {
			return err
		}
		if err := exec(ctx, `INSERT INTO buildings(id, name, extra, pos) VALUES (?,?,?,?)`, b.ID, b.Name, extra, bi); err != nil {
			return wrap(err, "insert building")
		}
		for fi, f := range b.Floors {
			extra, err := extraColumn(f.Extra)
			if err != nil {
				return err
			}
			if err := exec(ctx, `INSERT INTO floors(building_id, id, label, extra, pos) VALUES (?,?,?,?,?)`, b.ID, f.ID, f.Label, extra, fi); err != nil {
				return wrap(err, "insert floor")
			}
			for ii, it := range f.Items {
				extra, err := extraColumn(it.Extra)
				if err != nil {
					return err
				}
				if err := exec(ctx, `INSERT INTO items(building_id, floor_id, id, type, x, y, z, rotation, scale, label, status, auto, extra, pos)
					VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
					b.ID, f.ID, it.ID, it.Type, it.X, it.Y, it.Z, it.Rotation, it.Scale, it.Label, string(it.Status), it.Auto, extra, ii); err != nil {
					return wrap(err, "insert item")
				}
			}
		}
	}
	return nil
}

func closeRows(rows *sql.Rows) error {
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	return rows.Close()
}
