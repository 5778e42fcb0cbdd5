package store

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/pkg/errors"
	"github.com/spf13/cast"

	"github.com/DaanHessen/fieldmap-tui/internal/engine"
)

// Wire shapes. "valves" is the historical field name for a floor's items.
// Keys the editor does not model ride along in extra and are written back
// after the known ones.
type wireBuilding struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Floors []wireFloor `json:"floors"`
	extra  map[string]any
}

type wireFloor struct {
	ID    string     `json:"id"`
	Label string     `json:"label"`
	Items []wireItem `json:"valves"`
	extra map[string]any
}

type wireItem struct {
	ID       string  `json:"id"`
	Type     string  `json:"type"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Z        float64 `json:"z"`
	Rotation float64 `json:"rotation"`
	Scale    float64 `json:"scale"`
	Label    string  `json:"label"`
	Status   string  `json:"status"`
	Auto     bool    `json:"auto,omitempty"`
	extra    map[string]any
}

var (
	buildingKeys = []string{"id", "name", "floors"}
	floorKeys    = []string{"id", "label", "valves", "items"}
	itemKeys     = []string{"id", "type", "x", "y", "z", "rotation", "scale", "label", "status", "auto"}
)

func (w wireBuilding) MarshalJSON() ([]byte, error) {
	type plain wireBuilding
	return marshalWithExtra(plain(w), w.extra, buildingKeys)
}

func (w wireFloor) MarshalJSON() ([]byte, error) {
	type plain wireFloor
	return marshalWithExtra(plain(w), w.extra, floorKeys)
}

func (w wireItem) MarshalJSON() ([]byte, error) {
	type plain wireItem
	return marshalWithExtra(plain(w), w.extra, itemKeys)
}

// marshalWithExtra encodes v and appends the extra keys that do not collide
// with a known one.
func marshalWithExtra(v any, extra map[string]any, known []string) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return data, err
	}
	rest := make(map[string]any, len(extra))
	for k, val := range extra {
		if !contains(known, k) {
			rest[k] = val
		}
	}
	if len(rest) == 0 {
		return data, nil
	}
	more, err := json.Marshal(rest)
	if err != nil {
		return nil, errors.Wrap(err, "encode extra fields")
	}
	out := make([]byte, 0, len(data)+len(more))
	out = append(out, data[:len(data)-1]...)
	out = append(out, ',')
	return append(out, more[1:]...), nil
}

// Encode renders ds in the persisted document shape.
func Encode(ds engine.Dataset) ([]byte, error) {
	out := make([]wireBuilding, 0, len(ds.Buildings))
	for _, b := range ds.Buildings {
		wb := wireBuilding{ID: b.ID, Name: b.Name, Floors: make([]wireFloor, 0, len(b.Floors)), extra: b.Extra.Fields()}
		for _, f := range b.Floors {
			wf := wireFloor{ID: f.ID, Label: f.Label, Items: make([]wireItem, 0, len(f.Items)), extra: f.Extra.Fields()}
			for _, it := range f.Items {
				wf.Items = append(wf.Items, wireItem{
					ID: it.ID, Type: it.Type, X: it.X, Y: it.Y, Z: it.Z,
					Rotation: it.Rotation, Scale: it.Scale, Label: it.Label,
					Status: string(it.Status), Auto: it.Auto,
					extra: it.Extra.Fields(),
				})
			}
			wb.Floors = append(wb.Floors, wf)
		}
		out = append(out, wb)
	}
	return json.MarshalIndent(out, "", "  ")
}

// Decode parses a persisted document. The source may be loosely typed:
// numbers can arrive as strings or be missing, ids can be numbers. Bad numeric
// fields fall back to their defaults instead of failing the load. Both a bare
// building array and {"buildings": [...]} are accepted.
func Decode(data []byte) (engine.Dataset, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return engine.Dataset{}, nil
	}
	raw, err := decodeAny(data)
	if err != nil {
		return engine.Dataset{}, errors.Wrap(err, "decode dataset")
	}
	var buildings []any
	switch v := raw.(type) {
	case []any:
		buildings = v
	case map[string]any:
		buildings, _ = v["buildings"].([]any)
	case nil:
	default:
		return engine.Dataset{}, errors.Errorf("decode dataset: unexpected top-level %T", raw)
	}
	var ds engine.Dataset
	for _, rb := range buildings {
		bm, ok := rb.(map[string]any)
		if !ok {
			continue
		}
		b := engine.Building{ID: text(bm["id"]), Name: text(bm["name"]), Extra: extraOf(bm, buildingKeys)}
		floors, _ := bm["floors"].([]any)
		for _, rf := range floors {
			fm, ok := rf.(map[string]any)
			if !ok {
				continue
			}
			f := engine.Floor{ID: text(fm["id"]), Label: text(fm["label"]), Extra: extraOf(fm, floorKeys)}
			items, ok := fm["valves"].([]any)
			if !ok {
				items, _ = fm["items"].([]any)
			}
			for _, ri := range items {
				im, ok := ri.(map[string]any)
				if !ok {
					continue
				}
				f.Items = append(f.Items, decodeItem(im))
			}
			b.Floors = append(b.Floors, f)
		}
		ds.Buildings = append(ds.Buildings, b)
	}
	return ds, nil
}

func decodeItem(m map[string]any) engine.PlacedItem {
	scale := number(m["scale"], 1)
	if scale <= 0 {
		scale = 1
	}
	return engine.PlacedItem{
		ID:       text(m["id"]),
		Type:     text(m["type"]),
		X:        number(m["x"], 0),
		Y:        number(m["y"], 0),
		Z:        number(m["z"], 0),
		Rotation: number(m["rotation"], 0),
		Scale:    scale,
		Label:    text(m["label"]),
		Status:   engine.ParseStatus(text(m["status"])),
		Auto:     cast.ToBool(unwrapNumber(m["auto"])),
		Extra:    extraOf(m, itemKeys),
	}
}

func decodeAny(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	err := dec.Decode(&raw)
	return raw, err
}

func extraOf(m map[string]any, known []string) *engine.Extra {
	var rest map[string]any
	for k, v := range m {
		if contains(known, k) {
			continue
		}
		if rest == nil {
			rest = map[string]any{}
		}
		rest[k] = v
	}
	return engine.NewExtra(rest)
}

// extraColumn is the text stored in the relational extra columns.
func extraColumn(e *engine.Extra) (string, error) {
	if e.Len() == 0 {
		return "", nil
	}
	data, err := json.Marshal(e.Fields())
	if err != nil {
		return "", errors.Wrap(err, "encode extra fields")
	}
	return string(data), nil
}

func parseExtraColumn(s string) *engine.Extra {
	if s == "" {
		return nil
	}
	raw, err := decodeAny([]byte(s))
	m, ok := raw.(map[string]any)
	if err != nil || !ok {
		return nil
	}
	return engine.NewExtra(m)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func number(v any, def float64) float64 {
	if v == nil {
		return def
	}
	f, err := cast.ToFloat64E(unwrapNumber(v))
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return f
}

func text(v any) string {
	if v == nil {
		return ""
	}
	s, err := cast.ToStringE(unwrapNumber(v))
	if err != nil {
		return ""
	}
	return s
}

// unwrapNumber hands json.Number to cast as its literal text, which keeps
// large integer ids digit-exact.
func unwrapNumber(v any) any {
	if n, ok := v.(json.Number); ok {
		return n.String()
	}
	return v
}
