package engine

// FloorKey addresses one floor of one building. No item is reachable without it.
type FloorKey struct {
	Building string
	Floor    string
}

func (k FloorKey) String() string { return k.Building + "/" + k.Floor }

// IsZero reports whether the key addresses nothing.
func (k FloorKey) IsZero() bool { return k.Building == "" && k.Floor == "" }

// PlacedItem is one equipment marker on a floor plan.
type PlacedItem struct {
	ID       string
	Type     string
	X        float64
	Y        float64
	Z        float64
	Rotation float64 // radians
	Scale    float64
	Label    string
	Status   Status
	Auto     bool // synthesized by an external rule; not user editable
	Extra    *Extra
}

// NewItem returns an item with the default transform.
func NewItem(id, typ string, x, z float64) PlacedItem {
	return PlacedItem{ID: id, Type: typ, X: x, Z: z, Scale: 1, Label: DefaultLabel, Status: StatusNormal}
}

// Floor owns an ordered list of items. Order is rendering order only.
type Floor struct {
	ID    string
	Label string
	Items []PlacedItem
	Extra *Extra
}

type Building struct {
	ID     string
	Name   string
	Floors []Floor
	Extra  *Extra
}

// Dataset is the whole document: buildings, their floors, their items.
// A Dataset held by History is never modified in place; writers build a new
// one through the with* helpers below and readers receive copies.
type Dataset struct {
	Buildings []Building
}

// Keys lists every floor in building/floor order.
func (d Dataset) Keys() []FloorKey {
	var keys []FloorKey
	for _, b := range d.Buildings {
		for _, f := range b.Floors {
			keys = append(keys, FloorKey{Building: b.ID, Floor: f.ID})
		}
	}
	return keys
}

// HasFloor reports whether the key exists in the dataset.
func (d Dataset) HasFloor(key FloorKey) bool {
	bi, fi := d.locate(key)
	return bi >= 0 && fi >= 0
}

// FloorLabel returns the display label for a floor, falling back to its id.
func (d Dataset) FloorLabel(key FloorKey) string {
	bi, fi := d.locate(key)
	if bi < 0 || fi < 0 {
		return key.Floor
	}
	f := d.Buildings[bi].Floors[fi]
	if f.Label == "" {
		return f.ID
	}
	return f.Label
}

// Items returns a copy of the floor's items; nil when the floor is unseen.
func (d Dataset) Items(key FloorKey) []PlacedItem {
	bi, fi := d.locate(key)
	if bi < 0 || fi < 0 {
		return nil
	}
	src := d.Buildings[bi].Floors[fi].Items
	out := make([]PlacedItem, len(src))
	copy(out, src)
	return out
}

// Find looks up an item by id on one floor.
func (d Dataset) Find(key FloorKey, id string) (PlacedItem, bool) {
	bi, fi := d.locate(key)
	if bi < 0 || fi < 0 {
		return PlacedItem{}, false
	}
	for _, it := range d.Buildings[bi].Floors[fi].Items {
		if it.ID == id {
			return it, true
		}
	}
	return PlacedItem{}, false
}

// Count returns the number of items across all floors.
func (d Dataset) Count() int {
	n := 0
	for _, b := range d.Buildings {
		for _, f := range b.Floors {
			n += len(f.Items)
		}
	}
	return n
}

// Clone deep-copies the dataset.
func (d Dataset) Clone() Dataset {
	out := Dataset{Buildings: make([]Building, len(d.Buildings))}
	for i, b := range d.Buildings {
		nb := b
		nb.Floors = make([]Floor, len(b.Floors))
		for j, f := range b.Floors {
			nf := f
			nf.Items = make([]PlacedItem, len(f.Items))
			copy(nf.Items, f.Items)
			nb.Floors[j] = nf
		}
		out.Buildings[i] = nb
	}
	return out
}

func (d Dataset) locate(key FloorKey) (int, int) {
	for i, b := range d.Buildings {
		if b.ID != key.Building {
			continue
		}
		for j, f := range b.Floors {
			if f.ID == key.Floor {
				return i, j
			}
		}
		return i, -1
	}
	return -1, -1
}

// withItems returns a new dataset where the floor's items are replaced by
// items. Only the path to the floor is copied; other floors share storage,
// which is safe because nothing writes into a stored slice.
func (d Dataset) withItems(key FloorKey, items []PlacedItem) Dataset {
	bi, fi := d.locate(key)
	buildings := make([]Building, len(d.Buildings), len(d.Buildings)+1)
	copy(buildings, d.Buildings)
	if bi < 0 {
		buildings = append(buildings, Building{ID: key.Building, Name: key.Building})
		bi = len(buildings) - 1
	}
	b := buildings[bi]
	floors := make([]Floor, len(b.Floors), len(b.Floors)+1)
	copy(floors, b.Floors)
	if fi < 0 {
		floors = append(floors, Floor{ID: key.Floor, Label: key.Floor})
		fi = len(floors) - 1
	}
	floors[fi].Items = items
	b.Floors = floors
	buildings[bi] = b
	return Dataset{Buildings: buildings}
}
