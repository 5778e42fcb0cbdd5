package engine

// Repository holds the per-floor item collections behind a History.
// Every write produces a new Dataset and records it with History.Set.
type Repository struct {
	hist *History[Dataset]
}

// NewRepository starts an empty repository. historyLimit 0 keeps unbounded history.
func NewRepository(historyLimit int) *Repository {
	return &Repository{hist: NewHistory(Dataset{}, historyLimit)}
}

// Dataset returns the present snapshot as a deep copy.
func (r *Repository) Dataset() Dataset { return r.hist.Present().Clone() }

// ItemsFor returns the floor's items in order; empty for an unseen floor.
func (r *Repository) ItemsFor(key FloorKey) []PlacedItem {
	items := r.hist.Present().Items(key)
	if items == nil {
		return []PlacedItem{}
	}
	return items
}

func (r *Repository) Find(key FloorKey, id string) (PlacedItem, bool) {
	return r.hist.Present().Find(key, id)
}

// Floors lists all floor keys in building/floor order.
func (r *Repository) Floors() []FloorKey { return r.hist.Present().Keys() }

func (r *Repository) FloorLabel(key FloorKey) string { return r.hist.Present().FloorLabel(key) }

// Upsert appends item when its id is new on the floor, otherwise replaces the
// existing entry in place.
func (r *Repository) Upsert(key FloorKey, item PlacedItem) {
	cur := r.hist.Present()
	src := cur.Items(key)
	items := make([]PlacedItem, 0, len(src)+1)
	replaced := false
	for _, it := range src {
		if it.ID == item.ID {
			it = item
			replaced = true
		}
		items = append(items, it)
	}
	if !replaced {
		items = append(items, item)
	}
	r.hist.Set(cur.withItems(key, items))
}

// Remove drops the item with id from the floor. Absent ids leave history untouched.
func (r *Repository) Remove(key FloorKey, id string) bool {
	cur := r.hist.Present()
	src := cur.Items(key)
	items := make([]PlacedItem, 0, len(src))
	for _, it := range src {
		if it.ID != id {
			items = append(items, it)
		}
	}
	if len(items) == len(src) {
		return false
	}
	r.hist.Set(cur.withItems(key, items))
	return true
}

// ReplaceAll installs ds as a fresh baseline; a reload is not undoable.
func (r *Repository) ReplaceAll(ds Dataset) { r.hist.Reset(ds.Clone()) }

func (r *Repository) Undo() bool    { return r.hist.Undo() }
func (r *Repository) Redo() bool    { return r.hist.Redo() }
func (r *Repository) CanUndo() bool { return r.hist.CanUndo() }
func (r *Repository) CanRedo() bool { return r.hist.CanRedo() }

// HistoryDepth returns the past and future stack sizes.
func (r *Repository) HistoryDepth() (int, int) { return r.hist.Depth() }
