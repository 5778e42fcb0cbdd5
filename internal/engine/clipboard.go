package engine

// Clipboard holds at most one copied item.
type Clipboard struct {
	item *PlacedItem
}

// Copy stores a value copy of item, replacing any previous one.
func (c *Clipboard) Copy(item PlacedItem) {
	cp := item
	c.item = &cp
}

func (c *Clipboard) Empty() bool { return c.item == nil }

// Peek returns the held item.
func (c *Clipboard) Peek() (PlacedItem, bool) {
	if c.item == nil {
		return PlacedItem{}, false
	}
	return *c.item, true
}

// Duplicate builds the item a paste would insert: a fresh id, offset by
// PasteOffset on both planar axes, label suffixed with CopySuffix.
func (c *Clipboard) Duplicate(id string) (PlacedItem, bool) {
	src, ok := c.Peek()
	if !ok {
		return PlacedItem{}, false
	}
	dup := src
	dup.ID = id
	dup.X += PasteOffset
	dup.Z += PasteOffset
	dup.Label += CopySuffix
	dup.Auto = false
	return dup, true
}
