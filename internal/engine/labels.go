package engine

// LabelFilter decides per category whether item labels render. Unset is hidden.
type LabelFilter struct {
	shown map[string]bool
}

func NewLabelFilter() *LabelFilter { return &LabelFilter{shown: map[string]bool{}} }

// Toggle flips a category and returns the new value.
func (f *LabelFilter) Toggle(category string) bool {
	if f.shown == nil {
		f.shown = map[string]bool{}
	}
	f.shown[category] = !f.shown[category]
	return f.shown[category]
}

func (f *LabelFilter) Shown(category string) bool { return f.shown[category] }

func (f *LabelFilter) IsVisible(item PlacedItem) bool { return f.shown[Classify(item.Type)] }

// ShowLabel is the render predicate: highlighted and selected items always
// carry a label.
func (f *LabelFilter) ShowLabel(item PlacedItem, highlighted, selected bool) bool {
	return highlighted || selected || f.IsVisible(item)
}
