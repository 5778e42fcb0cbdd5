package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// ErrNotLoaded is returned by Save while no load has succeeded, so a failed
// startup load can never overwrite the stored document with an empty one.
var ErrNotLoaded = errors.New("data was never loaded; reload before saving")

// Gateway loads and saves whole datasets.
type Gateway interface {
	Load(ctx context.Context) (Dataset, error)
	Save(ctx context.Context, ds Dataset) error
}

// Notifier shows a blocking notice to the user.
type Notifier interface {
	Notify(msg string)
}

// NotifyFunc adapts a function to Notifier.
type NotifyFunc func(msg string)

func (f NotifyFunc) Notify(msg string) { f(msg) }

// Navigator is the camera input the editor suspends while an item is dragged.
type Navigator interface {
	Suspend()
	Resume()
}

// Controller turns pointer and keyboard events into repository edits. It is
// the only writer of the Repository.
type Controller struct {
	repo    *Repository
	clip    Clipboard
	labels  *LabelFilter
	ids     IDSource
	nav     Navigator
	notify  Notifier
	gateway Gateway
	isAuto  func(PlacedItem) bool
	loaded  bool
}

type Option func(*Controller)

func WithIDs(ids IDSource) Option           { return func(c *Controller) { c.ids = ids } }
func WithNavigator(n Navigator) Option      { return func(c *Controller) { c.nav = n } }
func WithNotifier(n Notifier) Option        { return func(c *Controller) { c.notify = n } }
func WithGateway(g Gateway) Option          { return func(c *Controller) { c.gateway = g } }
func WithLabelFilter(f *LabelFilter) Option { return func(c *Controller) { c.labels = f } }

// WithAutoRule replaces the test for auto-generated items. The default trusts
// the item's Auto flag.
func WithAutoRule(fn func(PlacedItem) bool) Option { return func(c *Controller) { c.isAuto = fn } }

func NewController(repo *Repository, opts ...Option) *Controller {
	c := &Controller{
		repo:   repo,
		labels: NewLabelFilter(),
		ids:    NewClockIDs(),
		isAuto: func(it PlacedItem) bool { return it.Auto },
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Controller) Repository() *Repository { return c.repo }
func (c *Controller) Labels() *LabelFilter     { return c.labels }
func (c *Controller) Clipboard() *Clipboard    { return &c.clip }

// Selected resolves the session selection on the current floor.
func (c *Controller) Selected(s *Session) (PlacedItem, bool) {
	if s.Selection == "" {
		return PlacedItem{}, false
	}
	return c.repo.Find(s.Floor, s.Selection)
}

// Mode and tool ---------------------------------------------------------------

// ToggleEdit flips between viewing and editing.
func (c *Controller) ToggleEdit(s *Session) { c.SetEditing(s, !s.Editing) }

// SetEditing enters or leaves edit mode. Either way selection, tool and search
// highlights are cleared and any drag in progress ends.
func (c *Controller) SetEditing(s *Session, on bool) {
	c.endGesture(s)
	s.suppressClick = false
	s.Editing = on
	s.clearSelection()
	s.Tool = ""
	s.Highlighted = nil
}

// SelectTool arms typ for placement. An empty typ disarms.
func (c *Controller) SelectTool(s *Session, typ string) bool {
	if !s.Editing || s.gesture != nil {
		return false
	}
	s.Tool = typ
	return true
}

func (c *Controller) SetMode(s *Session, m Mode) {
	if m != ModeMove && m != ModeProperties {
		return
	}
	s.Mode = m
	if m == ModeMove {
		s.EditorOpen = false
	}
}

func (c *Controller) ToggleMode(s *Session) {
	if s.Mode == ModeProperties {
		c.SetMode(s, ModeMove)
		return
	}
	c.SetMode(s, ModeProperties)
}

// Floors ----------------------------------------------------------------------

// SwitchFloor shows another floor. Selection belongs to the old floor and is dropped.
func (c *Controller) SwitchFloor(s *Session, key FloorKey) {
	if key == s.Floor {
		return
	}
	c.endGesture(s)
	s.Floor = key
	s.clearSelection()
	s.Hover = ""
}

// StepFloor moves delta floors through the building/floor order, wrapping.
func (c *Controller) StepFloor(s *Session, delta int) {
	keys := c.repo.Floors()
	if len(keys) == 0 {
		return
	}
	idx := -1
	for i, k := range keys {
		if k == s.Floor {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.SwitchFloor(s, keys[0])
		return
	}
	idx = ((idx+delta)%len(keys) + len(keys)) % len(keys)
	c.SwitchFloor(s, keys[idx])
}

// Placement -------------------------------------------------------------------

// ClickFloor handles a click on empty floor. With a tool armed it places an
// item where the pointer ray meets y=0; otherwise it clears the selection.
func (c *Controller) ClickFloor(s *Session, r Ray) {
	if c.consumeSuppressedClick(s) {
		return
	}
	if s.Editing && s.Tool != "" {
		p, ok := IntersectHorizontal(r, 0)
		if !ok {
			return
		}
		c.Place(s, p)
		return
	}
	s.clearSelection()
}

// Place drops one item of the armed tool type at p, rounded to whole cells,
// selects it and disarms the tool. Without an armed tool it does nothing.
func (c *Controller) Place(s *Session, p Vec3) (PlacedItem, bool) {
	if !s.Editing || s.Tool == "" {
		return PlacedItem{}, false
	}
	item := NewItem(c.ids.Next(), s.Tool, math.Round(p.X), math.Round(p.Z))
	c.repo.Upsert(s.Floor, item)
	s.Selection = item.ID
	s.EditorOpen = false
	s.Mode = ModeMove
	s.Tool = ""
	return item, true
}

// Pointer gestures ------------------------------------------------------------

// PointerDown starts a drag on item id when editing in move mode.
func (c *Controller) PointerDown(s *Session, id string) bool {
	s.suppressClick = false
	if !s.Editing || s.Mode != ModeMove || s.Tool != "" || s.gesture != nil {
		return false
	}
	item, ok := c.repo.Find(s.Floor, id)
	if !ok {
		return false
	}
	if c.isAuto(item) {
		c.notifyf("%q is generated automatically and cannot be moved", displayName(item))
		return false
	}
	s.gesture = &gesture{key: s.Floor, id: id, planeY: item.Y, release: c.acquireNavigation()}
	return true
}

// PointerMove drags the captured item to where r meets its horizontal plane,
// snapped to GridStep. The vertical offset never changes.
func (c *Controller) PointerMove(s *Session, r Ray) {
	g := s.gesture
	if g == nil {
		return
	}
	g.dragged = true
	p, ok := IntersectHorizontal(r, g.planeY)
	if !ok {
		return
	}
	item, ok := c.repo.Find(g.key, g.id)
	if !ok {
		c.endGesture(s)
		return
	}
	x, z := Snap(p.X, GridStep), Snap(p.Z, GridStep)
	if x == item.X && z == item.Z {
		return
	}
	item.X, item.Z = x, z
	c.repo.Upsert(g.key, item)
}

// PointerUp ends the gesture. A gesture that moved swallows the click that follows.
func (c *Controller) PointerUp(s *Session) {
	if s.gesture == nil {
		return
	}
	s.suppressClick = s.gesture.dragged
	c.endGesture(s)
}

// CancelGesture abandons a drag without a pointer-up, e.g. on focus loss.
func (c *Controller) CancelGesture(s *Session) {
	c.endGesture(s)
	s.suppressClick = false
}

// Click selects item id. In properties mode it also opens the property editor.
func (c *Controller) Click(s *Session, id string) {
	if c.consumeSuppressedClick(s) {
		return
	}
	if _, ok := c.repo.Find(s.Floor, id); !ok {
		return
	}
	s.Selection = id
	s.EditorOpen = s.Editing && s.Mode == ModeProperties
}

func (c *Controller) consumeSuppressedClick(s *Session) bool {
	if s.suppressClick {
		s.suppressClick = false
		return true
	}
	return false
}

func (c *Controller) acquireNavigation() func() {
	if c.nav == nil {
		return func() {}
	}
	c.nav.Suspend()
	released := false
	return func() {
		if released {
			return
		}
		released = true
		c.nav.Resume()
	}
}

func (c *Controller) endGesture(s *Session) {
	if s.gesture == nil {
		return
	}
	g := s.gesture
	s.gesture = nil
	g.release()
}

// Property editor -------------------------------------------------------------

// Rotate turns the selection by quarter turns (positive is counter-clockwise),
// keeping the result in [0, 2π).
func (c *Controller) Rotate(s *Session, quarterTurns int) bool {
	return c.editSelected(s, func(it *PlacedItem) {
		r := math.Mod(it.Rotation+float64(quarterTurns)*math.Pi/2, 2*math.Pi)
		if r < 0 {
			r += 2 * math.Pi
		}
		it.Rotation = r
	})
}

// SetScale sets a positive scale on the selection. Non-positive values are ignored.
func (c *Controller) SetScale(s *Session, scale float64) bool {
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return false
	}
	return c.editSelected(s, func(it *PlacedItem) { it.Scale = scale })
}

// SetElevation sets the selection's vertical offset.
func (c *Controller) SetElevation(s *Session, y float64) bool {
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return false
	}
	return c.editSelected(s, func(it *PlacedItem) { it.Y = y })
}

func (c *Controller) SetLabel(s *Session, label string) bool {
	return c.editSelected(s, func(it *PlacedItem) { it.Label = label })
}

func (c *Controller) SetType(s *Session, typ string) bool {
	if typ == "" {
		return false
	}
	return c.editSelected(s, func(it *PlacedItem) { it.Type = typ })
}

func (c *Controller) editSelected(s *Session, fn func(*PlacedItem)) bool {
	if !s.Editing {
		return false
	}
	item, ok := c.Selected(s)
	if !ok {
		return false
	}
	if c.isAuto(item) {
		c.notifyf("%q is generated automatically and cannot be edited", displayName(item))
		return false
	}
	next := item
	fn(&next)
	if next == item {
		return false
	}
	c.repo.Upsert(s.Floor, next)
	return true
}

// DeleteSelected removes the selection when editing.
func (c *Controller) DeleteSelected(s *Session) bool {
	if !s.Editing {
		return false
	}
	item, ok := c.Selected(s)
	if !ok {
		return false
	}
	if c.isAuto(item) {
		c.notifyf("%q is generated automatically and cannot be deleted", displayName(item))
		return false
	}
	if s.gesture != nil && s.gesture.id == item.ID {
		c.endGesture(s)
	}
	c.repo.Remove(s.Floor, item.ID)
	s.clearSelection()
	return true
}

// Clipboard -------------------------------------------------------------------

// Copy puts the selection on the clipboard.
func (c *Controller) Copy(s *Session) bool {
	item, ok := c.Selected(s)
	if !ok {
		return false
	}
	c.clip.Copy(item)
	return true
}

// Paste inserts an offset duplicate of the clipboard on the current floor and
// selects it. Editing only.
func (c *Controller) Paste(s *Session) (PlacedItem, bool) {
	if !s.Editing {
		return PlacedItem{}, false
	}
	dup, ok := c.clip.Duplicate(c.ids.Next())
	if !ok {
		return PlacedItem{}, false
	}
	c.repo.Upsert(s.Floor, dup)
	s.Selection = dup.ID
	s.EditorOpen = false
	return dup, true
}

// History ---------------------------------------------------------------------

func (c *Controller) Undo(s *Session) bool {
	c.endGesture(s)
	ok := c.repo.Undo()
	c.pruneSelection(s)
	return ok
}

func (c *Controller) Redo(s *Session) bool {
	c.endGesture(s)
	ok := c.repo.Redo()
	c.pruneSelection(s)
	return ok
}

func (c *Controller) pruneSelection(s *Session) {
	if _, ok := c.Selected(s); !ok {
		s.clearSelection()
	}
}

// Search ----------------------------------------------------------------------

// Search highlights label matches and jumps to another floor when none of the
// matches are on the current one. Selection is left alone.
func (c *Controller) Search(s *Session, term string) SearchResult {
	res, ok := Search(term, c.repo.Dataset(), s.Floor)
	if !ok {
		return res
	}
	if res.Empty() {
		c.notifyf("No items match %q", term)
		return res
	}
	s.Highlighted = res.MatchingIDs
	if res.TargetFloor != nil {
		c.endGesture(s)
		s.Floor = *res.TargetFloor
		s.Hover = ""
	}
	return res
}

func (c *Controller) ClearSearch(s *Session) { s.Highlighted = nil }

// ToggleLabels flips label visibility for a category.
func (c *Controller) ToggleLabels(category string) bool { return c.labels.Toggle(category) }

// Keyboard --------------------------------------------------------------------

// HandleKey applies the editor's keyboard shortcuts. It reports whether the
// chord is an editor shortcut; the caller must not route keys typed into a
// text field here.
func (c *Controller) HandleKey(s *Session, chord string) bool {
	switch ParseShortcut(chord) {
	case ShortcutUndo:
		c.Undo(s)
	case ShortcutRedo:
		c.Redo(s)
	case ShortcutCopy:
		c.Copy(s)
	case ShortcutPaste:
		c.Paste(s)
	case ShortcutDelete:
		c.DeleteSelected(s)
	default:
		return false
	}
	return true
}

// Persistence -----------------------------------------------------------------

// Install replaces the repository with ds as a fresh baseline and resets the
// session onto a floor that exists.
func (c *Controller) Install(s *Session, ds Dataset) {
	c.endGesture(s)
	c.repo.ReplaceAll(ds)
	c.loaded = true
	s.clearSelection()
	s.Highlighted = nil
	s.Tool = ""
	s.suppressClick = false
	s.Hover = ""
	if !ds.HasFloor(s.Floor) {
		if keys := ds.Keys(); len(keys) > 0 {
			s.Floor = keys[0]
		}
	}
}

// Loaded reports whether a dataset has been installed.
func (c *Controller) Loaded() bool { return c.loaded }

// Fetch reads the dataset through the gateway without touching the
// repository. It is safe to call off the event loop.
func (c *Controller) Fetch(ctx context.Context) (Dataset, error) {
	if c.gateway == nil {
		return Dataset{}, fmt.Errorf("no persistence gateway configured")
	}
	ds, err := c.gateway.Load(ctx)
	if err != nil {
		return Dataset{}, fmt.Errorf("load dataset: %w", err)
	}
	return ds, nil
}

// Load fetches the dataset and installs it. On error the repository is untouched.
func (c *Controller) Load(ctx context.Context, s *Session) error {
	ds, err := c.Fetch(ctx)
	if err != nil {
		return err
	}
	c.Install(s, ds)
	return nil
}

// Snapshot is the dataset a save would write. It fails with ErrNotLoaded until
// a load has succeeded.
func (c *Controller) Snapshot() (Dataset, error) {
	if !c.loaded {
		return Dataset{}, ErrNotLoaded
	}
	return c.repo.Dataset(), nil
}

// Persist writes ds through the gateway. It does not read the repository, so
// it may run off the event loop with a Snapshot taken on it.
func (c *Controller) Persist(ctx context.Context, ds Dataset) error {
	if c.gateway == nil {
		return fmt.Errorf("no persistence gateway configured")
	}
	if err := c.gateway.Save(ctx, ds); err != nil {
		return fmt.Errorf("save dataset: %w", err)
	}
	return nil
}

// Save writes the present dataset. In-memory state is never rolled back on
// failure.
func (c *Controller) Save(ctx context.Context) error {
	ds, err := c.Snapshot()
	if err != nil {
		return err
	}
	return c.Persist(ctx, ds)
}

func (c *Controller) notifyf(format string, args ...any) {
	if c.notify == nil {
		return
	}
	c.notify.Notify(fmt.Sprintf(format, args...))
}

func displayName(it PlacedItem) string {
	if it.Label != "" {
		return it.Label
	}
	return it.ID
}
