package engine

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"
)

type fakeNav struct{ suspended, resumed int }

func (n *fakeNav) Suspend() { n.suspended++ }
func (n *fakeNav) Resume()  { n.resumed++ }

type noticeLog struct{ msgs []string }

func (l *noticeLog) Notify(msg string) { l.msgs = append(l.msgs, msg) }

type memGateway struct {
	ds      Dataset
	loadErr error
	saveErr error
	saved   []Dataset
}

func (g *memGateway) Load(ctx context.Context) (Dataset, error) { return g.ds, g.loadErr }
func (g *memGateway) Save(ctx context.Context, ds Dataset) error {
	if g.saveErr != nil {
		return g.saveErr
	}
	g.saved = append(g.saved, ds)
	return nil
}

func newTestController(t *testing.T) (*Controller, *Session, *fakeNav, *noticeLog) {
	t.Helper()
	nav := &fakeNav{}
	notes := &noticeLog{}
	c := NewController(NewRepository(0), WithIDs(&SequenceIDs{Prefix: "id"}), WithNavigator(nav), WithNotifier(notes))
	s := NewSession(floorA)
	c.SetEditing(s, true)
	return c, s, nav, notes
}

// down returns a straight-down ray hitting the floor at (x, z).
func down(x, z float64) Ray {
	return Ray{Origin: Vec3{X: x, Y: 50, Z: z}, Dir: Vec3{Y: -1}}
}

func TestPlaceScenario(t *testing.T) {
	c, s, _, _ := newTestController(t)
	if !c.SelectTool(s, TypeTankVertical) || s.State() != StatePlacing {
		t.Fatalf("expected placing state, got %s", s.State())
	}
	c.SetMode(s, ModeProperties)
	it, ok := c.Place(s, Vec3{X: 3, Z: 7})
	if !ok {
		t.Fatalf("place failed")
	}
	want := PlacedItem{ID: it.ID, Type: TypeTankVertical, X: 3, Y: 0, Z: 7, Rotation: 0, Scale: 1, Label: "New Item", Status: StatusNormal}
	if it != want {
		t.Fatalf("placed %+v, want %+v", it, want)
	}
	if s.Selection != it.ID || s.Tool != "" || s.Mode != ModeMove {
		t.Fatalf("placement must select, clear tool and switch to move: %+v", s)
	}
	if items := c.Repository().ItemsFor(floorA); len(items) != 1 {
		t.Fatalf("expected one item, got %d", len(items))
	}
}

func TestClickFloorPlacesOnceRoundedToWholeCells(t *testing.T) {
	c, s, _, _ := newTestController(t)
	c.SelectTool(s, TypePump)
	c.ClickFloor(s, down(2.6, -1.4))
	c.ClickFloor(s, down(8, 8))
	items := c.Repository().ItemsFor(floorA)
	if len(items) != 1 {
		t.Fatalf("one item per tool activation, got %d", len(items))
	}
	if items[0].X != 3 || items[0].Z != -1 {
		t.Fatalf("expected (3,-1), got (%v,%v)", items[0].X, items[0].Z)
	}
}

func TestPlaceWithoutToolIsNoOp(t *testing.T) {
	c, s, _, _ := newTestController(t)
	if _, ok := c.Place(s, Vec3{}); ok {
		t.Fatalf("place without tool must be a no-op")
	}
	view := NewSession(floorA)
	if c.SelectTool(view, TypePump) {
		t.Fatalf("tools are edit-mode only")
	}
	if c.Repository().CanUndo() {
		t.Fatalf("no history expected")
	}
}

func TestDragSnapsAndKeepsElevation(t *testing.T) {
	c, s, nav, _ := newTestController(t)
	c.SelectTool(s, TypeValve)
	it, _ := c.Place(s, Vec3{X: 1, Z: 1})
	c.SetElevation(s, 2.25)
	if !c.PointerDown(s, it.ID) || s.State() != StateDragging {
		t.Fatalf("expected drag to start")
	}
	if nav.suspended != 1 {
		t.Fatalf("camera must be suspended on capture")
	}
	c.PointerMove(s, down(4.3, 5.74))
	c.PointerUp(s)
	got, _ := c.Repository().Find(floorA, it.ID)
	if got.X != 4.5 || got.Z != 5.5 || got.Y != 2.25 {
		t.Fatalf("unexpected drag result %+v", got)
	}
	if nav.resumed != 1 || s.Dragging() {
		t.Fatalf("pointer-up must release capture and resume camera")
	}
}

func TestDragSkipsUnchangedPositions(t *testing.T) {
	c, s, _, _ := newTestController(t)
	c.SelectTool(s, TypeValve)
	it, _ := c.Place(s, Vec3{X: 1, Z: 1})
	before, _ := c.Repository().HistoryDepth()
	c.PointerDown(s, it.ID)
	c.PointerMove(s, down(1.1, 0.9))
	c.PointerMove(s, down(1.6, 1))
	c.PointerMove(s, down(1.7, 1.1))
	c.PointerUp(s)
	after, _ := c.Repository().HistoryDepth()
	if after-before != 1 {
		t.Fatalf("only the one real position change should be recorded, got %d", after-before)
	}
}

func TestDragSuppressesFollowingClick(t *testing.T) {
	c, s, _, _ := newTestController(t)
	c.SelectTool(s, TypeValve)
	a, _ := c.Place(s, Vec3{X: 0, Z: 0})
	c.SelectTool(s, TypePump)
	b, _ := c.Place(s, Vec3{X: 5, Z: 5})
	if s.Selection != b.ID {
		t.Fatalf("expected %s selected", b.ID)
	}
	c.PointerDown(s, a.ID)
	c.PointerMove(s, down(2, 2))
	c.PointerUp(s)
	c.Click(s, a.ID)
	if s.Selection != b.ID {
		t.Fatalf("a drag must not also select, selection=%s", s.Selection)
	}
	c.PointerDown(s, a.ID)
	c.PointerUp(s)
	c.Click(s, a.ID)
	if s.Selection != a.ID {
		t.Fatalf("a plain click selects, selection=%s", s.Selection)
	}
}

func TestCancelGestureResumesCameraOnce(t *testing.T) {
	c, s, nav, _ := newTestController(t)
	c.SelectTool(s, TypeValve)
	it, _ := c.Place(s, Vec3{})
	c.PointerDown(s, it.ID)
	c.PointerMove(s, down(3, 3))
	c.CancelGesture(s)
	c.PointerUp(s)
	c.ToggleEdit(s)
	if nav.suspended != 1 || nav.resumed != 1 {
		t.Fatalf("suspend/resume must pair exactly once, got %d/%d", nav.suspended, nav.resumed)
	}
}

func TestToggleEditEndsDragAndClearsState(t *testing.T) {
	c, s, nav, _ := newTestController(t)
	c.SelectTool(s, TypeValve)
	it, _ := c.Place(s, Vec3{})
	c.Search(s, "new")
	c.PointerDown(s, it.ID)
	c.ToggleEdit(s)
	if s.State() != StateView || s.Selection != "" || s.Tool != "" || s.Highlighted != nil {
		t.Fatalf("toggle must clear selection, tool and highlights: %+v", s)
	}
	if nav.resumed != 1 {
		t.Fatalf("toggle must release the drag")
	}
}

func TestViewModeBlocksEdits(t *testing.T) {
	c, s, _, _ := newTestController(t)
	c.SelectTool(s, TypeValve)
	it, _ := c.Place(s, Vec3{})
	c.ToggleEdit(s)
	c.Click(s, it.ID)
	if s.Selection != it.ID || s.EditorOpen {
		t.Fatalf("view mode click selects for inspection only")
	}
	if c.PointerDown(s, it.ID) || c.DeleteSelected(s) || c.Rotate(s, 1) {
		t.Fatalf("view mode must refuse drag/delete/edit")
	}
	c.Copy(s)
	if _, ok := c.Paste(s); ok {
		t.Fatalf("paste is edit-mode only")
	}
}

func TestPropertiesModeOpensEditorAndEditsImmediately(t *testing.T) {
	c, s, _, _ := newTestController(t)
	c.SelectTool(s, TypeValve)
	it, _ := c.Place(s, Vec3{})
	c.SetMode(s, ModeProperties)
	if c.PointerDown(s, it.ID) {
		t.Fatalf("properties mode must not start drags")
	}
	c.Click(s, it.ID)
	if !s.EditorOpen {
		t.Fatalf("expected property editor open")
	}
	c.Rotate(s, 1)
	c.SetScale(s, 2)
	c.SetElevation(s, 1.5)
	c.SetLabel(s, "Feed valve")
	c.SetType(s, TypeValveCheck)
	got, _ := c.Selected(s)
	if math.Abs(got.Rotation-math.Pi/2) > 1e-9 || got.Scale != 2 || got.Y != 1.5 || got.Label != "Feed valve" || got.Type != TypeValveCheck {
		t.Fatalf("edits not applied: %+v", got)
	}
	c.Rotate(s, -2)
	got, _ = c.Selected(s)
	if math.Abs(got.Rotation-3*math.Pi/2) > 1e-9 {
		t.Fatalf("rotation should wrap into [0,2π), got %v", got.Rotation)
	}
	if c.SetScale(s, 0) || c.SetScale(s, -1) {
		t.Fatalf("non-positive scale must be refused")
	}
	if past, _ := c.Repository().HistoryDepth(); past != 7 {
		t.Fatalf("each edit is one history entry, depth %d", past)
	}
}

func TestDeleteSelected(t *testing.T) {
	c, s, _, _ := newTestController(t)
	if c.DeleteSelected(s) {
		t.Fatalf("delete without selection is a no-op")
	}
	c.SelectTool(s, TypeValve)
	it, _ := c.Place(s, Vec3{})
	if !c.HandleKey(s, "delete") {
		t.Fatalf("delete key not handled")
	}
	if _, ok := c.Repository().Find(floorA, it.ID); ok || s.Selection != "" {
		t.Fatalf("delete must remove and clear selection")
	}
}

func TestAutoItemsRefuseDragDeleteAndEdit(t *testing.T) {
	c, s, nav, notes := newTestController(t)
	auto := PlacedItem{ID: "auto-1", Type: TypePump, Scale: 1, Label: "Rule pump", Auto: true}
	c.Install(s, Dataset{Buildings: []Building{{ID: "b1", Floors: []Floor{{ID: "1F", Items: []PlacedItem{auto}}}}}})
	before := c.Repository().Dataset()
	c.Click(s, auto.ID)
	if c.PointerDown(s, auto.ID) {
		t.Fatalf("drag of an auto item must be refused")
	}
	c.PointerMove(s, down(9, 9))
	c.PointerUp(s)
	if c.DeleteSelected(s) || c.SetLabel(s, "x") {
		t.Fatalf("delete/edit of an auto item must be refused")
	}
	if !reflect.DeepEqual(before, c.Repository().Dataset()) {
		t.Fatalf("dataset changed")
	}
	if len(notes.msgs) != 3 {
		t.Fatalf("each refusal should notify, got %v", notes.msgs)
	}
	if nav.suspended != 0 {
		t.Fatalf("camera must not be suspended for refused drags")
	}
}

func TestCustomAutoRule(t *testing.T) {
	nav := &fakeNav{}
	c := NewController(NewRepository(0), WithNavigator(nav), WithAutoRule(func(it PlacedItem) bool { return it.Type == TypeMCC }))
	s := NewSession(floorA)
	c.SetEditing(s, true)
	c.Repository().Upsert(floorA, NewItem("m", TypeMCC, 0, 0))
	if c.PointerDown(s, "m") {
		t.Fatalf("rule-marked item must not drag")
	}
}

func TestCopyPaste(t *testing.T) {
	c, s, _, _ := newTestController(t)
	if _, ok := c.Paste(s); ok {
		t.Fatalf("paste with empty clipboard is a no-op")
	}
	c.SelectTool(s, TypeTankHorizontal)
	src, _ := c.Place(s, Vec3{X: 1, Z: 2})
	c.SetElevation(s, 0.5)
	c.Rotate(s, 1)
	src, _ = c.Selected(s)
	if !c.HandleKey(s, "ctrl+c") {
		t.Fatalf("copy chord not handled")
	}
	c.HandleKey(s, "ctrl+v")
	dup, ok := c.Selected(s)
	if !ok || dup.ID == src.ID {
		t.Fatalf("paste must select a new id, got %+v", dup)
	}
	if dup.X != 3 || dup.Z != 4 || dup.Label != "New Item (Copy)" || dup.Y != 0.5 || dup.Rotation != src.Rotation || dup.Type != src.Type {
		t.Fatalf("unexpected duplicate %+v", dup)
	}
	orig, _ := c.Repository().Find(floorA, src.ID)
	if orig != src {
		t.Fatalf("original modified: %+v", orig)
	}
}

func TestPasteOfAutoItemIsUserOwned(t *testing.T) {
	c, s, _, _ := newTestController(t)
	c.Repository().Upsert(floorA, PlacedItem{ID: "a", Type: TypePump, Scale: 1, Label: "gen", Auto: true})
	c.Click(s, "a")
	c.Copy(s)
	dup, ok := c.Paste(s)
	if !ok || dup.Auto {
		t.Fatalf("pasted copy must be editable, got %+v", dup)
	}
}

func TestUndoRedoThroughController(t *testing.T) {
	c, s, _, _ := newTestController(t)
	c.SelectTool(s, TypeValve)
	it, _ := c.Place(s, Vec3{X: 1, Z: 1})
	c.HandleKey(s, "ctrl+z")
	if len(c.Repository().ItemsFor(floorA)) != 0 || s.Selection != "" {
		t.Fatalf("undo should remove the placement and drop the dangling selection")
	}
	c.HandleKey(s, "ctrl+shift+z")
	if _, ok := c.Repository().Find(floorA, it.ID); !ok {
		t.Fatalf("redo should restore the item")
	}
	if c.Undo(s) && c.Undo(s) {
		t.Fatalf("only one step of history exists")
	}
}

func TestSearchThroughController(t *testing.T) {
	c, s, _, notes := newTestController(t)
	c.Install(s, searchFixture())
	c.Click(s, "a")
	res := c.Search(s, "pump")
	if s.Floor != floorB || len(s.Highlighted) != 3 || res.TargetFloor == nil {
		t.Fatalf("search should highlight and switch floors: floor=%v hl=%v", s.Floor, s.Highlighted)
	}
	if s.Selection != "a" {
		t.Fatalf("search must not touch the selection")
	}
	c.Search(s, "zzz")
	if len(notes.msgs) != 1 || s.Floor != floorB {
		t.Fatalf("zero results notify and stay put: %v", notes.msgs)
	}
	c.Search(s, "")
	if len(notes.msgs) != 1 {
		t.Fatalf("blank search is silent")
	}
}

func TestStepFloorWraps(t *testing.T) {
	c, s, _, _ := newTestController(t)
	c.Install(s, searchFixture())
	c.StepFloor(s, -1)
	if s.Floor != (FloorKey{Building: "b2", Floor: "1F"}) {
		t.Fatalf("expected wrap to last floor, got %v", s.Floor)
	}
	c.StepFloor(s, 1)
	if s.Floor != floorA {
		t.Fatalf("expected wrap to first floor, got %v", s.Floor)
	}
}

func TestLoadAndSave(t *testing.T) {
	gw := &memGateway{ds: searchFixture()}
	c := NewController(NewRepository(0), WithGateway(gw))
	s := NewSession(FloorKey{Building: "missing", Floor: "x"})
	if err := c.Load(context.Background(), s); err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Floor != floorA || c.Repository().CanUndo() {
		t.Fatalf("load should land on the first floor with clean history")
	}
	c.SetEditing(s, true)
	c.SelectTool(s, TypeFan)
	c.Place(s, Vec3{})
	gw.saveErr = errors.New("disk full")
	if err := c.Save(context.Background()); err == nil {
		t.Fatalf("save failure must propagate")
	}
	if len(c.Repository().ItemsFor(floorA)) != 2 {
		t.Fatalf("failed save must not roll back state")
	}
	gw.saveErr = nil
	if err := c.Save(context.Background()); err != nil || len(gw.saved) != 1 {
		t.Fatalf("retry should succeed: %v", err)
	}
	gw.loadErr = errors.New("offline")
	if err := c.Load(context.Background(), s); err == nil {
		t.Fatalf("load failure must propagate")
	}
	if len(c.Repository().ItemsFor(floorA)) != 2 {
		t.Fatalf("failed load must keep state")
	}
}

func TestSaveRefusedUntilLoaded(t *testing.T) {
	gw := &memGateway{loadErr: errors.New("decode dataset: unexpected EOF")}
	c := NewController(NewRepository(0), WithGateway(gw))
	s := NewSession(floorA)
	if err := c.Load(context.Background(), s); err == nil {
		t.Fatalf("expected load error")
	}
	if c.Loaded() {
		t.Fatalf("failed load must not mark the controller loaded")
	}
	if err := c.Save(context.Background()); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("save after failed load: got %v, want ErrNotLoaded", err)
	}
	if len(gw.saved) != 0 {
		t.Fatalf("nothing may reach the gateway before a load succeeds")
	}

	gw.loadErr = nil
	gw.ds = searchFixture()
	if err := c.Load(context.Background(), s); err != nil {
		t.Fatalf("retry load: %v", err)
	}
	ds, err := c.Snapshot()
	if err != nil || ds.Count() != gw.ds.Count() {
		t.Fatalf("snapshot after load: %v", err)
	}
	if err := c.Persist(context.Background(), ds); err != nil || len(gw.saved) != 1 {
		t.Fatalf("persist: %v", err)
	}
}

func TestEditsAndPasteKeepExtraFields(t *testing.T) {
	c, s, _, _ := newTestController(t)
	it := NewItem("v1", TypeValveBall, 1, 1)
	it.Extra = NewExtra(map[string]any{"maker": "Acme", "installDate": "2021-04-01"})
	c.Install(s, Dataset{Buildings: []Building{{ID: floorA.Building, Floors: []Floor{{ID: floorA.Floor, Items: []PlacedItem{it}}}}}})
	c.SetEditing(s, true)
	c.SetMode(s, ModeProperties)
	c.Click(s, "v1")
	if !c.Rotate(s, 1) {
		t.Fatalf("rotate failed")
	}
	got, _ := c.Repository().Find(floorA, "v1")
	if v, _ := got.Extra.Get("maker"); v != "Acme" {
		t.Fatalf("extra lost on edit: %v", got.Extra.Fields())
	}
	c.Copy(s)
	dup, ok := c.Paste(s)
	if !ok {
		t.Fatalf("paste failed")
	}
	if v, _ := dup.Extra.Get("installDate"); v != "2021-04-01" {
		t.Fatalf("paste should copy extra fields, got %v", dup.Extra.Fields())
	}
}
