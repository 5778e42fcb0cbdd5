package text

import (
	"errors"
	"strings"
	"testing"

	"github.com/DaanHessen/fieldmap-tui/internal/engine"
)

func TestItemSheet(t *testing.T) {
	it := engine.NewItem("42", engine.TypeValveBall, 1.5, -2)
	it.Label = "Main | Valve"
	md := ItemSheet(it, true)
	if !strings.Contains(md, `Main \| Valve`) {
		t.Fatalf("label not escaped:\n%s", md)
	}
	if !strings.Contains(md, "| Category | Valve |") {
		t.Fatalf("category missing:\n%s", md)
	}
	if !strings.Contains(md, "`t` type") {
		t.Fatalf("edit hints missing for editable sheet")
	}
	it.Auto = true
	if md := ItemSheet(it, true); !strings.Contains(md, "Read only") || strings.Contains(md, "`t` type") {
		t.Fatalf("auto item should be read only:\n%s", md)
	}
}

func TestItemSheetShowsEquipmentDetails(t *testing.T) {
	it := engine.NewItem("7", engine.TypePump, 0, 0)
	if md := ItemSheet(it, false); strings.Contains(md, "Maker") {
		t.Fatalf("no details expected without extra fields:\n%s", md)
	}
	it.Extra = engine.NewExtra(map[string]any{"maker": "Acme", "installDate": "2019-06-01", "location": "", "image": "x.png"})
	md := ItemSheet(it, false)
	if !strings.Contains(md, "| Maker | Acme |") || !strings.Contains(md, "| Installed | 2019-06-01 |") {
		t.Fatalf("details missing:\n%s", md)
	}
	if strings.Contains(md, "Location") || strings.Contains(md, "x.png") {
		t.Fatalf("empty or unlisted fields should not show:\n%s", md)
	}
}

func TestFloorListMarksCurrent(t *testing.T) {
	ds := engine.Dataset{Buildings: []engine.Building{{
		ID: "b1", Name: "Plant",
		Floors: []engine.Floor{
			{ID: "1F", Label: "Ground", Items: []engine.PlacedItem{engine.NewItem("a", engine.TypePump, 0, 0)}},
			{ID: "2F"},
		},
	}}}
	md := FloorList(ds, engine.FloorKey{Building: "b1", Floor: "2F"})
	if !strings.Contains(md, "- Ground (1)") {
		t.Fatalf("ground floor line missing:\n%s", md)
	}
	if !strings.Contains(md, "- ▶ 2F (0)") {
		t.Fatalf("current floor not marked:\n%s", md)
	}
	if md := FloorList(engine.Dataset{}, engine.FloorKey{}); !strings.Contains(md, "No floors") {
		t.Fatalf("empty dataset: %s", md)
	}
}

func TestLabelToggles(t *testing.T) {
	f := engine.NewLabelFilter()
	f.Toggle("Pump")
	md := LabelToggles(f)
	if !strings.Contains(md, "[x] Pump") || !strings.Contains(md, "[ ] Valve") {
		t.Fatalf("unexpected toggles:\n%s", md)
	}
}

type failing struct{}

func (failing) Render(string) (string, error) { return "", errors.New("boom") }

func TestWithFallback(t *testing.T) {
	r := WithFallback(failing{}, Plain())
	out, err := r.Render("# hi")
	if err != nil || out != "# hi" {
		t.Fatalf("fallback not used: %q %v", out, err)
	}
	r = WithFallback(nil, Plain())
	if out, _ := r.Render("x"); out != "x" {
		t.Fatalf("nil primary: %q", out)
	}
}
