package text

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/DaanHessen/fieldmap-tui/internal/engine"
)

// Renderer turns markdown into terminal output.
type Renderer interface {
	Render(md string) (string, error)
}

// plainRenderer returns markdown untouched. Used when glamour cannot start.
type plainRenderer struct{}

func (plainRenderer) Render(md string) (string, error) { return md, nil }

func Plain() Renderer { return plainRenderer{} }

// NewGlamour returns a glamour renderer wrapped at width columns.
func NewGlamour(width int) (Renderer, error) {
	if width <= 0 {
		width = 40
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(width))
	if err != nil {
		return nil, err
	}
	return r, nil
}

// WithFallback prefers primary and falls back to backup on error.
func WithFallback(primary, fallback Renderer) Renderer {
	return &fallbackRenderer{p: primary, f: fallback}
}

type fallbackRenderer struct{ p, f Renderer }

func (r *fallbackRenderer) Render(md string) (string, error) {
	if r.p == nil {
		return r.f.Render(md)
	}
	if s, err := r.p.Render(md); err == nil {
		return s, nil
	}
	return r.f.Render(md)
}

// detailFields are equipment record fields shown when a document carries them.
var detailFields = []struct{ key, label string }{
	{"maker", "Maker"},
	{"system", "System"},
	{"installDate", "Installed"},
	{"location", "Location"},
}

// ItemSheet is the property sheet for one item.
func ItemSheet(it engine.PlacedItem, editable bool) string {
	var b strings.Builder
	b.WriteString("## " + escape(displayLabel(it)) + "\n\n")
	b.WriteString("| Field | Value |\n|---|---|\n")
	row := func(k, v string) { b.WriteString(fmt.Sprintf("| %s | %s |\n", k, escape(v))) }
	row("ID", it.ID)
	row("Type", it.Type)
	row("Category", engine.Classify(it.Type))
	row("Status", string(it.Status))
	row("Position", fmt.Sprintf("x %.1f  z %.1f", it.X, it.Z))
	row("Elevation", fmt.Sprintf("%.2f", it.Y))
	row("Rotation", fmt.Sprintf("%.0f°", it.Rotation*180/math.Pi))
	row("Scale", fmt.Sprintf("%.2f", it.Scale))
	for _, d := range detailFields {
		if v, ok := it.Extra.Get(d.key); ok {
			if s := fmt.Sprint(v); s != "" {
				row(d.label, s)
			}
		}
	}
	b.WriteString("\n")
	switch {
	case it.Auto:
		b.WriteString("_Auto-generated. Read only._\n")
	case editable:
		b.WriteString("`enter` label · `t` type · `r`/`R` rotate · `+`/`-` scale · `pgup`/`pgdown` elevation\n")
	}
	return b.String()
}

// FloorList renders every floor, marking the current one.
func FloorList(ds engine.Dataset, current engine.FloorKey) string {
	var b strings.Builder
	b.WriteString("## Floors\n\n")
	if len(ds.Buildings) == 0 {
		b.WriteString("_No floors loaded._\n")
		return b.String()
	}
	for _, bl := range ds.Buildings {
		name := bl.Name
		if name == "" {
			name = bl.ID
		}
		b.WriteString("**" + escape(name) + "**\n\n")
		for _, f := range bl.Floors {
			key := engine.FloorKey{Building: bl.ID, Floor: f.ID}
			mark := "-"
			if key == current {
				mark = "- ▶"
			}
			b.WriteString(fmt.Sprintf("%s %s (%d)\n", mark, escape(floorName(f)), len(f.Items)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// LabelToggles lists the label categories with their toggle digits.
func LabelToggles(f *engine.LabelFilter) string {
	var b strings.Builder
	b.WriteString("## Labels\n\n")
	for i, cat := range engine.CategoryLabels() {
		box := "[ ]"
		if f.Shown(cat) {
			box = "[x]"
		}
		b.WriteString(fmt.Sprintf("- `l%d` %s %s\n", i+1, box, cat))
	}
	return b.String()
}

// Help is the key reference.
func Help() string {
	return `# Field Map

## Viewing
| Key | Action |
|---|---|
| arrows | pan the plan |
| [ / ] | previous / next floor |
| / | search labels (esc clears) |
| l + digit | toggle label category |
| e | enter or leave edit mode |
| T | cycle theme |
| ctrl+s | save |
| ctrl+r | retry a failed load |
| ? | this help |
| q | quit |

## Editing
| Key | Action |
|---|---|
| 1-9 | pick a tool, then click the floor to place |
| m | switch MOVE / PROPERTIES |
| drag | move the selected item (MOVE) |
| enter | edit label (PROPERTIES) |
| t | edit type (PROPERTIES) |
| r / R | rotate 90° |
| + / - | scale |
| pgup / pgdown | elevation |
| delete | delete selection |
| ctrl+c / ctrl+v | copy / paste |
| ctrl+z / ctrl+shift+z / ctrl+y | undo / redo |
`
}

func displayLabel(it engine.PlacedItem) string {
	if strings.TrimSpace(it.Label) != "" {
		return it.Label
	}
	return it.Type
}

func floorName(f engine.Floor) string {
	if f.Label != "" {
		return f.Label
	}
	return f.ID
}

var mdEscaper = strings.NewReplacer("|", `\|`, "*", `\*`, "_", `\_`, "`", "\\`")

func escape(s string) string { return mdEscaper.Replace(s) }
