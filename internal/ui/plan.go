package ui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/DaanHessen/fieldmap-tui/internal/engine"
)

// planView is everything needed to draw or hit-test the floor plan.
type planView struct {
	cam    engine.OrthoCamera
	width  int
	height int
	items  []engine.PlacedItem
}

// hit returns the item drawn at cell (col, row). Later items are drawn on
// top, so the last match wins.
func (p planView) hit(col, row int) (string, bool) {
	id, found := "", false
	for _, it := range p.items {
		c, r := p.cam.Project(it.X, it.Z)
		if c == col && r == row {
			id, found = it.ID, true
		}
	}
	return id, found
}

type cell struct {
	ch    string
	style *lipgloss.Style
}

func (p planView) render(reg *Registry, st styles, sess *engine.Session, labels *engine.LabelFilter) string {
	if p.width <= 0 || p.height <= 0 {
		return ""
	}
	grid := make([][]cell, p.height)
	for r := range grid {
		grid[r] = make([]cell, p.width)
		for c := range grid[r] {
			grid[r][c] = cell{ch: " "}
			ray := p.cam.Ray(engine.Pointer{Col: float64(c), Row: float64(r)})
			if onUnit(ray.Origin.X, p.cam.CellX) && onUnit(ray.Origin.Z, p.cam.CellZ) {
				grid[r][c] = cell{ch: "·", style: &st.grid}
			}
		}
	}
	dragID, _ := sess.DragTarget()

	// labels first so glyphs always win a shared cell
	for _, it := range p.items {
		selected := it.ID == sess.Selection
		if !labels.ShowLabel(it, sess.IsHighlighted(it.ID), selected) {
			continue
		}
		col, row := p.cam.Project(it.X, it.Z)
		if row < 0 || row >= p.height {
			continue
		}
		text := it.Label
		if text == "" {
			text = it.Type
		}
		for i, ch := range []rune(text) {
			c := col + 2 + i
			if c < 0 {
				continue
			}
			if c >= p.width {
				break
			}
			grid[row][c] = cell{ch: string(ch), style: &st.label}
		}
	}
	for i := range p.items {
		it := p.items[i]
		col, row := p.cam.Project(it.X, it.Z)
		if col < 0 || col >= p.width || row < 0 || row >= p.height {
			continue
		}
		s := st.forStatus(it.Status)
		switch {
		case it.ID == dragID:
			s = st.dragging
		case it.ID == sess.Selection:
			s = st.selected
		case sess.IsHighlighted(it.ID):
			s = st.highlight
		}
		grid[row][col] = cell{ch: reg.Draw(it), style: &s}
	}

	var b strings.Builder
	for r, line := range grid {
		if r > 0 {
			b.WriteByte('\n')
		}
		for _, c := range line {
			if c.style == nil {
				b.WriteString(c.ch)
				continue
			}
			b.WriteString(c.style.Render(c.ch))
		}
	}
	return b.String()
}

func onUnit(v, step float64) bool {
	return math.Abs(v-math.Round(v)) < step/2
}
