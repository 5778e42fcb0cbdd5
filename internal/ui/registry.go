package ui

import (
	"math"

	"github.com/DaanHessen/fieldmap-tui/internal/engine"
)

// Drawer returns the single-cell glyph for an item.
type Drawer func(it engine.PlacedItem) string

// Registry maps type tags to drawers. Types without a drawer get the
// placeholder so an unrecognized tag never breaks rendering.
type Registry struct {
	drawers     map[string]Drawer
	placeholder Drawer
}

func fixed(g string) Drawer { return func(engine.PlacedItem) string { return g } }

func quarter(rot float64) int {
	q := int(math.Round(rot/(math.Pi/2))) % 4
	if q < 0 {
		q += 4
	}
	return q
}

func pipeDrawer(it engine.PlacedItem) string {
	if quarter(it.Rotation)%2 == 0 {
		return "─"
	}
	return "│"
}

func elbowDrawer(it engine.PlacedItem) string {
	return [...]string{"└", "┌", "┐", "┘"}[quarter(it.Rotation)]
}

// NewRegistry registers a drawer for every known type.
func NewRegistry() *Registry {
	r := &Registry{drawers: map[string]Drawer{}, placeholder: fixed("?")}
	for _, t := range []string{engine.TypeValve, engine.TypeValveBall, engine.TypeValveButterfly, engine.TypeValveRelief} {
		r.Register(t, fixed("⋈"))
	}
	r.Register(engine.TypeValveCheck, func(it engine.PlacedItem) string {
		return [...]string{"▷", "▽", "◁", "△"}[quarter(it.Rotation)]
	})
	r.Register(engine.TypeValveControl, fixed("⊗"))
	r.Register(engine.TypeValveSolenoid, fixed("⊗"))
	for _, t := range []string{engine.TypePump, engine.TypePumpCentrifugal, engine.TypePumpBooster, engine.TypePumpSump} {
		r.Register(t, fixed("◉"))
	}
	for _, t := range []string{engine.TypeTankVertical, engine.TypeTankHorizontal, engine.TypeTankExpansion} {
		r.Register(t, fixed("▥"))
	}
	for _, t := range []string{engine.TypeHeatExchanger, engine.TypeChiller, engine.TypeBoiler, engine.TypeCoolingTower} {
		r.Register(t, fixed("≋"))
	}
	r.Register(engine.TypeAHU, fixed("▦"))
	r.Register(engine.TypeFan, fixed("✻"))
	r.Register(engine.TypeGaugePressure, fixed("◔"))
	r.Register(engine.TypeGaugeTemp, fixed("◔"))
	r.Register(engine.TypeFlowMeter, fixed("⊙"))
	r.Register(engine.TypePanel, fixed("▣"))
	r.Register(engine.TypeMCC, fixed("▣"))
	r.Register(engine.TypeTransformer, fixed("⌁"))
	r.Register(engine.TypePipe, pipeDrawer)
	r.Register(engine.TypePipeElbow, elbowDrawer)
	return r
}

func (r *Registry) Register(typ string, d Drawer) { r.drawers[typ] = d }

func (r *Registry) Lookup(typ string) (Drawer, bool) {
	d, ok := r.drawers[typ]
	return d, ok
}

// Draw renders it with its registered drawer or the placeholder.
func (r *Registry) Draw(it engine.PlacedItem) string {
	if d, ok := r.drawers[it.Type]; ok {
		return d(it)
	}
	return r.placeholder(it)
}
