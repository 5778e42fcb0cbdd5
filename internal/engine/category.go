package engine

import "strings"

const CategoryOther = "Other"

// CategoryGroup is one node of the equipment hierarchy. Members are matched
// exactly; SubGroups add one further level for sub-types.
type CategoryGroup struct {
	Label     string
	Members   []string
	SubGroups []CategoryGroup
}

// Categories is the static equipment hierarchy, in display order.
var Categories = []CategoryGroup{
	{Label: "Valve", Members: []string{TypeValve, TypeValveBall, TypeValveButterfly, TypeValveCheck, TypeValveRelief},
		SubGroups: []CategoryGroup{{Label: "Control", Members: []string{TypeValveControl, TypeValveSolenoid}}}},
	{Label: "Pump", Members: []string{TypePump, TypePumpCentrifugal, TypePumpBooster, TypePumpSump}},
	{Label: "Tank", Members: []string{TypeTankVertical, TypeTankHorizontal, TypeTankExpansion}},
	{Label: "HVAC", Members: []string{TypeAHU, TypeFan},
		SubGroups: []CategoryGroup{{Label: "Plant", Members: []string{TypeHeatExchanger, TypeChiller, TypeBoiler, TypeCoolingTower}}}},
	{Label: "Instrument", Members: []string{TypeGaugePressure, TypeGaugeTemp, TypeFlowMeter}},
	{Label: "Electrical", Members: []string{TypePanel, TypeMCC, TypeTransformer}},
	{Label: "Piping", Members: []string{TypePipe, TypePipeElbow}},
}

// heuristics are checked in order against the upper-cased raw type when no
// exact member matches. Order matters: "VALVE_PUMP_DISCHARGE" is a valve.
var heuristics = []struct {
	tokens []string
	label  string
}{
	{[]string{"VALVE", "VLV"}, "Valve"},
	{[]string{"PUMP"}, "Pump"},
	{[]string{"TANK", "VESSEL", "DRUM"}, "Tank"},
	{[]string{"AHU", "FAN", "EXCHANGER", "CHILLER", "BOILER", "TOWER", "HVAC"}, "HVAC"},
	{[]string{"GAUGE", "METER", "SENSOR", "TRANSMITTER"}, "Instrument"},
	{[]string{"PANEL", "MCC", "TRANSFORMER", "BREAKER", "SWITCH"}, "Electrical"},
	{[]string{"PIPE", "ELBOW", "TEE"}, "Piping"},
}

var exactIndex = buildExactIndex(Categories)

func buildExactIndex(groups []CategoryGroup) map[string]string {
	idx := map[string]string{}
	for _, g := range groups {
		for _, m := range g.Members {
			idx[m] = g.Label
		}
		for _, sub := range g.SubGroups {
			for _, m := range sub.Members {
				idx[m] = g.Label
			}
		}
	}
	return idx
}

// Classify maps an item type to its category label.
func Classify(typ string) string {
	if label, ok := exactIndex[typ]; ok {
		return label
	}
	upper := strings.ToUpper(typ)
	for _, h := range heuristics {
		if hasAny(upper, h.tokens...) {
			return h.label
		}
	}
	return CategoryOther
}

// CategoryLabels lists every category Classify can return, in display order.
func CategoryLabels() []string {
	out := make([]string, 0, len(Categories)+1)
	for _, g := range Categories {
		out = append(out, g.Label)
	}
	return append(out, CategoryOther)
}

// KnownTypes lists every type tag in the hierarchy.
func KnownTypes() []string {
	var out []string
	for _, g := range Categories {
		out = append(out, g.Members...)
		for _, sub := range g.SubGroups {
			out = append(out, sub.Members...)
		}
	}
	return out
}

func hasAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
