package engine

import "testing"

func TestClassifyExactAndNested(t *testing.T) {
	cases := map[string]string{
		TypeValveBall:     "Valve",
		TypeValveSolenoid: "Valve",
		TypePumpBooster:   "Pump",
		TypeTankVertical:  "Tank",
		TypeChiller:       "HVAC",
		TypeFlowMeter:     "Instrument",
		TypeMCC:           "Electrical",
		TypePipeElbow:     "Piping",
	}
	for typ, want := range cases {
		if got := Classify(typ); got != want {
			t.Fatalf("Classify(%q) = %q, want %q", typ, got, want)
		}
	}
}

func TestClassifyLegacyFallback(t *testing.T) {
	if got, want := Classify("VALVE_GATE"), Classify(TypeValveControl); got != want || got != "Valve" {
		t.Fatalf("VALVE_GATE should group with valves, got %q (registered %q)", got, want)
	}
	if got := Classify("booster_pump_2"); got != "Pump" {
		t.Fatalf("lower-case legacy pump got %q", got)
	}
	if got := Classify("PUMP_VALVE_ASSEMBLY"); got != "Valve" {
		t.Fatalf("valve tokens win over pump tokens, got %q", got)
	}
	if got := Classify("STORAGE_VESSEL"); got != "Tank" {
		t.Fatalf("vessel should be a tank, got %q", got)
	}
}

func TestClassifyOther(t *testing.T) {
	for _, typ := range []string{"", "DESK", "fire_extinguisher"} {
		if got := Classify(typ); got != CategoryOther {
			t.Fatalf("Classify(%q) = %q, want %q", typ, got, CategoryOther)
		}
	}
}

func TestKnownTypesClassifyToTheirGroup(t *testing.T) {
	labels := map[string]bool{}
	for _, l := range CategoryLabels() {
		labels[l] = true
	}
	for _, typ := range KnownTypes() {
		c := Classify(typ)
		if !labels[c] || c == CategoryOther {
			t.Fatalf("known type %q classified as %q", typ, c)
		}
	}
}

func TestLabelFilter(t *testing.T) {
	f := NewLabelFilter()
	pump := NewItem("1", TypePump, 0, 0)
	if f.IsVisible(pump) {
		t.Fatalf("unset categories are hidden")
	}
	if !f.Toggle("Pump") || !f.IsVisible(pump) {
		t.Fatalf("toggle should show pump labels")
	}
	f.Toggle("Pump")
	if f.ShowLabel(pump, false, false) {
		t.Fatalf("label should be hidden again")
	}
	if !f.ShowLabel(pump, true, false) || !f.ShowLabel(pump, false, true) {
		t.Fatalf("highlighted and selected items always show labels")
	}
}
