package engine

import "strings"

// String backed enums for storage interoperability.

type Status string
type Mode string
type EditorState string

const (
	StatusNormal  Status = "NORMAL"
	StatusWarning Status = "WARNING"
	StatusFault   Status = "FAULT"
	StatusOffline Status = "OFFLINE"
)

var AllStatuses = []Status{StatusNormal, StatusWarning, StatusFault, StatusOffline}

// ParseStatus maps stored text to a Status, ignoring case. Empty text is
// normal; unknown values are kept verbatim so they survive a save.
func ParseStatus(s string) Status {
	s = strings.TrimSpace(s)
	for _, st := range AllStatuses {
		if strings.EqualFold(string(st), s) {
			return st
		}
	}
	if s == "" {
		return StatusNormal
	}
	return Status(s)
}

// Mode decides what a click on an existing item does in edit mode.
const (
	ModeMove       Mode = "move"
	ModeProperties Mode = "properties"
)

const (
	StateView     EditorState = "view"
	StateIdle     EditorState = "edit_idle"
	StatePlacing  EditorState = "edit_placing"
	StateDragging EditorState = "edit_move_dragging"
)

const (
	DefaultLabel = "New Item"
	CopySuffix   = " (Copy)"
	PasteOffset  = 2.0
	GridStep     = 0.5
)

// Equipment type tags known to the classifier and the renderer.
const (
	TypeValve          = "VALVE"
	TypeValveBall      = "VALVE_BALL"
	TypeValveButterfly = "VALVE_BUTTERFLY"
	TypeValveCheck     = "VALVE_CHECK"
	TypeValveControl   = "VALVE_CONTROL"
	TypeValveSolenoid  = "VALVE_SOLENOID"
	TypeValveRelief    = "VALVE_RELIEF"

	TypePump            = "PUMP"
	TypePumpCentrifugal = "PUMP_CENTRIFUGAL"
	TypePumpBooster     = "PUMP_BOOSTER"
	TypePumpSump        = "PUMP_SUMP"

	TypeTankVertical   = "TANK_VERTICAL"
	TypeTankHorizontal = "TANK_HORIZONTAL"
	TypeTankExpansion  = "TANK_EXPANSION"

	TypeHeatExchanger = "HEAT_EXCHANGER"
	TypeChiller       = "CHILLER"
	TypeBoiler        = "BOILER"
	TypeCoolingTower  = "COOLING_TOWER"
	TypeAHU           = "AHU"
	TypeFan           = "FAN"

	TypeGaugePressure = "GAUGE_PRESSURE"
	TypeGaugeTemp     = "GAUGE_TEMP"
	TypeFlowMeter     = "FLOW_METER"

	TypePanel       = "PANEL"
	TypeMCC         = "MCC"
	TypeTransformer = "TRANSFORMER"

	TypePipe      = "PIPE"
	TypePipeElbow = "PIPE_ELBOW"
)

// PaletteTypes is the tool palette offered to the user, in key order.
var PaletteTypes = []string{
	TypeValve, TypePump, TypeTankVertical, TypeHeatExchanger, TypeAHU,
	TypeGaugePressure, TypePanel, TypePipe, TypeFan,
}
