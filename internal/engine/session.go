package engine

// Session is the per-editor interaction context handed to every Controller
// call: which floor is shown, what is selected, which mode and tool are active.
type Session struct {
	Floor       FloorKey
	Selection   string
	Mode        Mode
	Editing     bool
	Tool        string
	Highlighted map[string]struct{}
	EditorOpen  bool
	Hover       string

	gesture       *gesture
	suppressClick bool
}

// gesture is one captured pointer drag on an item.
type gesture struct {
	key     FloorKey
	id      string
	planeY  float64
	dragged bool
	release func()
}

func NewSession(floor FloorKey) *Session {
	return &Session{Floor: floor, Mode: ModeMove}
}

// State summarizes the session as a single editor state.
func (s *Session) State() EditorState {
	switch {
	case !s.Editing:
		return StateView
	case s.gesture != nil:
		return StateDragging
	case s.Tool != "":
		return StatePlacing
	default:
		return StateIdle
	}
}

func (s *Session) Dragging() bool { return s.gesture != nil }

// DragTarget returns the id of the item being dragged, if any.
func (s *Session) DragTarget() (string, bool) {
	if s.gesture == nil {
		return "", false
	}
	return s.gesture.id, true
}

func (s *Session) IsHighlighted(id string) bool {
	_, ok := s.Highlighted[id]
	return ok
}

func (s *Session) clearSelection() {
	s.Selection = ""
	s.EditorOpen = false
}
