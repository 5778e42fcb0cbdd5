package engine

// History is an undo/redo container around snapshot values of type S.
// Callers must treat every S handed to Set as frozen: History keeps it on the
// past stack verbatim.
type History[S any] struct {
	past    []S
	present S
	future  []S
	limit   int // 0 keeps every past snapshot
}

// NewHistory starts a history at baseline. A positive limit caps the past stack,
// dropping the oldest entries first.
func NewHistory[S any](baseline S, limit int) *History[S] {
	if limit < 0 {
		limit = 0
	}
	return &History[S]{present: baseline, limit: limit}
}

func (h *History[S]) Present() S { return h.present }

// Set records next as the new present and forgets any redo entries.
func (h *History[S]) Set(next S) {
	h.past = append(h.past, h.present)
	if h.limit > 0 && len(h.past) > h.limit {
		h.past = append(h.past[:0:0], h.past[len(h.past)-h.limit:]...)
	}
	h.present = next
	h.future = nil
}

// Undo steps back one snapshot. It reports false when there is nothing to undo.
func (h *History[S]) Undo() bool {
	n := len(h.past)
	if n == 0 {
		return false
	}
	prev := h.past[n-1]
	h.past = h.past[:n-1]
	h.future = append([]S{h.present}, h.future...)
	h.present = prev
	return true
}

// Redo steps forward one snapshot. It reports false when there is nothing to redo.
func (h *History[S]) Redo() bool {
	if len(h.future) == 0 {
		return false
	}
	next := h.future[0]
	h.future = h.future[1:]
	h.past = append(h.past, h.present)
	h.present = next
	return true
}

// Reset makes baseline the present and clears both stacks.
func (h *History[S]) Reset(baseline S) {
	h.past = nil
	h.future = nil
	h.present = baseline
}

func (h *History[S]) CanUndo() bool { return len(h.past) > 0 }
func (h *History[S]) CanRedo() bool { return len(h.future) > 0 }

// Depth returns the sizes of the past and future stacks.
func (h *History[S]) Depth() (past, future int) { return len(h.past), len(h.future) }
