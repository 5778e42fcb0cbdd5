package engine

import (
	"reflect"
	"testing"
)

func TestHistorySetUndoRedo(t *testing.T) {
	h := NewHistory(1, 0)
	h.Set(2)
	if !h.Undo() {
		t.Fatalf("expected undo to succeed")
	}
	if got := h.Present(); got != 1 {
		t.Fatalf("undo should restore 1, got %d", got)
	}
	if !h.Redo() {
		t.Fatalf("expected redo to succeed")
	}
	if got := h.Present(); got != 2 {
		t.Fatalf("redo should restore 2, got %d", got)
	}
}

func TestHistoryEmptyStacksAreNoOps(t *testing.T) {
	h := NewHistory("a", 0)
	if h.Undo() || h.Redo() {
		t.Fatalf("undo/redo on empty stacks must report false")
	}
	if h.Present() != "a" {
		t.Fatalf("present changed by no-op")
	}
}

func TestHistorySetClearsFuture(t *testing.T) {
	h := NewHistory(0, 0)
	h.Set(1)
	h.Set(2)
	h.Undo()
	h.Set(3)
	if h.CanRedo() {
		t.Fatalf("set must clear the future stack")
	}
	h.Undo()
	if h.Present() != 1 {
		t.Fatalf("expected 1 after undo, got %d", h.Present())
	}
}

func TestHistoryUnboundedDepth(t *testing.T) {
	const n = 5000
	h := NewHistory(0, 0)
	for i := 1; i <= n; i++ {
		h.Set(i)
	}
	for i := 0; i < n; i++ {
		if !h.Undo() {
			t.Fatalf("undo %d failed", i)
		}
	}
	if h.Present() != 0 {
		t.Fatalf("expected baseline after %d undos, got %d", n, h.Present())
	}
	if h.CanUndo() {
		t.Fatalf("nothing should remain to undo")
	}
}

func TestHistoryLimitDropsOldest(t *testing.T) {
	h := NewHistory(0, 3)
	for i := 1; i <= 10; i++ {
		h.Set(i)
	}
	if past, _ := h.Depth(); past != 3 {
		t.Fatalf("expected past depth 3, got %d", past)
	}
	for h.Undo() {
	}
	if h.Present() != 7 {
		t.Fatalf("oldest reachable snapshot should be 7, got %d", h.Present())
	}
}

func TestHistoryRedoAfterUndoOrder(t *testing.T) {
	h := NewHistory(0, 0)
	h.Set(1)
	h.Set(2)
	h.Set(3)
	h.Undo()
	h.Undo()
	var seen []int
	for h.Redo() {
		seen = append(seen, h.Present())
	}
	if !reflect.DeepEqual(seen, []int{2, 3}) {
		t.Fatalf("redo order wrong: %v", seen)
	}
}

func TestHistoryReset(t *testing.T) {
	h := NewHistory(0, 0)
	h.Set(1)
	h.Undo()
	h.Reset(9)
	if h.CanUndo() || h.CanRedo() || h.Present() != 9 {
		t.Fatalf("reset must clear stacks and install baseline")
	}
}
