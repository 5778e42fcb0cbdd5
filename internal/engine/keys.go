package engine

import "strings"

// Shortcut is an editor command bound to a key chord.
type Shortcut int

const (
	ShortcutNone Shortcut = iota
	ShortcutUndo
	ShortcutRedo
	ShortcutCopy
	ShortcutPaste
	ShortcutDelete
)

// ParseShortcut maps a key chord such as "ctrl+shift+z" or "cmd+c" to a
// Shortcut. Ctrl, Cmd, Meta and Super all count as the primary modifier.
func ParseShortcut(chord string) Shortcut {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(chord)), "+")
	if len(parts) == 0 {
		return ShortcutNone
	}
	key := parts[len(parts)-1]
	var primary, shift bool
	for _, p := range parts[:len(parts)-1] {
		switch p {
		case "ctrl", "cmd", "meta", "super":
			primary = true
		case "shift":
			shift = true
		default:
			return ShortcutNone
		}
	}
	if !primary {
		if !shift && (key == "delete" || key == "backspace") {
			return ShortcutDelete
		}
		return ShortcutNone
	}
	switch key {
	case "z":
		if shift {
			return ShortcutRedo
		}
		return ShortcutUndo
	case "y":
		return ShortcutRedo
	case "c":
		if !shift {
			return ShortcutCopy
		}
	case "v":
		if !shift {
			return ShortcutPaste
		}
	}
	return ShortcutNone
}
