// Package keymap parses key-combination strings like "CTRL+S" or
// "SHIFT+F1" and turns them into an ordered plan of key events. The
// plan is what an input-injection backend would replay; emitting it as
// data keeps this module free of any desktop toolkit.
package keymap

import (
	"log/slog"
	"strings"
	"unicode"
)

// Action selects how a chord is delivered.
type Action string

const (
	// ActionDown presses and holds.
	ActionDown Action = "down"
	// ActionUp releases a previously held chord.
	ActionUp Action = "up"
	// ActionTap presses and releases.
	ActionTap Action = "tap"
)

// ParseAction validates an action name.
func ParseAction(s string) (Action, bool) {
	switch Action(strings.ToLower(s)) {
	case ActionDown:
		return ActionDown, true
	case ActionUp:
		return ActionUp, true
	case ActionTap:
		return ActionTap, true
	}
	return "", false
}

// Key identifies one key. Named keys carry only a code; plain
// characters use code "unicode" plus the character itself.
type Key struct {
	Code string `json:"code"`
	Char string `json:"char,omitempty"`
}

// Direction is one half of a key stroke.
type Direction string

const (
	Press   Direction = "press"
	Release Direction = "release"
)

// Event is a single key transition in a plan.
type Event struct {
	Key       Key       `json:"key"`
	Direction Direction `json:"direction"`
}

// Chord is a parsed key combination: zero or more modifiers plus an
// optional main key.
type Chord struct {
	Modifiers []Key `json:"modifiers,omitempty"`
	Key       *Key  `json:"key,omitempty"`
}

var modifierCodes = map[string]string{
	"CTRL":    "control",
	"CONTROL": "control",
	"SHIFT":   "shift",
	"ALT":     "alt",
	"META":    "meta",
	"WIN":     "meta",
	"SUPER":   "meta",
}

var namedCodes = map[string]string{
	"F1": "f1", "F2": "f2", "F3": "f3", "F4": "f4",
	"F5": "f5", "F6": "f6", "F7": "f7", "F8": "f8",
	"F9": "f9", "F10": "f10", "F11": "f11", "F12": "f12",

	"SPACE":     "space",
	"ENTER":     "return",
	"RETURN":    "return",
	"TAB":       "tab",
	"ESCAPE":    "escape",
	"ESC":       "escape",
	"BACKSPACE": "backspace",
	"DELETE":    "delete",
	"DEL":       "delete",
	"INSERT":    "insert",
	"INS":       "insert",
	"HOME":      "home",
	"END":       "end",
	"PAGEUP":    "pageup",
	"PGUP":      "pageup",
	"PAGEDOWN":  "pagedown",
	"PGDN":      "pagedown",

	"UP": "up", "ARROWUP": "up",
	"DOWN": "down", "ARROWDOWN": "down",
	"LEFT": "left", "ARROWLEFT": "left",
	"RIGHT": "right", "ARROWRIGHT": "right",

	"NUMPAD0": "numpad0", "NUMPAD1": "numpad1", "NUMPAD2": "numpad2",
	"NUMPAD3": "numpad3", "NUMPAD4": "numpad4", "NUMPAD5": "numpad5",
	"NUMPAD6": "numpad6", "NUMPAD7": "numpad7", "NUMPAD8": "numpad8",
	"NUMPAD9": "numpad9",
}

// ParseChord splits a combination on '+' and classifies each token.
// Tokens are case-insensitive. When several non-modifier tokens
// appear, the last one wins. A token that matches nothing degrades to
// a unicode key built from its first character, with a warning.
func ParseChord(combo string, logger *slog.Logger) Chord {
	if logger == nil {
		logger = slog.Default()
	}
	var chord Chord
	for _, part := range strings.Split(combo, "+") {
		upper := strings.ToUpper(part)
		if code, ok := modifierCodes[upper]; ok {
			chord.Modifiers = append(chord.Modifiers, Key{Code: code})
			continue
		}
		if code, ok := namedCodes[upper]; ok {
			chord.Key = &Key{Code: code}
			continue
		}
		if len([]rune(upper)) == 1 {
			chord.Key = unicodeKey([]rune(upper)[0])
			continue
		}
		logger.Warn("unknown key, treating as unicode", "token", part)
		if r := []rune(upper); len(r) > 0 {
			chord.Key = unicodeKey(r[0])
		}
	}
	return chord
}

func unicodeKey(r rune) *Key {
	return &Key{Code: "unicode", Char: string(unicode.ToLower(r))}
}

// Plan expands an action on a chord into the ordered event sequence.
// Presses go modifiers first then the main key; releases go main key
// first then modifiers in reverse.
func Plan(action Action, chord Chord) []Event {
	var events []Event
	press := func(k Key) { events = append(events, Event{Key: k, Direction: Press}) }
	release := func(k Key) { events = append(events, Event{Key: k, Direction: Release}) }

	switch action {
	case ActionDown:
		for _, m := range chord.Modifiers {
			press(m)
		}
		if chord.Key != nil {
			press(*chord.Key)
		}
	case ActionUp:
		if chord.Key != nil {
			release(*chord.Key)
		}
		for i := len(chord.Modifiers) - 1; i >= 0; i-- {
			release(chord.Modifiers[i])
		}
	case ActionTap:
		for _, m := range chord.Modifiers {
			press(m)
		}
		if chord.Key != nil {
			press(*chord.Key)
			release(*chord.Key)
		}
		for i := len(chord.Modifiers) - 1; i >= 0; i-- {
			release(chord.Modifiers[i])
		}
	}
	return events
}
