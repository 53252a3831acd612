package trace

import (
	"fmt"
	"strings"
)

// Level is the finest Scope a tracer records.
type Level uint8

const (
	LevelOff      Level = iota
	LevelPass           // driver commands and passes
	LevelUnit           // plus one span per unit file
	LevelInstance       // plus one span per instantiation request
)

var levelNames = [...]string{
	LevelOff:      "off",
	LevelPass:     "pass",
	LevelUnit:     "unit",
	LevelInstance: "instance",
}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel accepts the names printed by String; empty means off.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(s)
	if s == "" {
		return LevelOff, nil
	}
	for l, name := range levelNames {
		if name == s {
			return Level(l), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: off|pass|unit|instance)", s)
}

// finest is the deepest scope recorded at l.
func (l Level) finest() Scope {
	switch l {
	case LevelPass:
		return ScopePass
	case LevelUnit:
		return ScopeUnit
	case LevelInstance:
		return ScopeInstance
	}
	return 0
}

// ShouldEmit reports whether events of scope are recorded at l.
func (l Level) ShouldEmit(scope Scope) bool {
	return scope != 0 && scope <= l.finest()
}
