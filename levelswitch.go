package appgridlog

import "sync/atomic"

// LevelSwitch holds a minimum severity that can change while the program
// runs. Set Options.LevelSwitch to have every call consult it instead of
// Options.LogLevel.
type LevelSwitch struct {
	level atomic.Int32
}

// NewLevelSwitch creates a switch starting at initial.
func NewLevelSwitch(initial Severity) *LevelSwitch {
	ls := &LevelSwitch{}
	ls.SetLevel(initial)
	return ls
}

// Level returns the current minimum severity.
func (ls *LevelSwitch) Level() Severity {
	return Severity(ls.level.Load())
}

// SetLevel replaces the minimum severity. It takes effect for the next call.
func (ls *LevelSwitch) SetLevel(level Severity) {
	ls.level.Store(int32(level))
}

// IsEnabled reports whether events at level would be sent.
func (ls *LevelSwitch) IsEnabled(level Severity) bool {
	return level.IsEnabled(ls.Level())
}
