package logger

import (
	"github.com/puzpuzpuz/xsync/v3"
)

// components holds the loggers the stores resolve by component name when
// no logger is passed to them explicitly.
var components = xsync.NewMapOf[string, *Logger]()

// Register sets the logger used for a component.
func Register(component string, l *Logger) {
	components.Store(component, l)
}

// Get returns the logger registered for component, or the global logger
// tagged with the component name.
func Get(component string) *Logger {
	if l, ok := components.Load(component); ok {
		return l
	}
	return GetGlobalLogger().WithComponent(component)
}

// RegisterDefaults derives a logger for each component from the current
// global logger. Call it after SetGlobalLogger or Init.
func RegisterDefaults(names ...string) {
	global := GetGlobalLogger()
	for _, name := range names {
		Register(name, global.WithComponent(name))
	}
}

// Unregister drops the logger for component so Get falls back to the
// global logger again.
func Unregister(component string) {
	components.Delete(component)
}
