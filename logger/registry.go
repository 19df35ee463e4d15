package logger

import "sync"

// named holds component loggers registered by name.
var named sync.Map

// Register stores a named logger so later Get calls return it.
func Register(name string, l *Logger) {
	named.Store(name, l)
}

// Get returns the logger registered under name. Unknown names fall back to
// the global logger tagged with the component name.
func Get(name string) *Logger {
	if v, ok := named.Load(name); ok {
		return v.(*Logger)
	}
	return GetGlobalLogger().WithComponent(name)
}

// RegisterDefaults registers component loggers derived from the global logger.
// Call this after Init so every component shares the configured output.
func RegisterDefaults(names ...string) {
	for _, name := range names {
		Register(name, GetGlobalLogger().WithComponent(name))
	}
}
