package module

import "sync"

// process-wide port registry; the scan binary registers each module once
// during bootstrap, lookups after that are read-only
var (
	mu  sync.RWMutex
	reg = map[string]any{}
)

// Register publishes a module's port set under its name
func Register(name string, ports any) {
	mu.Lock()
	reg[name] = ports
	mu.Unlock()
}

// PortsAs returns the port set registered under name, asserted to T
func PortsAs[T any](name string) (T, bool) {
	mu.RLock()
	v, ok := reg[name]
	mu.RUnlock()
	if !ok {
		var zero T
		return zero, false
	}
	out, ok := v.(T)
	return out, ok
}

// Reset empties the registry between tests
func Reset() {
	mu.Lock()
	reg = map[string]any{}
	mu.Unlock()
}
