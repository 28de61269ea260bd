package core

import "strings"

// ModuleID names a module using a dotted namespace, e.g. "report.sqlite".
// The segment before the first dot is the module's namespace.
type ModuleID string

// Namespace returns the part of the ID before the first dot.
func (id ModuleID) Namespace() string {
	ns, _, _ := strings.Cut(string(id), ".")
	return ns
}

// ModuleInfo describes a registered module.
type ModuleInfo struct {
	// ID is the unique module identifier used as the key under `modules:`
	// in the configuration file.
	ID ModuleID

	// New returns a fresh, unconfigured instance.
	New func() Module
}

// Module is the minimal interface every pluggable component implements.
// Lifecycle behavior is opted into through the interfaces in lifecycle.go.
type Module interface {
	ModuleInfo() ModuleInfo
}
