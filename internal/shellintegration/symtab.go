package shellintegration

import "sync"

// SymbolTable is a minimal in-memory stand-in for the shell's variable
// store (spec.md §6's get_global/set_global collaborator), implementing
// composer.SymbolTable. It owns the PS1<->PROMPT mirroring spec.md §6
// requires ("PROMPT mirrored bidirectionally with PS1: set one -> the
// other syncs"); PS2 has no alias.
type SymbolTable struct {
	mu     sync.Mutex
	values map[string]string
}

// NewSymbolTable creates an empty SymbolTable.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{values: make(map[string]string)}
}

// GetGlobal returns name's value and whether it is set.
func (s *SymbolTable) GetGlobal(name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[name]
	return v, ok
}

// SetGlobal sets name to value. Setting PS1 or PROMPT mirrors the value
// onto the other.
func (s *SymbolTable) SetGlobal(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[name] = value
	switch name {
	case "PS1":
		s.values["PROMPT"] = value
	case "PROMPT":
		s.values["PS1"] = value
	}
}
