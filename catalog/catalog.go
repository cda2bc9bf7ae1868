// Package catalog resolves friendly endpoint names to the command names a
// CloudStack server knows.
//
// Resolution ignores case and underscores, so "list_virtual_machines",
// "ListVirtualMachines" and "list_Virtual_mACHINES" all resolve to
// "listVirtualMachines" once that command is registered.
package catalog

import (
	"fmt"
	"strings"
	"sync"
)

// Catalog looks up the canonical command name for name.
type Catalog interface {
	Lookup(name string) (string, bool)
}

// Normalize returns the key used to look up name: lower case with
// underscores removed.
func Normalize(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "_", ""))
}

// Static is an in-memory Catalog. The zero value is empty and ready to use.
// It is safe for concurrent use.
type Static struct {
	mu       sync.RWMutex
	commands map[string]string
}

// New creates a Static catalog holding commands. Listing the same command
// twice is fine; two different commands that normalize to the same key are
// an error.
func New(commands ...string) (*Static, error) {
	var s Static
	for _, cmd := range commands {
		if err := s.Add(cmd); err != nil {
			return nil, err
		}
	}
	return &s, nil
}

// MustNew is like New but panics on error. It is meant for catalogs built
// from literal command lists.
func MustNew(commands ...string) *Static {
	s, err := New(commands...)
	if err != nil {
		panic(err)
	}
	return s
}

// Add registers command. Two different commands that normalize to the same
// key cannot both be registered.
func (s *Static) Add(command string) error {
	if command == "" {
		return fmt.Errorf("catalog: command name is empty")
	}
	key := Normalize(command)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.commands == nil {
		s.commands = make(map[string]string)
	}
	if existing, ok := s.commands[key]; ok && existing != command {
		return fmt.Errorf("catalog: %q conflicts with already registered %q", command, existing)
	}
	s.commands[key] = command
	return nil
}

// Lookup implements Catalog.
func (s *Static) Lookup(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cmd, ok := s.commands[Normalize(name)]
	return cmd, ok
}

// Len returns the number of registered commands.
func (s *Static) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.commands)
}

// Func adapts a function into a Catalog.
type Func func(name string) (string, bool)

func (f Func) Lookup(name string) (string, bool) {
	return f(name)
}
