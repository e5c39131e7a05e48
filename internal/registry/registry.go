// Package registry holds the user-extensible set of trading methods.
package registry

import (
	"strings"

	apperrors "tradejournal/internal/errors"
)

// DefaultMethods returns the methods a new journal starts with.
func DefaultMethods() []string {
	return []string{
		"Wedge Bottom",
		"Wedge Top",
		"Double Bottom",
		"Double Top",
		"Breakout With Follow-Through",
		"Breakout Without Follow-Through",
		"Trading Range",
		"Major Trend Reversal",
	}
}

// Methods is an ordered set of unique, non-empty method labels.
// It is not safe for concurrent use.
type Methods struct {
	names []string
	index map[string]int
}

// New builds a registry from names. Blank names are skipped and duplicates
// are dropped, keeping the first occurrence.
func New(names []string) *Methods {
	m := &Methods{index: make(map[string]int, len(names))}
	for _, name := range names {
		_ = m.Add(name)
	}
	return m
}

// Default returns a registry holding DefaultMethods.
func Default() *Methods {
	return New(DefaultMethods())
}

// Add appends name. Surrounding whitespace is trimmed.
func (m *Methods) Add(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperrors.ErrEmptyMethod
	}
	if m.index == nil {
		m.index = make(map[string]int)
	}
	if _, ok := m.index[name]; ok {
		return apperrors.Wrapf(apperrors.ErrDuplicateMethod, "%q", name)
	}
	m.index[name] = len(m.names)
	m.names = append(m.names, name)
	return nil
}

// Remove deletes name, preserving the order of the rest.
func (m *Methods) Remove(name string) error {
	i, ok := m.index[name]
	if !ok {
		return apperrors.Wrapf(apperrors.ErrMethodNotFound, "%q", name)
	}
	m.names = append(m.names[:i], m.names[i+1:]...)
	delete(m.index, name)
	for j := i; j < len(m.names); j++ {
		m.index[m.names[j]] = j
	}
	return nil
}

// Contains reports whether name is registered. The match is exact.
func (m *Methods) Contains(name string) bool {
	if m == nil {
		return false
	}
	_, ok := m.index[name]
	return ok
}

// Index returns the position of name, or -1.
func (m *Methods) Index(name string) int {
	if m == nil {
		return -1
	}
	if i, ok := m.index[name]; ok {
		return i
	}
	return -1
}

// List returns a copy of the registered names in order.
func (m *Methods) List() []string {
	if m == nil {
		return []string{}
	}
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

// Len returns the number of registered methods.
func (m *Methods) Len() int {
	if m == nil {
		return 0
	}
	return len(m.names)
}

// Clone returns an independent copy.
func (m *Methods) Clone() *Methods {
	return New(m.List())
}
