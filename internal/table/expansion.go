// internal/table/expansion.go
package table

import "sync"

// Expansion tracks which transcripts are expanded. Keys are scoped to a
// result-set generation: the first access with a new generation forgets every
// toggle of the previous one, so reused test ids never inherit stale state.
type Expansion struct {
	mu         sync.Mutex
	generation uint64
	open       map[int]bool
}

// NewExpansion returns an Expansion with every row collapsed.
func NewExpansion() *Expansion {
	return &Expansion{open: make(map[int]bool)}
}

func (e *Expansion) syncLocked(generation uint64) {
	if generation != e.generation || e.open == nil {
		e.generation = generation
		e.open = make(map[int]bool)
	}
}

// IsExpanded reports whether testID is expanded within generation.
func (e *Expansion) IsExpanded(generation uint64, testID int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.syncLocked(generation)
	return e.open[testID]
}

// Toggle flips testID within generation and returns the new state.
func (e *Expansion) Toggle(generation uint64, testID int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.syncLocked(generation)
	e.open[testID] = !e.open[testID]
	return e.open[testID]
}
