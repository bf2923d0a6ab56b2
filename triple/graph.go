package triple

import (
	"sync"

	"github.com/semcore/semcore/intern"
)

// Graph is a subject-indexed, mutex-guarded store of triples. The
// adjacency shape — subject keyed, predicate keyed beneath it — is
// grounded on the teacher pack's graph library
// (katalvlaran/lvlath core.Graph: AddVertex/AddEdge under a single
// RWMutex, O(1) vertex lookup) rather than a flat triple slice, so
// SHACL's MinCount/MaxCount and the OWL reasoner's rule bodies
// (`?x ?p ?y`) are index lookups instead of linear scans over every
// triple in the graph.
//
// Thread-safety: mutations acquire a write lock, queries a read lock,
// matching the teacher idiom.
type Graph struct {
	mu sync.RWMutex
	// bySubject[subject][predicate] holds every object seen for that
	// (subject, predicate) pair, in insertion order.
	bySubject map[intern.StringRef]map[intern.StringRef][]Triple
	all       []Triple
}

// NewGraph returns an empty Graph.
func NewGraph() *Graph {
	return &Graph{
		bySubject: make(map[intern.StringRef]map[intern.StringRef][]Triple),
	}
}

// Add inserts t into the graph. Complexity O(1) amortized.
func (g *Graph) Add(t Triple) {
	g.mu.Lock()
	defer g.mu.Unlock()

	byPred, ok := g.bySubject[t.Subject]
	if !ok {
		byPred = make(map[intern.StringRef][]Triple)
		g.bySubject[t.Subject] = byPred
	}
	byPred[t.Predicate] = append(byPred[t.Predicate], t)
	g.all = append(g.all, t)
}

// Values returns every object seen for (subject, predicate), in
// insertion order. Complexity O(1) plus the result size.
func (g *Graph) Values(subject, predicate intern.StringRef) []Triple {
	g.mu.RLock()
	defer g.mu.RUnlock()

	byPred, ok := g.bySubject[subject]
	if !ok {
		return nil
	}
	vs := byPred[predicate]
	out := make([]Triple, len(vs))
	copy(out, vs)
	return out
}

// Count returns len(Values(subject, predicate)) without copying.
func (g *Graph) Count(subject, predicate intern.StringRef) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	byPred, ok := g.bySubject[subject]
	if !ok {
		return 0
	}
	return len(byPred[predicate])
}

// Has reports whether the exact (subject, predicate, object) triple
// is present, for Class-constraint "value rdf:type class_ref" checks
// and OWL closure deduplication.
func (g *Graph) Has(subject, predicate, object intern.StringRef) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	byPred, ok := g.bySubject[subject]
	if !ok {
		return false
	}
	for _, t := range byPred[predicate] {
		if t.Object.Equal(object) {
			return true
		}
	}
	return false
}

// FocusNodes returns every distinct subject in the graph, the
// candidate set validate_graph iterates to find focus nodes matching
// a shape's target (spec.md §4.4).
func (g *Graph) FocusNodes() []intern.StringRef {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]intern.StringRef, 0, len(g.bySubject))
	for s := range g.bySubject {
		out = append(out, s)
	}
	return out
}

// All returns every triple in insertion order, for the pattern-
// discovery classifier and the OWL reasoner's rule bodies that need
// to scan by predicate rather than by subject.
func (g *Graph) All() []Triple {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Triple, len(g.all))
	copy(out, g.all)
	return out
}

// Len returns the number of triples stored.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.all)
}
