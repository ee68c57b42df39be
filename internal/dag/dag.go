// Package dag builds the execution-order graph over a set of WAL entries,
// grounded on original_source/src-tauri/src/execution/dag.rs's
// ExecutionDAG. The original builds on petgraph; no graph library appears
// anywhere in the retrieved corpus, so this is a direct, dependency-free
// reimplementation of the same two algorithms (Kahn's algorithm in place
// of petgraph's toposort, longest-path level assignment) rather than a
// stdlib fallback for something the corpus would otherwise import — see
// DESIGN.md.
package dag

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sentinelfs/sentinel/internal/wal"
)

// Error is returned for malformed input graphs.
type Error struct {
	msg string
	dep uuid.UUID
}

func (e *Error) Error() string { return e.msg }

// ErrEmptyGraph signals an attempt to build a DAG from zero entries.
var ErrEmptyGraph = &Error{msg: "dag: cannot build a graph from an empty entry list"}

// ErrCycleDetected signals that the dependency graph contains a cycle.
var ErrCycleDetected = &Error{msg: "dag: cycle detected in operation dependencies"}

// ErrDependencyNotFound reports a depends_on reference with no matching
// entry. The missing ID is embedded in the message; call MissingDependency
// to recover it structurally.
func ErrDependencyNotFound(id uuid.UUID) error {
	return &Error{msg: fmt.Sprintf("dag: dependency not found: %s", id), dep: id}
}

// MissingDependency returns the dependency ID an ErrDependencyNotFound
// error carries, and false for any other *Error.
func (e *Error) MissingDependency() (uuid.UUID, bool) {
	if e.dep == uuid.Nil {
		return uuid.Nil, false
	}
	return e.dep, true
}

// Graph is a dependency graph over wal.Entry values, organized into
// levels of mutually independent entries for parallel execution.
type Graph struct {
	byID   map[uuid.UUID]wal.Entry
	order  []uuid.UUID // insertion order, used for deterministic iteration
	edges  map[uuid.UUID][]uuid.UUID // dependency -> dependents (outgoing)
	levels [][]uuid.UUID
}

// FromEntries builds a Graph from entries, verifying every dependency
// resolves and that no cycle exists, then computing execution levels.
func FromEntries(entries []wal.Entry) (*Graph, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyGraph
	}

	g := &Graph{
		byID:  make(map[uuid.UUID]wal.Entry, len(entries)),
		edges: make(map[uuid.UUID][]uuid.UUID),
	}
	for _, e := range entries {
		g.byID[e.ID] = e
		g.order = append(g.order, e.ID)
	}
	for _, e := range entries {
		for _, dep := range e.DependsOn {
			if _, ok := g.byID[dep]; !ok {
				return nil, ErrDependencyNotFound(dep)
			}
			g.edges[dep] = append(g.edges[dep], e.ID)
		}
	}

	order, ok := g.topoSort()
	if !ok {
		return nil, ErrCycleDetected
	}
	g.computeLevels(order)
	return g, nil
}

// indegree computes each node's remaining dependency count.
func (g *Graph) indegree() map[uuid.UUID]int {
	deg := make(map[uuid.UUID]int, len(g.byID))
	for id := range g.byID {
		deg[id] = 0
	}
	for _, dependents := range g.edges {
		for _, d := range dependents {
			deg[d]++
		}
	}
	return deg
}

// topoSort runs Kahn's algorithm, breaking ties by insertion order for
// deterministic output. ok is false when a cycle prevents full
// traversal.
func (g *Graph) topoSort() (order []uuid.UUID, ok bool) {
	deg := g.indegree()
	var ready []uuid.UUID
	for _, id := range g.order {
		if deg[id] == 0 {
			ready = append(ready, id)
		}
	}

	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)

		for _, dependent := range g.edges[id] {
			deg[dependent]--
			if deg[dependent] == 0 {
				ready = append(ready, dependent)
			}
		}
	}

	return order, len(order) == len(g.byID)
}

// computeLevels assigns each node a level one greater than the deepest of
// its dependencies, per the longest-path algorithm ExecutionDAG uses.
func (g *Graph) computeLevels(topo []uuid.UUID) {
	incoming := make(map[uuid.UUID][]uuid.UUID)
	for dep, dependents := range g.edges {
		for _, d := range dependents {
			incoming[d] = append(incoming[d], dep)
		}
	}

	nodeLevel := make(map[uuid.UUID]int, len(topo))
	maxLevel := 0
	for _, id := range topo {
		level := 0
		for _, dep := range incoming[id] {
			if l := nodeLevel[dep] + 1; l > level {
				level = l
			}
		}
		nodeLevel[id] = level
		if level > maxLevel {
			maxLevel = level
		}
	}

	levels := make([][]uuid.UUID, maxLevel+1)
	for _, id := range topo {
		l := nodeLevel[id]
		levels[l] = append(levels[l], id)
	}
	g.levels = levels
}

// Levels returns the entries grouped by execution level; level 0 has no
// dependencies, and every entry in level N depends only on entries in
// levels 0..N-1.
func (g *Graph) Levels() [][]wal.Entry {
	out := make([][]wal.Entry, len(g.levels))
	for i, level := range g.levels {
		for _, id := range level {
			out[i] = append(out[i], g.byID[id])
		}
	}
	return out
}

// Len returns the total number of entries in the graph.
func (g *Graph) Len() int { return len(g.byID) }

// LevelCount returns the number of execution levels.
func (g *Graph) LevelCount() int { return len(g.levels) }

// Entry returns the entry with the given ID, if present.
func (g *Graph) Entry(id uuid.UUID) (wal.Entry, bool) {
	e, ok := g.byID[id]
	return e, ok
}

// TopologicalOrder returns every entry in dependency order.
func (g *Graph) TopologicalOrder() []wal.Entry {
	order, ok := g.topoSort()
	if !ok {
		return nil
	}
	out := make([]wal.Entry, 0, len(order))
	for _, id := range order {
		out = append(out, g.byID[id])
	}
	return out
}

// Dependents returns the entries that depend directly on id.
func (g *Graph) Dependents(id uuid.UUID) []wal.Entry {
	var out []wal.Entry
	for _, d := range g.edges[id] {
		out = append(out, g.byID[d])
	}
	return out
}

// Dependencies returns the entries that id depends on directly.
func (g *Graph) Dependencies(id uuid.UUID) []wal.Entry {
	e, ok := g.byID[id]
	if !ok {
		return nil
	}
	out := make([]wal.Entry, 0, len(e.DependsOn))
	for _, dep := range e.DependsOn {
		if d, ok := g.byID[dep]; ok {
			out = append(out, d)
		}
	}
	return out
}

// Stats summarizes the graph's shape.
type Stats struct {
	TotalEntries  int
	LevelCount    int
	LevelSizes    []int
	MaxParallelism int
}

// Stats computes summary statistics about the graph.
func (g *Graph) Stats() Stats {
	sizes := make([]int, len(g.levels))
	max := 0
	for i, l := range g.levels {
		sizes[i] = len(l)
		if len(l) > max {
			max = len(l)
		}
	}
	return Stats{
		TotalEntries:   g.Len(),
		LevelCount:     g.LevelCount(),
		LevelSizes:     sizes,
		MaxParallelism: max,
	}
}
