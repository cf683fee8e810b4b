// SPDX-License-Identifier: MPL-2.0

// Package dag orders named items subject to precedence constraints. The
// plugin layer uses it to arrange discovered plugins by their declared
// before/after dependencies; a cycle among constraints is an error.
package dag

import (
	"fmt"
	"strings"
)

type (
	// CycleError indicates the constraints cannot be arranged into an
	// order because they contain a cycle.
	CycleError struct {
		// Members holds items involved in the cycle (enough of them to
		// identify the problem, not necessarily all).
		Members []string
	}

	// Graph accumulates items and precedence constraints.
	Graph struct {
		// order tracks items in insertion order so independent items come
		// out deterministically.
		order   []string
		present map[string]bool
		// succ maps each item to the items that must come after it.
		succ map[string][]string
	}
)

// Error implements the error interface.
func (e *CycleError) Error() string {
	return fmt.Sprintf("precedence cycle: %s", strings.Join(e.Members, " -> "))
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		present: make(map[string]bool),
		succ:    make(map[string][]string),
	}
}

// Add registers an item. Adding an existing item is a no-op.
func (g *Graph) Add(name string) {
	if g.present[name] {
		return
	}
	g.present[name] = true
	g.order = append(g.order, name)
}

// Precede constrains first to order before then. Both items are added
// implicitly.
func (g *Graph) Precede(first, then string) {
	g.Add(first)
	g.Add(then)
	g.succ[first] = append(g.succ[first], then)
}

// Order returns an arrangement satisfying every constraint, via Kahn's
// algorithm. Independent items keep insertion order. Returns CycleError
// when no arrangement exists.
func (g *Graph) Order() ([]string, error) {
	if len(g.order) == 0 {
		return nil, nil
	}

	blockers := make(map[string]int, len(g.order))
	for _, name := range g.order {
		blockers[name] = 0
	}
	for _, later := range g.succ {
		for _, name := range later {
			blockers[name]++
		}
	}

	ready := make([]string, 0, len(g.order))
	for _, name := range g.order {
		if blockers[name] == 0 {
			ready = append(ready, name)
		}
	}

	var arranged []string
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		arranged = append(arranged, name)
		for _, later := range g.succ[name] {
			blockers[later]--
			if blockers[later] == 0 {
				ready = append(ready, later)
			}
		}
	}

	if len(arranged) != len(g.order) {
		var members []string
		for _, name := range g.order {
			if blockers[name] > 0 {
				members = append(members, name)
			}
		}
		return nil, &CycleError{Members: members}
	}
	return arranged, nil
}
