// SPDX-License-Identifier: MPL-2.0

package plugin

import (
	"fmt"

	"pyspect/internal/dag"
)

// Sort arranges plugins so that every declared before/after dependency is
// satisfied. Dependencies naming plugins outside the set are discarded,
// and each constraint is mirrored onto its counterpart, so a one-sided
// declaration is enough. Independent plugins keep their discovery order.
func Sort(plugins []*Descriptor) ([]*Descriptor, error) {
	byName := make(map[string]*Descriptor, len(plugins))
	g := dag.New()
	for _, p := range plugins {
		if err := Validate(p); err != nil {
			return nil, err
		}
		byName[p.Name] = p
		g.Add(p.Name)
	}
	for _, p := range plugins {
		for _, earlier := range p.Before {
			if _, known := byName[earlier]; known {
				g.Precede(earlier, p.Name)
			}
		}
		for _, later := range p.After {
			if _, known := byName[later]; known {
				g.Precede(p.Name, later)
			}
		}
	}
	order, err := g.Order()
	if err != nil {
		return nil, fmt.Errorf("sorting plugins: %w", err)
	}
	arranged := make([]*Descriptor, 0, len(order))
	for _, name := range order {
		arranged = append(arranged, byName[name])
	}
	return arranged, nil
}
