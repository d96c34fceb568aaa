// Package depgraph builds the per-contestant task dependency graph from
// template metadata and orders schedulable tasks prerequisite-first.
package depgraph

import (
	"sort"

	"github.com/platotv/plato/core/diag"
	"github.com/platotv/plato/core/model"
)

// Graph holds the template adjacency and the per-contestant task edges of
// one snapshot.
type Graph struct {
	snap *model.Snapshot
	// deps maps a task id to the same-contestant task ids of its
	// prerequisite templates.
	deps map[string][]string
}

// Build validates the template graph and links every task to its
// same-contestant prerequisite tasks. Cyclic template declarations are fatal
// configuration errors; a prerequisite template with no daily task for the
// contestant yields one DEPENDENCY_MISSING reason per missing template.
func Build(snap *model.Snapshot) (*Graph, []diag.Reason, *diag.ConfigError) {
	if err := validateTemplates(snap); err != nil {
		return nil, nil, err
	}

	g := &Graph{snap: snap, deps: make(map[string][]string)}

	// Index tasks by (contestant, template) for prerequisite lookup. Tasks
	// of any status satisfy a dependency.
	byKey := map[[2]string]string{}
	for i := range snap.Tasks {
		t := &snap.Tasks[i]
		byKey[[2]string{t.ContestantID, t.TemplateID}] = t.ID
	}

	missing := map[[2]string]string{} // (contestant, missing template) -> triggering task
	tasks := make([]*model.DailyTask, 0, len(snap.Tasks))
	for i := range snap.Tasks {
		tasks = append(tasks, &snap.Tasks[i])
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })

	for _, t := range tasks {
		tpl := snap.Template(t.TemplateID)
		if tpl == nil || !tpl.HasDependency {
			continue
		}
		// Walk prerequisites transitively so the reason set names the
		// deepest unmet template: the one a producer must create first.
		seen := map[string]bool{}
		frontier := append([]string(nil), tpl.DependsOnTemplateIDs...)
		for len(frontier) > 0 {
			depID := frontier[0]
			frontier = frontier[1:]
			if seen[depID] {
				continue
			}
			seen[depID] = true
			key := [2]string{t.ContestantID, depID}
			if prereqID, ok := byKey[key]; ok {
				g.deps[t.ID] = append(g.deps[t.ID], prereqID)
				continue
			}
			if _, dup := missing[key]; !dup {
				missing[key] = t.ID
			}
			if depTpl := snap.Template(depID); depTpl != nil {
				frontier = append(frontier, depTpl.DependsOnTemplateIDs...)
			}
		}
		sort.Strings(g.deps[t.ID])
	}

	var reasons []diag.Reason
	keys := make([][2]string, 0, len(missing))
	for k := range missing {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})
	for _, k := range keys {
		reasons = append(reasons, diag.DependencyMissing(k[0], k[1], missing[k]))
	}
	return g, reasons, nil
}

// Prereqs returns the prerequisite task ids of a task.
func (g *Graph) Prereqs(taskID string) []string { return g.deps[taskID] }

// Layers orders the working set prerequisite-first using Kahn's algorithm.
// Each layer contains tasks whose prerequisites all live in earlier layers
// or outside the working set.
func (g *Graph) Layers(working []*model.DailyTask) [][]*model.DailyTask {
	inSet := map[string]*model.DailyTask{}
	for _, t := range working {
		inSet[t.ID] = t
	}
	indeg := map[string]int{}
	dependents := map[string][]string{}
	for _, t := range working {
		for _, dep := range g.deps[t.ID] {
			if _, ok := inSet[dep]; ok {
				indeg[t.ID]++
				dependents[dep] = append(dependents[dep], t.ID)
			}
		}
	}

	var layers [][]*model.DailyTask
	current := make([]*model.DailyTask, 0, len(working))
	for _, t := range working {
		if indeg[t.ID] == 0 {
			current = append(current, t)
		}
	}
	for len(current) > 0 {
		sort.Slice(current, func(i, j int) bool { return current[i].ID < current[j].ID })
		layers = append(layers, current)
		var next []*model.DailyTask
		for _, t := range current {
			for _, depID := range dependents[t.ID] {
				indeg[depID]--
				if indeg[depID] == 0 {
					next = append(next, inSet[depID])
				}
			}
		}
		current = next
	}
	// Template validation already rejected cycles, so every task drains.
	return layers
}

// validateTemplates rejects self or cyclic dependencies and templates whose
// hasDependency flag lists no prerequisite.
func validateTemplates(snap *model.Snapshot) *diag.ConfigError {
	for i := range snap.Templates {
		tpl := &snap.Templates[i]
		if tpl.HasDependency && len(tpl.DependsOnTemplateIDs) == 0 {
			return &diag.ConfigError{
				Code:       diag.CodeInvalidDependency,
				TemplateID: tpl.ID,
				Detail:     "hasDependency set but no dependency templates listed",
			}
		}
		for _, dep := range tpl.DependsOnTemplateIDs {
			if dep == tpl.ID {
				return &diag.ConfigError{
					Code:       diag.CodeCycleDetected,
					TemplateID: tpl.ID,
					Detail:     "template depends on itself",
				}
			}
		}
	}

	const (
		white = 0
		grey  = 1
		black = 2
	)
	state := map[string]int{}
	var stack []string
	var visit func(id string) *diag.ConfigError
	visit = func(id string) *diag.ConfigError {
		switch state[id] {
		case grey:
			return &diag.ConfigError{
				Code:        diag.CodeCycleDetected,
				TemplateID:  id,
				TemplateIDs: append([]string(nil), stack...),
				Detail:      "template dependency cycle",
			}
		case black:
			return nil
		}
		state[id] = grey
		stack = append(stack, id)
		if tpl := snap.Template(id); tpl != nil {
			for _, dep := range tpl.DependsOnTemplateIDs {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[id] = black
		return nil
	}
	for i := range snap.Templates {
		if err := visit(snap.Templates[i].ID); err != nil {
			return err
		}
	}
	return nil
}
