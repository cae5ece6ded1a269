package graph

import (
	"fmt"
	"sort"

	"github.com/joshharrison/planloom/internal/portfolio"
)

// New returns an empty project graph.
func New() *Graph {
	return &Graph{
		Projects: make(map[string]*portfolio.Project),
		Adj:      make(map[string][]string),
		RevAdj:   make(map[string][]string),
	}
}

// Build constructs and validates a graph from a project list.
func Build(projects []portfolio.Project) (*Graph, error) {
	g := New()
	for i := range projects {
		if err := g.Add(projects[i]); err != nil {
			return nil, err
		}
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Add registers a project and its declared dependency edges. The project is
// copied; later mutation of the argument does not affect the graph. Adding
// invalidates any prior Validate result.
func (g *Graph) Add(p portfolio.Project) error {
	if p.ID == "" {
		return fmt.Errorf("project with empty id")
	}
	if _, ok := g.Projects[p.ID]; ok {
		return fmt.Errorf("duplicate project id %s", p.ID)
	}
	cp := p
	g.Projects[p.ID] = &cp

	for _, dep := range p.Dependencies {
		g.Adj[dep] = append(g.Adj[dep], p.ID)
		g.RevAdj[p.ID] = append(g.RevAdj[p.ID], dep)
	}

	g.validated = false
	return nil
}

// Count returns the number of registered projects.
func (g *Graph) Count() int {
	return len(g.Projects)
}

// Validated reports whether the graph has passed Validate since the last Add.
func (g *Graph) Validated() bool {
	return g.validated
}

// Validate checks that the registered projects form a proper DAG. It returns
// a *CycleError if the dependency edges contain a cycle, or a
// *MissingDependencyError if a declared dependency was never registered.
// There is no silent repair: callers must fix the input and rebuild.
//
// On success it also freezes deterministic adjacency ordering and computes
// Roots and Leaves.
func (g *Graph) Validate() error {
	if cycle := g.detectCycle(); cycle != nil {
		return &CycleError{Members: cycle}
	}

	for _, id := range g.sortedIDs() {
		for _, dep := range g.Projects[id].Dependencies {
			if _, ok := g.Projects[dep]; !ok {
				return &MissingDependencyError{ProjectID: id, Dependency: dep}
			}
		}
	}

	// Sort adjacency lists for deterministic traversal
	for k := range g.Adj {
		sort.Strings(g.Adj[k])
	}
	for k := range g.RevAdj {
		sort.Strings(g.RevAdj[k])
	}

	g.Roots = g.Roots[:0]
	g.Leaves = g.Leaves[:0]
	for _, id := range g.sortedIDs() {
		if len(g.RevAdj[id]) == 0 {
			g.Roots = append(g.Roots, id)
		}
		if len(g.Adj[id]) == 0 {
			g.Leaves = append(g.Leaves, id)
		}
	}

	g.validated = true
	return nil
}

// detectCycle returns the cycle path if one exists, or nil if the graph is
// acyclic. Uses DFS with coloring: white (unvisited), gray (on the current
// recursion stack), black (done). A back-edge to a gray node is a cycle.
func (g *Graph) detectCycle() []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make(map[string]int)
	parent := make(map[string]string)

	var dfs func(node string) []string
	dfs = func(node string) []string {
		color[node] = gray
		for _, next := range g.Adj[node] {
			// Edges to unregistered projects are reported by the missing
			// dependency check, not here.
			if _, ok := g.Projects[next]; !ok {
				continue
			}
			if color[next] == gray {
				cycle := []string{next, node}
				cur := node
				for cur != next {
					cur = parent[cur]
					cycle = append(cycle, cur)
				}
				for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
					cycle[i], cycle[j] = cycle[j], cycle[i]
				}
				return cycle
			}
			if color[next] == white {
				parent[next] = node
				if cycle := dfs(next); cycle != nil {
					return cycle
				}
			}
		}
		color[node] = black
		return nil
	}

	for _, id := range g.sortedIDs() {
		if color[id] == white {
			if cycle := dfs(id); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

// Dependencies returns the declared dependencies of a project.
func (g *Graph) Dependencies(id string) []string {
	return g.RevAdj[id]
}

// Dependents returns the projects that directly depend on the given one.
func (g *Graph) Dependents(id string) []string {
	return g.Adj[id]
}

func (g *Graph) sortedIDs() []string {
	ids := make([]string, 0, len(g.Projects))
	for id := range g.Projects {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
