package graph

import "github.com/joshharrison/planloom/internal/portfolio"

// Graph is a directed acyclic graph of projects. Edges run from a
// dependency to the projects it unblocks: Adj[d] lists the projects that
// declare d as a dependency, RevAdj[p] lists p's own dependencies.
//
// A Graph is built with Add and must pass Validate before any scheduling
// package consumes it; the schedulers assume a valid DAG.
type Graph struct {
	Projects map[string]*portfolio.Project
	Adj      map[string][]string // dependency -> dependents
	RevAdj   map[string][]string // project -> its dependencies
	Roots    []string            // projects with no dependencies
	Leaves   []string            // projects nothing depends on

	validated bool
}
