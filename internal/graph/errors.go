package graph

import (
	"fmt"
	"strings"
)

// CycleError reports a dependency cycle. Members holds the project IDs on
// the detected cycle in forward (dependency) order.
type CycleError struct {
	Members []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Members, " -> "))
}

// MissingDependencyError reports a declared dependency on a project ID that
// was never registered.
type MissingDependencyError struct {
	ProjectID  string
	Dependency string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("project %s depends on unknown project %s", e.ProjectID, e.Dependency)
}
