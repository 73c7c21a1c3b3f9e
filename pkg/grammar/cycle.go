package grammar

// termLister is satisfied by every node that has inputs of its own.
type termLister interface {
	Term
	Terms() []Term
}

// findCycle walks the dependency graph below terms and returns the direct
// term through which a path leads back to self. The walk keeps a visited set
// keyed by identifier, so it terminates on any graph, cyclic or not.
func findCycle(self Identifier, terms []Term) (Term, bool) {
	visited := make(map[Identifier]bool)

	var reaches func(t Term) bool
	reaches = func(t Term) bool {
		node, ok := t.(termLister)
		if !ok {
			return false
		}
		id := node.ID()
		if id == self {
			return true
		}
		if visited[id] {
			return false
		}
		visited[id] = true
		for _, child := range node.Terms() {
			if child != nil && reaches(child) {
				return true
			}
		}
		return false
	}

	for _, t := range terms {
		if t != nil && reaches(t) {
			return t, true
		}
	}
	return nil, false
}

// DependencyCycle reports whether op takes part in a dependency cycle and,
// if so, the direct term of op that closes it.
func DependencyCycle(op Operation) (Term, bool) {
	return findCycle(op.ID(), op.Terms())
}
