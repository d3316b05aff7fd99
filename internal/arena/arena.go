// Package arena implements the bump-allocator-shaped lifecycle owner spec.md
// §6 names as an external collaborator ("Arena: create, child, calloc,
// destroy"). Go's garbage collector makes manual allocation unnecessary, so
// this is not a memory allocator: it is a scope that owns teardown callbacks
// ("calloc" becomes "register a finalizer instead of a zeroed block") and
// child scopes, torn down together — in reverse registration order — by a
// single Destroy call, exactly as spec.md §9's "Pointer graphs" note
// describes for the session object graph.
package arena

import "sync"

// Arena is a lifecycle scope. The zero value is not usable; construct with
// New or Child.
type Arena struct {
	mu         sync.Mutex
	parent     *Arena
	children   []*Arena
	finalizers []func()
	destroyed  bool
}

// New creates a root arena with no parent.
func New() *Arena {
	return &Arena{}
}

// Child creates a new arena whose lifetime is bounded by its parent: when
// the parent is destroyed, every child is destroyed first (in reverse
// creation order), mirroring spec.md's "session arena owns child allocations"
// contract.
func (a *Arena) Child() *Arena {
	a.mu.Lock()
	defer a.mu.Unlock()

	child := &Arena{parent: a}
	if a.destroyed {
		// A destroyed parent cannot usefully root a child; hand back an
		// already-destroyed arena so callers see consistent behavior
		// instead of a silently leaked scope.
		child.destroyed = true
		return child
	}
	a.children = append(a.children, child)
	return child
}

// Calloc registers a finalizer to run at Destroy, the arena analogue of
// allocating a zeroed block that must be freed: callers hand over a cleanup
// closure instead of a pointer. Finalizers run in reverse registration
// order, so later allocations (which may depend on earlier ones) are torn
// down first.
func (a *Arena) Calloc(finalizer func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.destroyed || finalizer == nil {
		return
	}
	a.finalizers = append(a.finalizers, finalizer)
}

// Destroy tears down all child arenas (reverse creation order), then runs
// this arena's own finalizers (reverse registration order). Safe to call
// multiple times; only the first call has effect.
func (a *Arena) Destroy() {
	a.mu.Lock()
	if a.destroyed {
		a.mu.Unlock()
		return
	}
	a.destroyed = true
	children := a.children
	a.children = nil
	finalizers := a.finalizers
	a.finalizers = nil
	a.mu.Unlock()

	for i := len(children) - 1; i >= 0; i-- {
		children[i].Destroy()
	}
	for i := len(finalizers) - 1; i >= 0; i-- {
		finalizers[i]()
	}
}

// Destroyed reports whether Destroy has already run.
func (a *Arena) Destroyed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.destroyed
}
