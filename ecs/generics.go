package ecs

import (
	"fmt"

	"github.com/milk9111/tankgame/ecs/component"
)

// Add stores value on e and fires construct hooks, then returns the stored
// component. It panics if e is dead or already has the component.
func Add[T any](r *Registry, e Entity, handle component.ComponentHandle[T], value T) *T {
	if !r.Alive(e) {
		panic(fmt.Errorf("%w: add %s to %s", component.ErrEntityNotAlive, handle.Kind().Name(), e))
	}
	s := ensureStore(r, handle.Kind())
	if s.locked() {
		panic(fmt.Sprintf("ecs: structural change to %s during iteration", s.name))
	}
	if s.has(e) {
		panic(fmt.Sprintf("ecs: %s already has %s", e, s.name))
	}
	v := new(T)
	*v = value
	s.set.Set(e, v)
	r.fireConstruct(handle.ID(), e)
	return v
}

// Remove fires destroy hooks and detaches the component. It returns false if
// e does not have it.
func Remove[T any](r *Registry, e Entity, handle component.ComponentHandle[T]) bool {
	return r.RemoveID(e, handle.ID())
}

func Has[T any](r *Registry, e Entity, handle component.ComponentHandle[T]) bool {
	return r.HasID(e, handle.ID())
}

// Get returns the component of e, if present.
func Get[T any](r *Registry, e Entity, handle component.ComponentHandle[T]) (*T, bool) {
	if !r.Alive(e) {
		return nil, false
	}
	s := storeOf(r, handle.Kind())
	if s == nil {
		return nil, false
	}
	return s.get(e)
}

// MustGet returns the component of e and panics when it is missing.
func MustGet[T any](r *Registry, e Entity, handle component.ComponentHandle[T]) *T {
	v, ok := Get(r, e, handle)
	if !ok {
		panic(fmt.Sprintf("ecs: %s has no %s", e, handle.Kind().Name()))
	}
	return v
}

// First returns the first entity with the component, if any.
func First[T any](r *Registry, kind component.ComponentKind[T]) (Entity, bool) {
	for e := range View(r, kind) {
		return e, true
	}
	return 0, false
}
