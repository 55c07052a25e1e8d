package ecs

import (
	"fmt"
	"slices"

	"github.com/milk9111/tankgame/ecs/component"
)

// Hook runs when a component of a given kind is attached to or detached
// from an entity.
type Hook func(r *Registry, e Entity)

// storage is the type-erased view of a component store.
type storage interface {
	has(e Entity) bool
	remove(e Entity) bool
	len() int
	entities() []Entity
	locked() bool
}

type store[T any] struct {
	name      string
	set       SparseSet[*T]
	iterating int
}

func (s *store[T]) has(e Entity) bool       { return s.set.Has(e) }
func (s *store[T]) len() int                { return s.set.Len() }
func (s *store[T]) entities() []Entity      { return s.set.Entities() }
func (s *store[T]) locked() bool            { return s.iterating > 0 }
func (s *store[T]) get(e Entity) (*T, bool) { return s.set.Get(e) }

// remove drops the component and releases what it holds.
func (s *store[T]) remove(e Entity) bool {
	v, ok := s.set.Get(e)
	if !ok {
		return false
	}
	s.set.Remove(e)
	if r, ok := any(v).(Releaser); ok {
		r.Release()
	}
	return true
}

// Releaser is implemented by components that hold references, such as
// asset handles, which must be dropped when the component is detached.
type Releaser interface {
	Release()
}

// Registry owns entities, their components, and the lifecycle hooks fired
// when components come and go.
//
// A Registry is not safe for concurrent use.
type Registry struct {
	pool      entityPool
	stores    map[component.ComponentID]storage
	order     []component.ComponentID
	construct map[component.ComponentID][]Hook
	destroy   map[component.ComponentID][]Hook
	pending   []Entity
}

func NewRegistry() *Registry {
	return &Registry{
		stores:    make(map[component.ComponentID]storage),
		construct: make(map[component.ComponentID][]Hook),
		destroy:   make(map[component.ComponentID][]Hook),
	}
}

// Create allocates a new entity.
func (r *Registry) Create() Entity {
	return r.pool.create()
}

// Alive reports whether e refers to a live entity.
func (r *Registry) Alive(e Entity) bool {
	return r != nil && r.pool.isAlive(e)
}

// Len returns the number of live entities.
func (r *Registry) Len() int {
	return r.pool.count
}

// Entities returns a snapshot of all live entities.
func (r *Registry) Entities() []Entity {
	out := make([]Entity, 0, r.pool.count)
	r.pool.each(func(e Entity) { out = append(out, e) })
	return out
}

// Destroy detaches every component of e, newest kind first, running destroy
// hooks before each removal, then recycles the index. It returns false if e
// is not alive.
func (r *Registry) Destroy(e Entity) bool {
	if !r.Alive(e) {
		return false
	}
	for i := len(r.order) - 1; i >= 0; i-- {
		id := r.order[i]
		s := r.stores[id]
		if !s.has(e) {
			continue
		}
		r.detach(id, s, e)
	}
	return r.pool.release(e)
}

// Defer queues e for destruction at the next Flush.
func (r *Registry) Defer(e Entity) {
	if slices.Contains(r.pending, e) {
		return
	}
	r.pending = append(r.pending, e)
}

// Pending reports whether e is queued for destruction.
func (r *Registry) Pending(e Entity) bool {
	return slices.Contains(r.pending, e)
}

// Flush destroys queued entities that are still alive. Entities queued by
// destroy hooks during the flush are destroyed in the same call.
func (r *Registry) Flush() int {
	n := 0
	for len(r.pending) > 0 {
		batch := r.pending
		r.pending = nil
		for _, e := range batch {
			if r.Destroy(e) {
				n++
			}
		}
	}
	return n
}

// OnConstruct registers a hook fired after a component of kind id is stored.
func (r *Registry) OnConstruct(id component.ComponentID, h Hook) {
	r.construct[id] = append(r.construct[id], h)
}

// OnDestroy registers a hook fired before a component of kind id is removed.
// The component is still readable inside the hook.
func (r *Registry) OnDestroy(id component.ComponentID, h Hook) {
	r.destroy[id] = append(r.destroy[id], h)
}

// HasID reports whether e has a component of kind id.
func (r *Registry) HasID(e Entity, id component.ComponentID) bool {
	if !r.Alive(e) {
		return false
	}
	s, ok := r.stores[id]
	return ok && s.has(e)
}

// AnyOf reports whether e has at least one of the kinds.
func (r *Registry) AnyOf(e Entity, ids ...component.ComponentID) bool {
	for _, id := range ids {
		if r.HasID(e, id) {
			return true
		}
	}
	return false
}

// AllOf reports whether e has every one of the kinds.
func (r *Registry) AllOf(e Entity, ids ...component.ComponentID) bool {
	if !r.Alive(e) {
		return false
	}
	for _, id := range ids {
		if !r.HasID(e, id) {
			return false
		}
	}
	return true
}

// Matches reports whether e has every kind in sig.
func (r *Registry) Matches(e Entity, sig component.Signature) bool {
	return r.AllOf(e, sig.IDs()...)
}

// RemoveID detaches the component of kind id from e, running destroy hooks.
func (r *Registry) RemoveID(e Entity, id component.ComponentID) bool {
	if !r.Alive(e) {
		return false
	}
	s, ok := r.stores[id]
	if !ok || !s.has(e) {
		return false
	}
	r.detach(id, s, e)
	return true
}

// Count returns how many entities have a component of kind id.
func (r *Registry) Count(id component.ComponentID) int {
	if s, ok := r.stores[id]; ok {
		return s.len()
	}
	return 0
}

func (r *Registry) detach(id component.ComponentID, s storage, e Entity) {
	if s.locked() {
		panic(fmt.Sprintf("ecs: structural change to %s during iteration", component.NameOf(id)))
	}
	for _, h := range r.destroy[id] {
		h(r, e)
	}
	s.remove(e)
}

func (r *Registry) fireConstruct(id component.ComponentID, e Entity) {
	for _, h := range r.construct[id] {
		h(r, e)
	}
}

func storeOf[T any](r *Registry, kind component.ComponentKind[T]) *store[T] {
	s, ok := r.stores[kind.ID()]
	if !ok {
		return nil
	}
	return s.(*store[T])
}

func ensureStore[T any](r *Registry, kind component.ComponentKind[T]) *store[T] {
	if !kind.Valid() {
		panic(component.ErrInvalidComponentKind)
	}
	if s := storeOf(r, kind); s != nil {
		return s
	}
	s := &store[T]{name: kind.Name()}
	r.stores[kind.ID()] = s
	r.order = append(r.order, kind.ID())
	return s
}
