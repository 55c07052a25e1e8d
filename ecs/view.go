package ecs

import (
	"iter"

	"github.com/milk9111/tankgame/ecs/component"
)

// View yields every entity with a T. Adding or removing a T, or destroying
// an entity holding one, while the view runs panics.
func View[T any](r *Registry, kind component.ComponentKind[T]) iter.Seq2[Entity, *T] {
	return func(yield func(Entity, *T) bool) {
		s := storeOf(r, kind)
		if s == nil {
			return
		}
		s.iterating++
		defer func() { s.iterating-- }()
		ents := s.set.Entities()
		vals := s.set.Values()
		for i := range ents {
			if !yield(ents[i], vals[i]) {
				return
			}
		}
	}
}

// Pair holds the components yielded by View2.
type Pair[A, B any] struct {
	A *A
	B *B
}

// View2 yields every entity with both an A and a B.
func View2[A, B any](r *Registry, ka component.ComponentKind[A], kb component.ComponentKind[B]) iter.Seq2[Entity, Pair[A, B]] {
	return func(yield func(Entity, Pair[A, B]) bool) {
		sa, sb := storeOf(r, ka), storeOf(r, kb)
		if sa == nil || sb == nil {
			return
		}
		sa.iterating++
		sb.iterating++
		defer func() {
			sa.iterating--
			sb.iterating--
		}()
		for _, e := range smallest(sa, sb).entities() {
			a, ok := sa.get(e)
			if !ok {
				continue
			}
			b, ok := sb.get(e)
			if !ok {
				continue
			}
			if !yield(e, Pair[A, B]{A: a, B: b}) {
				return
			}
		}
	}
}

// Triple holds the components yielded by View3.
type Triple[A, B, C any] struct {
	A *A
	B *B
	C *C
}

// View3 yields every entity with an A, a B and a C.
func View3[A, B, C any](r *Registry, ka component.ComponentKind[A], kb component.ComponentKind[B], kc component.ComponentKind[C]) iter.Seq2[Entity, Triple[A, B, C]] {
	return func(yield func(Entity, Triple[A, B, C]) bool) {
		sa, sb, sc := storeOf(r, ka), storeOf(r, kb), storeOf(r, kc)
		if sa == nil || sb == nil || sc == nil {
			return
		}
		sa.iterating++
		sb.iterating++
		sc.iterating++
		defer func() {
			sa.iterating--
			sb.iterating--
			sc.iterating--
		}()
		for _, e := range smallest(sa, sb, sc).entities() {
			a, ok := sa.get(e)
			if !ok {
				continue
			}
			b, ok := sb.get(e)
			if !ok {
				continue
			}
			c, ok := sc.get(e)
			if !ok {
				continue
			}
			if !yield(e, Triple[A, B, C]{A: a, B: b, C: c}) {
				return
			}
		}
	}
}

func smallest(stores ...storage) storage {
	best := stores[0]
	for _, s := range stores[1:] {
		if s.len() < best.len() {
			best = s
		}
	}
	return best
}

// ForEach calls fn for every entity with a T.
func ForEach[T any](r *Registry, kind component.ComponentKind[T], fn func(Entity, *T)) {
	for e, v := range View(r, kind) {
		fn(e, v)
	}
}

// ForEach2 calls fn for every entity with an A and a B.
func ForEach2[A, B any](r *Registry, ka component.ComponentKind[A], kb component.ComponentKind[B], fn func(Entity, *A, *B)) {
	for e, p := range View2(r, ka, kb) {
		fn(e, p.A, p.B)
	}
}

// ForEach3 calls fn for every entity with an A, a B and a C.
func ForEach3[A, B, C any](r *Registry, ka component.ComponentKind[A], kb component.ComponentKind[B], kc component.ComponentKind[C], fn func(Entity, *A, *B, *C)) {
	for e, t := range View3(r, ka, kb, kc) {
		fn(e, t.A, t.B, t.C)
	}
}

// Query returns a snapshot of the entities matching sig. Mutating the
// registry while walking the result is allowed.
func Query(r *Registry, sig component.Signature) []Entity {
	ids := sig.IDs()
	if len(ids) == 0 {
		return r.Entities()
	}
	stores := make([]storage, 0, len(ids))
	for _, id := range ids {
		s, ok := r.stores[id]
		if !ok {
			return nil
		}
		stores = append(stores, s)
	}
	var out []Entity
	for _, e := range smallest(stores...).entities() {
		if r.AllOf(e, ids...) {
			out = append(out, e)
		}
	}
	return out
}
