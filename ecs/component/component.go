package component

import (
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
)

var (
	ErrEntityNotAlive       = errors.New("ecs: entity not alive")
	ErrNilComponent         = errors.New("ecs: component is nil")
	ErrInvalidComponentKind = errors.New("ecs: invalid component kind")
	ErrUnknownComponent     = errors.New("ecs: unknown component name")
)

type ComponentKind[T any] struct {
	id ComponentID
}

func NewComponentKind[T any]() ComponentKind[T] {
	id := ComponentID(nextComponentID.Add(1))
	register(reflect.TypeFor[T]().Name(), id)
	return ComponentKind[T]{id: id}
}

func (k ComponentKind[T]) ID() ComponentID {
	return k.id
}

func (k ComponentKind[T]) Valid() bool {
	return k.id != 0
}

func (k ComponentKind[T]) Name() string {
	return NameOf(k.id)
}

type ComponentHandle[T any] struct {
	kind ComponentKind[T]
}

func NewComponent[T any]() ComponentHandle[T] {
	return ComponentHandle[T]{kind: NewComponentKind[T]()}
}

func (h ComponentHandle[T]) Kind() ComponentKind[T] {
	return h.kind
}

func (h ComponentHandle[T]) ID() ComponentID {
	return h.kind.id
}

type ComponentID uint32

var nextComponentID atomic.Uint32

var (
	namesMu sync.RWMutex
	byName  = map[string]ComponentID{}
	byID    = map[ComponentID]string{}
)

// register records the Go type name of a kind so non-generic code (scripts,
// prefab files) can refer to components by name. The first kind registered
// for a name wins.
func register(name string, id ComponentID) {
	namesMu.Lock()
	defer namesMu.Unlock()
	byID[id] = name
	if name == "" {
		return
	}
	if _, ok := byName[name]; !ok {
		byName[name] = id
	}
}

// Lookup returns the id of the component kind registered under name.
func Lookup(name string) (ComponentID, bool) {
	namesMu.RLock()
	defer namesMu.RUnlock()
	id, ok := byName[name]
	return id, ok
}

// NameOf returns the Go type name of a registered kind.
func NameOf(id ComponentID) string {
	namesMu.RLock()
	defer namesMu.RUnlock()
	return byID[id]
}
