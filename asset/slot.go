package asset

import (
	"errors"
	"fmt"
)

var (
	ErrUnbound  = errors.New("asset: slot has no loader")
	ErrNilValue = errors.New("asset: loader returned no value")
)

// Loader builds the value stored at location.
type Loader[T any] func(location string) (*T, error)

// Disposer is implemented by values that hold resources beyond Go memory.
// Dispose runs when the last handle to a slot is released.
type Disposer interface {
	Dispose()
}

// Slot is a lazily loaded, reference-counted asset. The value is present
// exactly while at least one Handle refers to the slot.
//
// A Slot is not safe for concurrent use.
type Slot[T any] struct {
	location string
	loader   Loader[T]
	value    *T
	refs     uint
}

// NewSlot returns a slot bound to location and loader. Nothing is loaded yet.
func NewSlot[T any](location string, loader Loader[T]) *Slot[T] {
	return &Slot[T]{location: location, loader: loader}
}

// Bind changes the location and loader. It panics while handles are outstanding.
func (s *Slot[T]) Bind(location string, loader Loader[T]) {
	if s.refs > 0 {
		panic(fmt.Sprintf("asset: bind %s while %d handles are outstanding", s.location, s.refs))
	}
	s.location = location
	s.loader = loader
}

// Acquire returns a new handle to the slot, loading the value if this is the
// first outstanding handle. A failed load leaves the slot unloaded.
func (s *Slot[T]) Acquire() (Handle[T], error) {
	if s.refs == 0 {
		if err := s.load(); err != nil {
			return Handle[T]{}, err
		}
	}
	s.refs++
	return Handle[T]{slot: s}, nil
}

// MustAcquire is Acquire for slots whose load failure is a programming error.
func (s *Slot[T]) MustAcquire() Handle[T] {
	h, err := s.Acquire()
	if err != nil {
		panic(err)
	}
	return h
}

func (s *Slot[T]) load() error {
	if s.loader == nil {
		return fmt.Errorf("asset: load %s: %w", s.location, ErrUnbound)
	}
	v, err := s.loader(s.location)
	if err != nil {
		return fmt.Errorf("asset: load %s: %w", s.location, err)
	}
	if v == nil {
		return fmt.Errorf("asset: load %s: %w", s.location, ErrNilValue)
	}
	s.value = v
	return nil
}

func (s *Slot[T]) incRef() {
	if s.refs == 0 {
		panic("asset: clone of a handle to an unloaded slot " + s.location)
	}
	s.refs++
}

func (s *Slot[T]) decRef() {
	if s.refs == 0 {
		panic("asset: release of " + s.location + " with no outstanding handles")
	}
	s.refs--
	if s.refs > 0 {
		return
	}
	v := s.value
	s.value = nil
	if d, ok := any(v).(Disposer); ok {
		d.Dispose()
	}
}

// Location returns the bound location.
func (s *Slot[T]) Location() string {
	return s.location
}

// Loaded reports whether the value is currently present.
func (s *Slot[T]) Loaded() bool {
	return s.value != nil
}

// Refs returns the number of outstanding handles.
func (s *Slot[T]) Refs() uint {
	return s.refs
}

// Close asserts that the slot is no longer referenced. Catalogs call it on
// teardown.
func (s *Slot[T]) Close() {
	if s.refs > 0 {
		panic(fmt.Sprintf("asset: close %s while %d handles are outstanding", s.location, s.refs))
	}
}
