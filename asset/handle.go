package asset

// Handle keeps a Slot's value loaded for as long as it is held. The zero
// Handle is empty.
//
// Handles are plain values: copying the struct does not add a reference.
// Use Clone to share and Move to transfer ownership.
type Handle[T any] struct {
	slot *Slot[T]
}

// Get returns the loaded value. It panics on an empty handle.
func (h Handle[T]) Get() *T {
	if h.slot == nil {
		panic("asset: get on empty handle")
	}
	if h.slot.value == nil {
		panic("asset: get on unloaded slot " + h.slot.location)
	}
	return h.slot.value
}

// Clone returns a second handle to the same slot. Cloning an empty handle
// returns an empty handle.
func (h Handle[T]) Clone() Handle[T] {
	if h.slot == nil {
		return Handle[T]{}
	}
	h.slot.incRef()
	return Handle[T]{slot: h.slot}
}

// Move transfers the reference to the returned handle and empties h.
func (h *Handle[T]) Move() Handle[T] {
	out := Handle[T]{slot: h.slot}
	h.slot = nil
	return out
}

// Release drops the reference and empties h. Releasing an empty handle is a no-op.
func (h *Handle[T]) Release() {
	if h.slot == nil {
		return
	}
	s := h.slot
	h.slot = nil
	s.decRef()
}

// Reset releases h and takes over other's reference.
func (h *Handle[T]) Reset(other Handle[T]) {
	if h.slot == other.slot && h.slot != nil {
		// Same slot: keep one reference, drop the extra one.
		other.slot.decRef()
		return
	}
	h.Release()
	h.slot = other.slot
}

// Valid reports whether the handle refers to a loaded slot.
func (h Handle[T]) Valid() bool {
	return h.slot != nil && h.slot.value != nil
}

// Equal reports whether both handles refer to the same slot.
func (h Handle[T]) Equal(other Handle[T]) bool {
	return h.slot == other.slot
}

// Slot returns the referenced slot, or nil.
func (h Handle[T]) Slot() *Slot[T] {
	return h.slot
}
