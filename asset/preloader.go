package asset

// Preloader holds handles so a set of slots stays loaded between uses.
type Preloader struct {
	releasers []func()
}

// Preload acquires a handle to slot and keeps it until Clear.
func Preload[T any](p *Preloader, slot *Slot[T]) error {
	h, err := slot.Acquire()
	if err != nil {
		return err
	}
	p.releasers = append(p.releasers, h.Release)
	return nil
}

// PreloadAll preloads every slot and stops at the first error.
func PreloadAll[T any](p *Preloader, slots ...*Slot[T]) error {
	for _, s := range slots {
		if err := Preload(p, s); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of held handles.
func (p *Preloader) Len() int {
	return len(p.releasers)
}

// Clear releases every held handle.
func (p *Preloader) Clear() {
	for i := len(p.releasers) - 1; i >= 0; i-- {
		p.releasers[i]()
	}
	p.releasers = p.releasers[:0]
}
