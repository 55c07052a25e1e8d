package component

import (
	"fmt"
	"math/bits"
	"strings"
)

// Signature is a set of component kinds. An entity matches a signature when
// it has every kind in the set.
type Signature struct {
	words []uint64
}

func NewSignature(ids ...ComponentID) Signature {
	var s Signature
	for _, id := range ids {
		s = s.With(id)
	}
	return s
}

// SignatureOf builds a signature from registered component names.
func SignatureOf(names ...string) (Signature, error) {
	var s Signature
	for _, name := range names {
		id, ok := Lookup(strings.TrimSpace(name))
		if !ok {
			return Signature{}, fmt.Errorf("%w: %q", ErrUnknownComponent, name)
		}
		s = s.With(id)
	}
	return s, nil
}

// With returns a copy of s that also contains id.
func (s Signature) With(id ComponentID) Signature {
	w := int(id / 64)
	words := make([]uint64, max(len(s.words), w+1))
	copy(words, s.words)
	words[w] |= 1 << (id % 64)
	return Signature{words: words}
}

func (s Signature) Has(id ComponentID) bool {
	w := int(id / 64)
	if w >= len(s.words) {
		return false
	}
	return s.words[w]&(1<<(id%64)) != 0
}

func (s Signature) Empty() bool {
	for _, w := range s.words {
		if w != 0 {
			return false
		}
	}
	return true
}

// Len returns the number of kinds in the set.
func (s Signature) Len() int {
	n := 0
	for _, w := range s.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// IDs returns the kinds in ascending order.
func (s Signature) IDs() []ComponentID {
	out := make([]ComponentID, 0, s.Len())
	for i, w := range s.words {
		for w != 0 {
			b := bits.TrailingZeros64(w)
			out = append(out, ComponentID(i*64+b))
			w &^= 1 << b
		}
	}
	return out
}

func (s Signature) String() string {
	ids := s.IDs()
	names := make([]string, len(ids))
	for i, id := range ids {
		if n := NameOf(id); n != "" {
			names[i] = n
		} else {
			names[i] = fmt.Sprintf("#%d", id)
		}
	}
	return "{" + strings.Join(names, ", ") + "}"
}
