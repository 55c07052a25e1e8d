package scripting

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/milk9111/tankgame/ecs/component"
)

var ErrNoTrigger = errors.New("scripting: missing \"// on:\" header")

type Trigger int

const (
	OnBegin Trigger = iota
	OnEnd
)

func (t Trigger) String() string {
	if t == OnEnd {
		return "end"
	}
	return "begin"
}

// Header is the leading comment block of a contact script:
//
//	// on: begin
//	// with: Projectile, Tank
//
// "with" may be omitted to match every entity.
type Header struct {
	Trigger   Trigger
	With      []string
	Signature component.Signature
}

// ParseHeader reads the comment lines at the top of src. Parsing stops at
// the first line that is neither blank nor a comment.
func ParseHeader(src []byte) (Header, error) {
	var h Header
	seen := false
	sc := bufio.NewScanner(bytes.NewReader(src))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		body, ok := strings.CutPrefix(line, "//")
		if !ok {
			break
		}
		key, value, ok := strings.Cut(body, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "on":
			switch strings.ToLower(value) {
			case "begin":
				h.Trigger = OnBegin
			case "end":
				h.Trigger = OnEnd
			default:
				return Header{}, fmt.Errorf("scripting: unknown trigger %q", value)
			}
			seen = true
		case "with":
			for _, name := range strings.Split(value, ",") {
				if name = strings.TrimSpace(name); name != "" {
					h.With = append(h.With, name)
				}
			}
		}
	}
	if err := sc.Err(); err != nil {
		return Header{}, err
	}
	if !seen {
		return Header{}, ErrNoTrigger
	}
	sig, err := component.SignatureOf(h.With...)
	if err != nil {
		return Header{}, err
	}
	h.Signature = sig
	return h, nil
}
