package world

import (
	"slices"

	"github.com/jakecoffman/cp"
	"go.uber.org/zap"

	"github.com/milk9111/tankgame/common"
	"github.com/milk9111/tankgame/ecs"
	"github.com/milk9111/tankgame/ecs/component"
	"github.com/milk9111/tankgame/physics"
)

// ListenerID identifies a registered contact listener. The top bit tells
// end listeners from begin listeners.
type ListenerID uint32

const endListener ListenerID = 1 << 31

func (id ListenerID) IsEnd() bool { return id&endListener != 0 }

// BeginFunc is called when self starts touching other. point is the
// contact point and normal points from self toward other.
type BeginFunc func(r *ecs.Registry, self, other ecs.Entity, point, normal cp.Vector)

// EndFunc is called when self stops touching other.
type EndFunc func(r *ecs.Registry, self, other ecs.Entity)

type beginListener struct {
	id  ListenerID
	sig component.Signature
	fn  BeginFunc
}

type endListenerEntry struct {
	id  ListenerID
	sig component.Signature
	fn  EndFunc
}

// ContactDispatcher turns engine contact events into listener calls. Each
// listener is called once per side of a contact whose entity matches its
// signature, so both participants see the event from their own point of
// view.
type ContactDispatcher struct {
	reg    *ecs.Registry
	engine physics.Engine
	bridge *PhysicsBridge
	log    *zap.Logger

	begin  []beginListener
	end    []endListenerEntry
	nextID ListenerID

	dropped int
}

func newContactDispatcher(reg *ecs.Registry, engine physics.Engine, bridge *PhysicsBridge, log *zap.Logger) *ContactDispatcher {
	return &ContactDispatcher{reg: reg, engine: engine, bridge: bridge, log: log}
}

// newID wraps within the bits below the end tag and never returns zero.
func (d *ContactDispatcher) newID() ListenerID {
	d.nextID = (d.nextID + 1) &^ endListener
	if d.nextID == 0 {
		d.nextID = 1
	}
	return d.nextID
}

// AddBeginListener registers fn for contacts where an entity matches sig.
// Listeners run in registration order.
func (d *ContactDispatcher) AddBeginListener(sig component.Signature, fn BeginFunc) ListenerID {
	id := d.newID()
	d.begin = append(d.begin, beginListener{id: id, sig: sig, fn: fn})
	return id
}

func (d *ContactDispatcher) AddEndListener(sig component.Signature, fn EndFunc) ListenerID {
	id := d.newID() | endListener
	d.end = append(d.end, endListenerEntry{id: id, sig: sig, fn: fn})
	return id
}

// OnBegin registers fn for entities having every kind in ids.
func (d *ContactDispatcher) OnBegin(fn BeginFunc, ids ...component.ComponentID) ListenerID {
	return d.AddBeginListener(component.NewSignature(ids...), fn)
}

func (d *ContactDispatcher) OnEnd(fn EndFunc, ids ...component.ComponentID) ListenerID {
	return d.AddEndListener(component.NewSignature(ids...), fn)
}

// Remove unregisters a listener. It reports false for unknown ids.
func (d *ContactDispatcher) Remove(id ListenerID) bool {
	if id.IsEnd() {
		i := slices.IndexFunc(d.end, func(l endListenerEntry) bool { return l.id == id })
		if i < 0 {
			return false
		}
		d.end = slices.Delete(d.end, i, i+1)
		return true
	}
	i := slices.IndexFunc(d.begin, func(l beginListener) bool { return l.id == id })
	if i < 0 {
		return false
	}
	d.begin = slices.Delete(d.begin, i, i+1)
	return true
}

// Len returns the number of registered begin and end listeners.
func (d *ContactDispatcher) Len() (begin, end int) {
	return len(d.begin), len(d.end)
}

// Dropped returns how many end events referenced destroyed shapes.
func (d *ContactDispatcher) Dropped() int {
	return d.dropped
}

// Dispatch delivers queued begin events and then queued end events.
func (d *ContactDispatcher) Dispatch() {
	d.DispatchBegin()
	d.DispatchEnd()
}

type participant struct {
	entity ecs.Entity
	body   physics.BodyID
}

func (d *ContactDispatcher) resolve(shape physics.ShapeID) (participant, bool) {
	if !d.engine.ShapeValid(shape) {
		return participant{}, false
	}
	body := d.engine.BodyOf(shape)
	e := d.bridge.EntityOf(body)
	if !d.bridge.owns(e, body) {
		return participant{}, false
	}
	return participant{entity: e, body: body}, true
}

func (d *ContactDispatcher) live(a, b participant) bool {
	return d.bridge.owns(a.entity, a.body) && d.bridge.owns(b.entity, b.body)
}

// DispatchBegin drains begin events. Listeners registered or removed by a
// callback take effect on the next call.
func (d *ContactDispatcher) DispatchBegin() {
	events := d.engine.DrainBeginContacts()
	if len(events) == 0 {
		return
	}
	listeners := slices.Clone(d.begin)
	for _, ev := range events {
		a, okA := d.resolve(ev.ShapeA)
		b, okB := d.resolve(ev.ShapeB)
		if !okA || !okB {
			d.log.Debug("skipping begin contact with a missing participant",
				zap.Uint64("shape_a", uint64(ev.ShapeA)),
				zap.Uint64("shape_b", uint64(ev.ShapeB)))
			continue
		}
		point := common.Average(ev.Points)
		d.beginEvent(listeners, a, b, point, ev.Normal)
	}
}

func (d *ContactDispatcher) beginEvent(listeners []beginListener, a, b participant, point, normal cp.Vector) {
	for _, l := range listeners {
		if !d.live(a, b) {
			return
		}
		if d.reg.Matches(a.entity, l.sig) {
			l.fn(d.reg, a.entity, b.entity, point, normal)
			if !d.live(a, b) {
				return
			}
		}
		if d.reg.Matches(b.entity, l.sig) {
			l.fn(d.reg, b.entity, a.entity, point, normal.Neg())
		}
	}
}

// DispatchEnd drains end events. Events naming a shape that no longer
// exists are dropped and counted.
func (d *ContactDispatcher) DispatchEnd() {
	events := d.engine.DrainEndContacts()
	if len(events) == 0 {
		return
	}
	listeners := slices.Clone(d.end)
	for _, ev := range events {
		if !d.engine.ShapeValid(ev.ShapeA) || !d.engine.ShapeValid(ev.ShapeB) {
			d.dropped++
			d.log.Debug("dropping stale end contact",
				zap.Uint64("shape_a", uint64(ev.ShapeA)),
				zap.Uint64("shape_b", uint64(ev.ShapeB)),
				zap.Int("dropped", d.dropped))
			continue
		}
		a, okA := d.resolve(ev.ShapeA)
		b, okB := d.resolve(ev.ShapeB)
		if !okA || !okB {
			continue
		}
		d.endEvent(listeners, a, b)
	}
}

func (d *ContactDispatcher) endEvent(listeners []endListenerEntry, a, b participant) {
	for _, l := range listeners {
		if !d.live(a, b) {
			return
		}
		if d.reg.Matches(a.entity, l.sig) {
			l.fn(d.reg, a.entity, b.entity)
			if !d.live(a, b) {
				return
			}
		}
		if d.reg.Matches(b.entity, l.sig) {
			l.fn(d.reg, b.entity, a.entity)
		}
	}
}
