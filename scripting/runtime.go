// Package scripting runs tengo contact scripts as world contact listeners.
package scripting

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"path"
	"slices"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/jakecoffman/cp"
	"go.uber.org/zap"

	"github.com/milk9111/tankgame/ecs"
	"github.com/milk9111/tankgame/ecs/component"
	"github.com/milk9111/tankgame/world"
)

// Ext is the file extension of contact scripts.
const Ext = ".tengo"

// Script is one loaded contact script.
type Script struct {
	Name   string
	Header Header

	compiled *tengo.Compiled
	listener world.ListenerID
}

// Runtime owns the contact scripts of a world. Each script is registered
// as a begin or end listener on its header signature. A script that fails
// to load leaves its previous version registered.
type Runtime struct {
	w    *world.World
	fsys fs.FS
	log  *zap.Logger

	scripts map[string]*Script
}

func NewRuntime(w *world.World, fsys fs.FS, log *zap.Logger) *Runtime {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runtime{
		w:       w,
		fsys:    fsys,
		log:     log.Named("scripting"),
		scripts: make(map[string]*Script),
	}
}

// LoadAll loads every script at the root of the runtime's FS and returns
// the joined load errors.
func (rt *Runtime) LoadAll() error {
	names, err := fs.Glob(rt.fsys, "*"+Ext)
	if err != nil {
		return fmt.Errorf("scripting: list scripts: %w", err)
	}
	var errs []error
	for _, name := range names {
		if err := rt.Load(name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Load compiles name and registers it, replacing a loaded version.
func (rt *Runtime) Load(name string) error {
	src, err := fs.ReadFile(rt.fsys, name)
	if err != nil {
		return fmt.Errorf("scripting: load %s: %w", name, err)
	}
	s, err := rt.compile(name, src)
	if err != nil {
		return fmt.Errorf("scripting: load %s: %w", name, err)
	}

	rt.Unload(name)
	rt.register(s)
	rt.scripts[name] = s
	rt.log.Info("script loaded", zap.String("script", name), zap.Stringer("on", s.Header.Trigger), zap.Strings("with", s.Header.With))
	return nil
}

// Reload handles a changed file path from the prefab watcher. A removed
// script is unloaded.
func (rt *Runtime) Reload(changed string) error {
	name := path.Base(strings.ReplaceAll(changed, "\\", "/"))
	if _, err := fs.Stat(rt.fsys, name); errors.Is(err, fs.ErrNotExist) {
		if rt.Unload(name) {
			rt.log.Info("script unloaded", zap.String("script", name))
		}
		return nil
	}
	return rt.Load(name)
}

// Unload removes a script's listener. It reports whether the script was
// loaded.
func (rt *Runtime) Unload(name string) bool {
	s, ok := rt.scripts[name]
	if !ok {
		return false
	}
	rt.w.Contacts().Remove(s.listener)
	delete(rt.scripts, name)
	return true
}

// Names returns the loaded script names in order.
func (rt *Runtime) Names() []string {
	names := make([]string, 0, len(rt.scripts))
	for name := range rt.scripts {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (rt *Runtime) Script(name string) (*Script, bool) {
	s, ok := rt.scripts[name]
	return s, ok
}

// Close unregisters every script.
func (rt *Runtime) Close() {
	for name := range rt.scripts {
		rt.Unload(name)
	}
}

func (rt *Runtime) compile(name string, src []byte) (*Script, error) {
	header, err := ParseHeader(src)
	if err != nil {
		return nil, err
	}

	vars := map[string]any{
		"self":          0,
		"other":         0,
		"x":             0.0,
		"y":             0.0,
		"nx":            0.0,
		"ny":            0.0,
		"destroy_self":  false,
		"destroy_other": false,
	}
	for fnName, fn := range rt.builtins() {
		vars[fnName] = &tengo.UserFunction{Name: fnName, Value: fn}
	}

	script := tengo.NewScript(src)
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))
	if err := declare(script, vars); err != nil {
		return nil, err
	}

	compiled, err := script.Compile()
	if err != nil {
		return nil, err
	}
	return &Script{Name: name, Header: header, compiled: compiled}, nil
}

// declare adds vars to script in name order.
func declare(script *tengo.Script, vars map[string]any) error {
	for _, name := range slices.Sorted(maps.Keys(vars)) {
		if err := script.Add(name, vars[name]); err != nil {
			return fmt.Errorf("declare %s: %w", name, err)
		}
	}
	return nil
}

func (rt *Runtime) register(s *Script) {
	contacts := rt.w.Contacts()
	if s.Header.Trigger == OnEnd {
		s.listener = contacts.AddEndListener(s.Header.Signature, func(r *ecs.Registry, self, other ecs.Entity) {
			rt.run(r, s, self, other, cp.Vector{}, cp.Vector{})
		})
		return
	}
	s.listener = contacts.AddBeginListener(s.Header.Signature, func(r *ecs.Registry, self, other ecs.Entity, point, normal cp.Vector) {
		rt.run(r, s, self, other, point, normal)
	})
}

func (rt *Runtime) run(r *ecs.Registry, s *Script, self, other ecs.Entity, point, normal cp.Vector) {
	c := s.compiled
	vars := map[string]any{
		"self":          int64(self),
		"other":         int64(other),
		"x":             point.X,
		"y":             point.Y,
		"nx":            normal.X,
		"ny":            normal.Y,
		"destroy_self":  false,
		"destroy_other": false,
	}
	for k, v := range vars {
		if err := c.Set(k, v); err != nil {
			rt.log.Warn("script input failed", zap.String("script", s.Name), zap.String("var", k), zap.Error(err))
			return
		}
	}
	if err := c.Run(); err != nil {
		rt.log.Warn("script failed", zap.String("script", s.Name), zap.Error(err))
		return
	}
	if c.Get("destroy_self").Bool() {
		r.Defer(self)
	}
	if c.Get("destroy_other").Bool() {
		r.Defer(other)
	}
}

// builtins are the functions every script can call. Entities are passed
// as ints.
func (rt *Runtime) builtins() map[string]tengo.CallableFunc {
	return map[string]tengo.CallableFunc{
		"has": func(args ...tengo.Object) (tengo.Object, error) {
			if len(args) != 2 {
				return nil, tengo.ErrWrongNumArguments
			}
			e, ok := tengo.ToInt64(args[0])
			if !ok {
				return nil, tengo.ErrInvalidArgumentType{Name: "entity", Expected: "int", Found: args[0].TypeName()}
			}
			name, ok := tengo.ToString(args[1])
			if !ok {
				return nil, tengo.ErrInvalidArgumentType{Name: "component", Expected: "string", Found: args[1].TypeName()}
			}
			id, ok := component.Lookup(name)
			if !ok {
				return nil, fmt.Errorf("%w: %q", component.ErrUnknownComponent, name)
			}
			if rt.w.Registry().HasID(ecs.Entity(e), id) {
				return tengo.TrueValue, nil
			}
			return tengo.FalseValue, nil
		},
		"shooter": func(args ...tengo.Object) (tengo.Object, error) {
			if len(args) != 1 {
				return nil, tengo.ErrWrongNumArguments
			}
			e, ok := tengo.ToInt64(args[0])
			if !ok {
				return nil, tengo.ErrInvalidArgumentType{Name: "entity", Expected: "int", Found: args[0].TypeName()}
			}
			p, ok := ecs.Get(rt.w.Registry(), ecs.Entity(e), component.ProjectileComponent)
			if !ok {
				return &tengo.Int{Value: 0}, nil
			}
			return &tengo.Int{Value: int64(p.Shooter)}, nil
		},
		"alive": func(args ...tengo.Object) (tengo.Object, error) {
			if len(args) != 1 {
				return nil, tengo.ErrWrongNumArguments
			}
			e, ok := tengo.ToInt64(args[0])
			if !ok {
				return nil, tengo.ErrInvalidArgumentType{Name: "entity", Expected: "int", Found: args[0].TypeName()}
			}
			if rt.w.Registry().Alive(ecs.Entity(e)) && !rt.w.Registry().Pending(ecs.Entity(e)) {
				return tengo.TrueValue, nil
			}
			return tengo.FalseValue, nil
		},
	}
}
