package main

import (
	"errors"
	"fmt"
	"image/color"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"

	"github.com/milk9111/tankgame/assets"
	"github.com/milk9111/tankgame/common"
	"github.com/milk9111/tankgame/config"
	"github.com/milk9111/tankgame/ecs"
	"github.com/milk9111/tankgame/ecs/component"
	"github.com/milk9111/tankgame/ecs/entity"
	"github.com/milk9111/tankgame/ecs/system"
	"github.com/milk9111/tankgame/physics"
	"github.com/milk9111/tankgame/prefabs"
	"github.com/milk9111/tankgame/render"
	"github.com/milk9111/tankgame/scripting"
	"github.com/milk9111/tankgame/world"
)

var background = color.RGBA{R: 0x22, G: 0x22, B: 0x22, A: 0xff}

type Game struct {
	cfg *config.Config
	log *zap.Logger

	cat     *assets.Catalog
	prefabs *prefabs.Catalog
	world   *world.World
	scripts *scripting.Runtime
	watcher *prefabs.Watcher

	canvas *render.Canvas
	hud    *render.HUD
	cam    common.Camera

	player ecs.Entity
}

func NewGame(cfg *config.Config, log *zap.Logger) (*Game, error) {
	prefabs.Dir = cfg.Game.PrefabDir
	prefabCat, err := prefabs.LoadCatalog()
	if err != nil {
		return nil, err
	}

	cat := assets.NewCatalog(os.DirFS(cfg.Assets.Root), cfg.Assets.PixelScale, log)
	if cfg.Assets.Preload {
		if err := cat.Preload(); err != nil {
			return nil, fmt.Errorf("preload assets: %w", err)
		}
	}

	w := world.New(physics.NewSpace(cfg.Physics.Iterations),
		world.WithLogger(log),
		world.WithSubsteps(cfg.Physics.Substeps),
		world.WithSystems(
			system.NewTankControllerSystem(cat),
			system.NewProjectileSystem(cat),
			system.NewTrackAnimationSystem(),
			system.NewParticleSystem(),
		),
	)
	w.SetPhysicsDebugDraw(cfg.Physics.DebugDraw)

	g := &Game{
		cfg:     cfg,
		log:     log,
		cat:     cat,
		prefabs: prefabCat,
		world:   w,
		canvas:  render.NewCanvas(render.NewTextureCache(), cfg.Assets.PixelScale),
	}
	if err := g.load(); err != nil {
		g.Close()
		return nil, err
	}
	return g, nil
}

func (g *Game) load() error {
	cfg := g.cfg
	mapEnt, err := entity.LoadMap(g.world, g.cat, cfg.Game.Map, cfg.Game.Tileset)
	if err != nil {
		return fmt.Errorf("load map: %w", err)
	}
	m := ecs.MustGet(g.world.Registry(), mapEnt, component.MapComponent).Map
	viewW, viewH := float64(cfg.Window.Width), float64(cfg.Window.Height)
	center, hScope := m.FullScreenCamera(viewW, viewH)
	g.cam = common.Camera{Center: center, HScope: hScope, ViewW: viewW, ViewH: viewH}

	g.player, err = entity.SpawnTankSpec(g.world, g.cat, g.prefabs, cfg.Game.TankDesign, center, true)
	if err != nil {
		return fmt.Errorf("spawn player: %w", err)
	}
	if cfg.Game.Projectile != "" {
		ecs.MustGet(g.world.Registry(), g.player, component.TankControllerComponent).Projectile = g.prefabs.Projectile(cfg.Game.Projectile)
	}

	g.scripts = scripting.NewRuntime(g.world, prefabs.Scripts(cfg.Game.ScriptDir), g.log)
	if err := g.scripts.LoadAll(); err != nil {
		g.log.Warn("some contact scripts failed to load", zap.Error(err))
	}

	if cfg.Game.HotReload {
		g.watcher, err = prefabs.NewWatcher(cfg.Game.PrefabDir, cfg.Game.ScriptDir)
		if err != nil {
			g.log.Warn("hot reload disabled", zap.Error(err))
		}
	}

	g.hud, err = render.NewHUD(g.cat, g.log)
	return err
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF6) {
		g.world.SetPhysicsDebugDraw(!g.world.PhysicsDebugDraw())
	}
	g.applyReloads()
	g.readInput()

	g.world.Update(1 / float64(ebiten.TPS()))
	return nil
}

func (g *Game) readInput() {
	in, ok := ecs.Get(g.world.Registry(), g.player, component.TankInputComponent)
	if !ok {
		return
	}
	in.Forward = ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp)
	in.Backward = ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown)
	in.Left = ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft)
	in.Right = ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight)

	x, y := ebiten.CursorPosition()
	in.Aim = g.cam.ToWorld(float64(x), float64(y))

	// Shots fire on release.
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) || inpututil.IsKeyJustReleased(ebiten.KeySpace) {
		in.Shoot = true
	}
}

func (g *Game) applyReloads() {
	if g.watcher == nil {
		return
	}
	for _, change := range g.watcher.Drain() {
		var err error
		switch change.Kind {
		case prefabs.ChangeScript:
			err = g.scripts.Reload(change.Path)
		case prefabs.ChangePrefab:
			err = g.reloadPrefabs()
		}
		if err != nil {
			g.log.Warn("reload failed", zap.String("path", change.Path), zap.Stringer("kind", change.Kind), zap.Error(err))
			continue
		}
		g.log.Info("reloaded", zap.String("path", change.Path), zap.Stringer("kind", change.Kind))
	}
}

// reloadPrefabs re-reads the prefab files and applies the player's tank
// spec in place.
func (g *Game) reloadPrefabs() error {
	prefabCat, err := prefabs.LoadCatalog()
	if err != nil {
		return err
	}
	g.prefabs = prefabCat

	r := g.world.Registry()
	spec, ok := prefabCat.Tanks[g.cfg.Game.TankDesign]
	if !ok || !r.Alive(g.player) {
		return nil
	}
	if err := entity.UpdateTankDesign(g.world, g.cat, g.player, spec.Design); err != nil {
		return err
	}
	if ctrl, ok := ecs.Get(r, g.player, component.TankControllerComponent); ok {
		ctrl.Movement = spec.Movement.Settings()
		name := spec.Projectile
		if g.cfg.Game.Projectile != "" {
			name = g.cfg.Game.Projectile
		}
		ctrl.Projectile = prefabCat.Projectile(name)
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(background)
	g.canvas.Begin(screen, g.cam)
	g.world.Render(g.canvas)

	lines := []string{fmt.Sprintf("FPS: %.1f  Entities: %d", ebiten.ActualFPS(), g.world.Registry().Len())}
	if g.world.PhysicsDebugDraw() {
		lines = append(lines,
			fmt.Sprintf("Bodies: %d  Dropped contacts: %d", g.world.Bridge().BodyCount(), g.world.Contacts().Dropped()),
			fmt.Sprintf("Scripts: %v", g.scripts.Names()),
		)
	}
	g.hud.Draw(screen, lines...)
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return float64(g.cfg.Window.Width), float64(g.cfg.Window.Height)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}

// Close tears the game down in reverse order of construction. It is safe
// on a partially built game.
func (g *Game) Close() error {
	var errs []error
	if g.watcher != nil {
		errs = append(errs, g.watcher.Close())
	}
	if g.scripts != nil {
		g.scripts.Close()
	}
	if g.hud != nil {
		g.hud.Close()
	}
	g.world.Close()
	g.cat.Close()
	return errors.Join(errs...)
}
