package main

import (
	"fmt"
	"math/rand/v2"
	"net/http"
	"path/filepath"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/brushtoy/ecs"
	"github.com/milk9111/brushtoy/ecs/component"
	"github.com/milk9111/brushtoy/ecs/entity"
	"github.com/milk9111/brushtoy/ecs/render"
	"github.com/milk9111/brushtoy/ecs/system"
	"github.com/milk9111/brushtoy/export"
	"github.com/milk9111/brushtoy/physics"
	"github.com/milk9111/brushtoy/prefabs"
	"github.com/milk9111/brushtoy/replication"
	"go.uber.org/zap"
)

// Game wires the world, its systems and the optional relay connection into
// an ebiten game loop. Update runs one fixed simulation step per tick.
type Game struct {
	world     *ecs.World
	space     *physics.Space
	scheduler *ecs.Scheduler

	control   *system.BrushControlSystem
	images    *system.FillImageSystem
	deform    *system.DeformationSystem
	particles *system.ParticleSystem
	render    *system.RenderSystem

	watcher *prefabs.Watcher
	log     *zap.Logger

	width, height int
	tps           int
	exportDir     string
	debug         bool
}

// GameOptions are the command line choices that shape a Game.
type GameOptions struct {
	Debug     bool
	ImageRef  string
	ImageDirs []string
	ExportDir string
	Client    *replication.Client
}

func NewGame(opts GameOptions, log *zap.Logger) (*Game, error) {
	brushSpec, err := prefabs.LoadBrushSpec()
	if err != nil {
		return nil, err
	}
	particleSpec, err := prefabs.LoadParticlesSpec()
	if err != nil {
		return nil, err
	}
	worldSpec, err := prefabs.LoadWorldSpec()
	if err != nil {
		return nil, err
	}
	spawn, err := brushSpec.Options()
	if err != nil {
		return nil, err
	}
	particleCfg, err := particleConfig(particleSpec)
	if err != nil {
		return nil, err
	}

	w := ecs.NewWorld()
	space := physics.NewSpace(worldSpec.SpaceConfig())
	w.SetSolver(space)

	tps := worldSpec.TPS
	if tps <= 0 {
		tps = system.DefaultTPS
	}
	width, height := worldSpec.Width, worldSpec.Height
	if width <= 0 || height <= 0 {
		width, height = baseWidth, baseHeight
	}
	if _, err := entity.SpawnPlanes(w, float64(width), float64(height)); err != nil {
		return nil, err
	}
	if err := ecs.Add(w, w.CreateEntity(), component.InputComponent, component.Input{}); err != nil {
		return nil, err
	}

	loader := render.NewLoader(&http.Client{Timeout: 15 * time.Second}, opts.ImageDirs...)
	g := &Game{
		world: w,
		space: space,
		control: system.NewBrushControlSystem(system.BrushControlConfig{
			Spawn:    spawn,
			ImageRef: opts.ImageRef,
			TPS:      tps,
		}, log),
		images:    system.NewFillImageSystem(loader, log),
		deform:    system.NewDeformationSystem(deformationConfig(brushSpec), log),
		particles: system.NewParticleSystem(particleCfg, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())), log),
		render:    system.NewRenderSystem(renderConfig(worldSpec, particleSpec)),
		log:       log,
		width:     width,
		height:    height,
		tps:       tps,
		exportDir: opts.ExportDir,
		debug:     opts.Debug,
	}

	var remote ecs.System
	// offline, replication only drains the event queue
	replicate := system.NewReplicationSystem(nil, 0, log)
	if opts.Client != nil {
		remote = system.NewRemoteSystem(opts.Client.Inbound(), log)
		replicate = system.NewReplicationSystem(opts.Client, worldSpec.MoveEvery, log)
	}

	g.scheduler = ecs.NewScheduler(
		system.NewInputSystem(),
		remote,
		g.control,
		g.images,
		system.NewContactGraceSystem(),
		system.NewPhysicsSystem(tps, log),
		g.deform,
		g.particles,
		system.NewTTLSystem(),
		replicate,
	)

	if watcher, err := prefabs.NewWatcher(prefabs.Dir); err == nil {
		g.watcher = watcher
	} else {
		log.Debug("prefab hot reload disabled", zap.Error(err))
	}
	return g, nil
}

func (g *Game) Update() error {
	g.reloadPrefabs()
	g.scheduler.Update(g.world)

	if e, ok := g.world.First(component.InputComponent); ok {
		in, _ := ecs.Get(g.world, e, component.InputComponent)
		if in.ToggleDebug {
			g.debug = !g.debug
		}
		if in.Export {
			g.exportBoard()
		}
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.render.Draw(g.world, screen)
	if g.debug {
		system.DrawPhysicsDebug(g.space.CP(), screen)
		system.DrawBrushDebug(g.world, g.particles.Len(), screen)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}

// Close stops background work owned by the game.
func (g *Game) Close() {
	g.images.Close()
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
}

func (g *Game) reloadPrefabs() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case name, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			g.reload(name)
		case err, ok := <-g.watcher.Errors:
			if ok {
				g.log.Debug("prefab watcher", zap.Error(err))
			}
		default:
			return
		}
	}
}

func (g *Game) reload(name string) {
	switch name {
	case prefabs.BrushFile:
		spec, err := prefabs.LoadBrushSpec()
		if err != nil {
			g.log.Warn("reload brush spec", zap.Error(err))
			return
		}
		g.deform.SetConfig(deformationConfig(spec))
		if opts, err := spec.Options(); err == nil {
			cfg := g.control.Config()
			cfg.Spawn = opts
			g.control.SetConfig(cfg)
		}
	case prefabs.ParticlesFile, prefabs.WorldFile:
		particles, err := prefabs.LoadParticlesSpec()
		if err != nil {
			g.log.Warn("reload particle spec", zap.Error(err))
			return
		}
		world, err := prefabs.LoadWorldSpec()
		if err != nil {
			g.log.Warn("reload world spec", zap.Error(err))
			return
		}
		cfg, err := particleConfig(particles)
		if err != nil {
			g.log.Warn("reload particle spec", zap.Error(err))
			return
		}
		g.particles.SetConfig(cfg)
		g.render.SetConfig(renderConfig(world, particles))
	default:
		return
	}
	g.log.Info("reloaded prefab", zap.String("file", name))
}

func (g *Game) exportBoard() {
	cfg := g.render.Config()
	name := fmt.Sprintf("board-%s.pdf", time.Now().Format("20060102-150405"))
	path := filepath.Join(g.exportDir, name)
	err := export.SaveFile(path, g.world, export.Options{
		Width:          float64(g.width),
		Height:         float64(g.height),
		Background:     cfg.Background,
		PlaneColor:     cfg.PlaneColor,
		StrokeWidth:    float64(cfg.StrokeWidth),
		ParticleColor:  cfg.ParticleColor,
		ParticleRadius: float64(cfg.ParticleRadius),
	})
	if err != nil {
		g.log.Warn("export board", zap.Error(err))
		return
	}
	g.log.Info("exported board", zap.String("path", path))
}
