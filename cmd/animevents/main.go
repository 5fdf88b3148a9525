package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/caarlos0/env/v11"
	anim "github.com/milk9111/animevents/component"
	"github.com/milk9111/animevents/ecs"
	"github.com/milk9111/animevents/ecs/component"
	"github.com/milk9111/animevents/ecs/entity"
	"github.com/milk9111/animevents/ecs/system"
	"github.com/milk9111/animevents/prefabs"
)

type config struct {
	Prefab    string `env:"ANIMEVENTS_PREFAB" envDefault:"knight.yaml"`
	State     string `env:"ANIMEVENTS_STATE" envDefault:"attack"`
	Samples   string `env:"ANIMEVENTS_SAMPLES"`
	Ticks     int    `env:"ANIMEVENTS_TICKS" envDefault:"60"`
	Watch     bool   `env:"ANIMEVENTS_WATCH"`
	PrefabDir string `env:"ANIMEVENTS_PREFAB_DIR" envDefault:"prefabs"`
	Validate  bool
	Dump      bool
	Verbose   bool
}

func main() {
	cfg, err := parseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

// parseConfig loads environment defaults and then applies flags.
func parseConfig(fs *flag.FlagSet, args []string) (config, error) {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	fs.StringVar(&cfg.Prefab, "prefab", cfg.Prefab, "character prefab to load")
	fs.StringVar(&cfg.State, "state", cfg.State, "animation state to simulate")
	fs.StringVar(&cfg.Samples, "samples", cfg.Samples, "comma separated normalized times fed straight to the state scheduler")
	fs.IntVar(&cfg.Ticks, "ticks", cfg.Ticks, "frames to simulate when no samples are given")
	fs.BoolVar(&cfg.Watch, "watch", cfg.Watch, "re-run the simulation when prefab files change")
	fs.StringVar(&cfg.PrefabDir, "prefab-dir", cfg.PrefabDir, "directory overriding the embedded prefabs (empty for embedded only)")
	fs.BoolVar(&cfg.Validate, "validate", false, "only load and validate the prefab")
	fs.BoolVar(&cfg.Dump, "dump", false, "print the prefab as normalized YAML")
	fs.BoolVar(&cfg.Verbose, "v", false, "log skipped events and payload failures")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func run(ctx context.Context, cfg config, out io.Writer) error {
	prefabs.SetDiskDir(cfg.PrefabDir)
	if !cfg.Verbose {
		anim.SetLogger(nil)
	}

	if err := once(cfg, out); err != nil {
		if !cfg.Watch {
			return err
		}
		log.Printf("animevents: %v", err)
	}
	if !cfg.Watch {
		return nil
	}
	if cfg.PrefabDir == "" {
		return errors.New("watch needs a prefab directory")
	}

	watcher, err := prefabs.NewWatcher(cfg.PrefabDir)
	if err != nil {
		return fmt.Errorf("watch %s: %w", cfg.PrefabDir, err)
	}
	defer watcher.Close()

	log.Printf("animevents: watching %s", cfg.PrefabDir)
	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			fmt.Fprintf(out, "\n# reload (%s)\n", change.Path)
			if err := once(cfg, out); err != nil {
				log.Printf("animevents: %v", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("animevents: watch: %v", err)
		}
	}
}

func once(cfg config, out io.Writer) error {
	spec, err := prefabs.LoadCharacterSpec(cfg.Prefab)
	if err != nil {
		return err
	}

	switch {
	case cfg.Validate:
		fmt.Fprintf(out, "%s: ok (%d states, %d hitboxes)\n", cfg.Prefab, len(spec.States), len(spec.Receiver.Hitboxes))
		return nil
	case cfg.Dump:
		data, err := spec.Encode()
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	case cfg.Samples != "":
		samples, err := parseSamples(cfg.Samples)
		if err != nil {
			return err
		}
		return simulateSamples(spec, cfg.State, samples, out)
	default:
		return simulateTicks(spec, cfg.State, cfg.Ticks, out)
	}
}

func parseSamples(s string) ([]float64, error) {
	var out []float64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("sample %q: %w", part, err)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, errors.New("no samples given")
	}
	return out, nil
}

// simulateSamples drives one state scheduler directly: enter, one update per
// sample, exit.
func simulateSamples(spec *prefabs.CharacterSpec, state string, samples []float64, out io.Writer) error {
	set, ok := spec.StateSet(state)
	if !ok {
		return fmt.Errorf("state %q has no events", state)
	}
	receiver, _, err := spec.BuildReceiver(func(h prefabs.HitboxSpec) anim.Hittable {
		return anim.NewHitbox(h.Name, h.Width, h.Height, h.OffsetX, h.OffsetY)
	})
	if err != nil {
		return err
	}

	sched := anim.NewStateEventScheduler(set)
	step := "enter"
	sched.Emitter = &anim.FireEmitter{Handlers: []anim.FireHandler{func(f anim.Fire) {
		printFire(out, step, f.State, f.Event, f.Source.String(), f.Time, f.Err)
	}}}

	sched.Enter(anim.StaticReceiver(receiver))
	for _, s := range samples {
		step = strconv.FormatFloat(s, 'g', -1, 64)
		sched.Update(s)
	}
	step = "exit"
	sched.Exit()
	return nil
}

// simulateTicks runs the full entity pipeline: the character plays state for
// the given number of frames and then returns to its default clip.
func simulateTicks(spec *prefabs.CharacterSpec, state string, ticks int, out io.Writer) error {
	if spec.Animation == nil {
		return errors.New("prefab has no animation clips; use -samples")
	}
	w := ecs.NewWorld()
	w.SetPhysics(ecs.NewPhysicsSpace())

	tick := 0
	w.AddSystem(system.NewAnimationSystem())
	w.AddSystem(system.NewAnimationEventSystem())
	w.AddSystem(system.NewMeleeTraceSystem())
	w.AddSystem(system.NewHitboxSyncSystem())
	w.AddSystem(eventPrinter{out: out, tick: &tick})

	e, err := entity.BuildCharacterFromSpec(w, spec, "")
	if err != nil {
		return err
	}
	a, ok := ecs.Get(w, e, component.AnimationComponent.Kind())
	if !ok || !a.Play(state) {
		return fmt.Errorf("state %q has no animation clip", state)
	}

	for tick = 1; tick <= ticks; tick++ {
		w.Update()
	}
	if spec.Animation.Current != "" && spec.Animation.Current != state {
		a.Play(spec.Animation.Current)
		w.Update()
	}

	if recv, ok := ecs.Get(w, e, component.EventReceiverComponent.Kind()); ok && recv.Tracer != nil {
		fmt.Fprintf(out, "tracer segments live: %d\n", len(recv.Tracer.Segments()))
	}
	return nil
}

type eventPrinter struct {
	out  io.Writer
	tick *int
}

func (p eventPrinter) Update(w *ecs.World) {
	for _, evt := range w.Events().Peek() {
		switch data := evt.Data.(type) {
		case ecs.AnimationEvent:
			printFire(p.out, "tick "+strconv.Itoa(*p.tick), data.State, data.Event, data.Source, data.Time, data.Err)
		case ecs.StateChangedEvent:
			fmt.Fprintf(p.out, "%-9s state %q -> %q\n", "tick "+strconv.Itoa(*p.tick), data.From, data.To)
		}
	}
}

func printFire(out io.Writer, step, state, event, source string, at float64, err error) {
	line := fmt.Sprintf("%-9s %-10s %-14s %-8s t=%.3f", step, state, event, source, at)
	if err != nil {
		line += " error: " + err.Error()
	}
	fmt.Fprintln(out, line)
}
