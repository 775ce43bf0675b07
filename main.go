/*
Lbflow is a single page fluid simulation application: a D2Q9 lattice Boltzmann
solver computes 2D flow past a cylinder and the velocity magnitude field is
visualized in realtime via server push updates to an svg grid. The solver is
plain procedural numerics by intent; lattice Boltzmann steps are easiest to
verify when written the way the update equations read, and the goroutines are
spent on row-parallel sweeps and the snapshot fan-out instead of on clever
abstraction.
*/

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"lbflow/flowfield"
	"lbflow/render"
	"lbflow/server"

	channerics "github.com/niceyeti/channerics/channels"
)

// TODO: per 12-factor rules, these should be taken from env or config-map; KISS for now.
var (
	configPath = flag.String("config", "./config.yaml", "path to the simulation config")
	nworkers   = flag.Int("nworkers", runtime.NumCPU(), "number of worker routines for the grid sweeps")
	host       = flag.String("host", "", "The host ip")
	port       = flag.String("port", "8080", "The host port")
	outDir     = flag.String("outdir", "", "write heatmap pngs to this directory; empty disables rendering")
	stride     = flag.Int("stride", 4, "display decimation; every nth lattice cell becomes one svg cell")
	headless   = flag.Bool("headless", false, "run the solver without the web server and exit when done")
	dbg        = flag.Bool("debug", false, "log every snapshot instead of the periodic summary")
)

// listenAddr composes the server bind address from the host and port flags.
// Must run after flag.Parse.
func listenAddr() string {
	return *host + ":" + *port
}

func runApp() (err error) {
	var cfg *flowfield.Config
	if cfg, err = flowfield.FromYaml(*configPath); err != nil {
		return
	}

	appCtx, appCancel := context.WithCancel(context.TODO())
	defer appCancel()

	rng := rand.New(rand.NewSource(cfg.Seed))
	var sim *flowfield.Simulator
	if sim, err = flowfield.NewSimulator(*cfg, rng, *nworkers); err != nil {
		return
	}
	log.Printf("lbflow: %dx%d grid, tau %.3f, %d steps, obstacle r %.1f at (%d,%d)",
		cfg.Nx, cfg.Ny, cfg.Tau, cfg.Steps, cfg.Obstacle.Radius, cfg.Obstacle.X, cfg.Obstacle.Y)

	// Fan the solver's snapshots out to the consumers: progress logging,
	// png rendering, and the websocket view. Every branch must be drained
	// or the broadcast stalls the solver.
	branches := channerics.Broadcast(appCtx.Done(), sim.Snapshots(), 3)
	go logProgress(appCtx.Done(), branches[0], cfg.Steps)
	go renderHeatmaps(branches[1])

	simErr := make(chan error, 1)
	go func() {
		runErr := sim.Run(appCtx)
		if runErr == nil {
			log.Printf("simulation complete: %d steps, %d snapshots dropped", cfg.Steps, sim.Dropped)
		}
		simErr <- runErr
	}()

	if *headless {
		go drain(branches[2])
		return <-simErr
	}

	srv := server.NewServer(appCtx, listenAddr(), *stride, nil, branches[2])
	err = srv.Serve()
	return
}

// logProgress prints a periodic summary of the most recent snapshot, or every
// snapshot in debug mode. Snapshots land much faster than anyone reads logs,
// so the summary coalesces them onto a ticker.
func logProgress(done <-chan struct{}, snapshots <-chan *flowfield.Snapshot, steps int) {
	var (
		mu   sync.Mutex
		last *flowfield.Snapshot
	)
	go func() {
		for range channerics.NewTicker(done, 2*time.Second) {
			mu.Lock()
			sn := last
			last = nil
			mu.Unlock()
			if sn != nil {
				log.Printf("step %d/%d  max speed %.4f", sn.Step, steps, sn.MaxSpeed())
			}
		}
	}()

	for sn := range snapshots {
		if *dbg {
			log.Printf("step %d/%d  max speed %.4f", sn.Step, steps, sn.MaxSpeed())
			continue
		}
		mu.Lock()
		last = sn
		mu.Unlock()
	}
}

func renderHeatmaps(snapshots <-chan *flowfield.Snapshot) {
	if *outDir == "" {
		drain(snapshots)
		return
	}

	heatmap, err := render.NewHeatmap(*outDir)
	if err != nil {
		log.Printf("renderer disabled: %v", err)
		drain(snapshots)
		return
	}
	heatmap.Watch(snapshots)
}

func drain(snapshots <-chan *flowfield.Snapshot) {
	for range snapshots {
	}
}

func main() {
	flag.Parse()
	if err := runApp(); err != nil {
		fmt.Println(err)
	}
}
