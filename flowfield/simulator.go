package flowfield

import (
	"context"
	"math/rand"

	"lbflow/lattice"
)

// snapshotBuffer bounds how many unconsumed snapshots are held before the
// solver starts dropping them. Emission never blocks the time loop.
const snapshotBuffer = 4

// Simulator owns the whole simulation state: the lattice field, the obstacle
// mask, and the scratch macroscopic buffers. Stages execute in a fixed order
// with a full-grid barrier between them; only the per-cell work inside the
// macroscopic and collision stages is parallelized.
type Simulator struct {
	cfg Config

	field    *Field
	obstacle *Obstacle
	macro    *Macro
	// bounce holds the pre-bounce population vectors captured at solid
	// cells between the streaming and write-back phases.
	bounce []float64
	mask   []bool

	pool      pool
	snapshots chan *Snapshot
	// Dropped counts snapshots discarded because no consumer kept up.
	Dropped int
}

// NewSimulator validates the configuration, builds the obstacle mask, and
// initializes the distribution field from the passed random source. workers
// <= 0 selects one worker per CPU.
func NewSimulator(cfg Config, rng *rand.Rand, workers int) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	obstacle, err := NewObstacle(cfg.Nx, cfg.Ny, cfg.Obstacle)
	if err != nil {
		return nil, err
	}
	return &Simulator{
		cfg:       cfg,
		field:     NewField(cfg.Nx, cfg.Ny, cfg.Noise, cfg.Inflow, rng),
		obstacle:  obstacle,
		macro:     NewMacro(cfg.Nx, cfg.Ny),
		bounce:    make([]float64, obstacle.SolidCount()*lattice.Q),
		mask:      obstacle.Mask(),
		pool:      newPool(workers, cfg.Ny),
		snapshots: make(chan *Snapshot, snapshotBuffer),
	}, nil
}

// Snapshots returns the channel on which macroscopic snapshots are emitted
// every PlotEvery steps. The channel is closed when Run returns.
func (s *Simulator) Snapshots() <-chan *Snapshot {
	return s.snapshots
}

// Field returns the live distribution field. Callers must not mutate it
// while Run is in progress.
func (s *Simulator) Field() *Field { return s.field }

// Macro returns the macroscopic fields of the most recently completed step.
func (s *Simulator) Macro() *Macro { return s.macro }

// Obstacle returns the immutable obstacle mask.
func (s *Simulator) Obstacle() *Obstacle { return s.obstacle }

// Config returns the validated configuration of this run.
func (s *Simulator) Config() Config { return s.cfg }

// Run executes the time loop for the configured number of steps, emitting a
// snapshot at the end of every PlotEvery-th step (step 0 included). It
// returns early with a *StepError when the field diverges, or with the
// context error on cancellation. The snapshot channel is closed on return.
func (s *Simulator) Run(ctx context.Context) error {
	defer close(s.snapshots)

	for it := 0; it < s.cfg.Steps; it++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := s.step(it); err != nil {
			return err
		}

		if it%s.cfg.PlotEvery == 0 {
			s.emit(it)
		}
	}

	// The moments stage validates the previous step's collision output, so
	// the final collision is still unchecked when the loop exits.
	if s.cfg.Steps > 0 {
		if err := s.pool.runErr(func(y0, y1 int) *StepError {
			return finiteRows(s.field, y0, y1)
		}); err != nil {
			err.Step = s.cfg.Steps - 1
			return err
		}
	}
	return nil
}

// step advances the field by one timestep. The stage order is fixed:
// boundary extrapolation, streaming, pre-bounce capture, macroscopic
// moments, bounce-back write-back with velocity pinning, collision.
func (s *Simulator) step(it int) error {
	s.field.ApplyOpenBoundaries()
	s.field.Stream()

	// The capture must see the un-reflected, just-streamed populations, and
	// so must the moments; both therefore precede the write-back.
	capturePops(s.field, s.obstacle, s.bounce)

	if err := s.pool.runErr(func(y0, y1 int) *StepError {
		return s.macro.moments(s.field, y0, y1)
	}); err != nil {
		err.Step = it
		return err
	}

	reflectPops(s.field, s.obstacle, s.bounce)
	s.macro.pin(s.obstacle)

	invTau := 1 / s.cfg.Tau
	s.pool.run(func(y0, y1 int) {
		collideRows(s.field, s.macro, invTau, y0, y1)
	})
	return nil
}

// emit hands a deep-copied snapshot to whoever is listening. The send never
// blocks: with no consumer, or a stalled one, the frame is dropped and the
// solver moves on.
func (s *Simulator) emit(it int) {
	select {
	case s.snapshots <- s.snapshot(it):
	default:
		s.Dropped++
	}
}
