package flowfield

import "math"

// Snapshot is the macroscopic state handed outward at the plot cadence:
// velocity magnitude plus the underlying moments, all deep copies so a slow
// or misbehaving consumer can never touch solver state. Solid is shared
// across snapshots since the obstacle mask is immutable for the run.
type Snapshot struct {
	Step   int
	Nx, Ny int

	// Speed is sqrt(ux^2 + uy^2) per cell, row-major y*Nx+x.
	Speed []float64
	// Rho, Ux, Uy are the moments the speed was derived from.
	Rho, Ux, Uy []float64
	// Solid marks obstacle cells; treat as read-only.
	Solid []bool
}

// SpeedAt returns the velocity magnitude at cell (x, y).
func (sn *Snapshot) SpeedAt(x, y int) float64 {
	return sn.Speed[y*sn.Nx+x]
}

// MaxSpeed returns the largest velocity magnitude in the snapshot.
func (sn *Snapshot) MaxSpeed() (max float64) {
	for _, v := range sn.Speed {
		if v > max {
			max = v
		}
	}
	return
}

func (s *Simulator) snapshot(step int) *Snapshot {
	n := s.cfg.Nx * s.cfg.Ny
	sn := &Snapshot{
		Step:  step,
		Nx:    s.cfg.Nx,
		Ny:    s.cfg.Ny,
		Speed: make([]float64, n),
		Rho:   make([]float64, n),
		Ux:    make([]float64, n),
		Uy:    make([]float64, n),
		Solid: s.mask,
	}
	copy(sn.Rho, s.macro.Rho)
	copy(sn.Ux, s.macro.Ux)
	copy(sn.Uy, s.macro.Uy)
	for i := 0; i < n; i++ {
		sn.Speed[i] = math.Sqrt(sn.Ux[i]*sn.Ux[i] + sn.Uy[i]*sn.Uy[i])
	}
	return sn
}
