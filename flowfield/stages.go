package flowfield

import (
	"math"

	"lbflow/lattice"
)

// Float copies of the lattice velocities, hoisted out of the numeric kernels.
var cxf, cyf [lattice.Q]float64

func init() {
	for i := 0; i < lattice.Q; i++ {
		cxf[i] = float64(lattice.Cx[i])
		cyf[i] = float64(lattice.Cy[i])
	}
}

// Direction groups crossing the open left/right boundaries: the leftward
// group re-enters at the outlet, the rightward group at the inlet.
var (
	outletDirs = [3]int{6, 7, 8}
	inletDirs  = [3]int{2, 3, 4}
)

// ApplyOpenBoundaries implements the zero-gradient inlet/outlet: the last
// column's leftward populations are copied from the second-to-last column,
// and the first column's rightward populations from the second column.
// Applied once per step, before streaming. Top and bottom stay periodic.
func (f *Field) ApplyOpenBoundaries() {
	last, prev := f.Nx-1, f.Nx-2
	for _, i := range outletDirs {
		p := f.planes[i]
		for y := 0; y < f.Ny; y++ {
			row := y * f.Nx
			p[row+last] = p[row+prev]
		}
	}
	for _, i := range inletDirs {
		p := f.planes[i]
		for y := 0; y < f.Ny; y++ {
			row := y * f.Nx
			p[row] = p[row+1]
		}
	}
}

// Stream transports every population one lattice step along its velocity,
// wrapping at the grid edges. Each plane is shifted through the scratch
// buffer and swapped in, so a shift never reads its own partial writes.
func (f *Field) Stream() {
	nx, ny := f.Nx, f.Ny
	for i := 0; i < lattice.Q; i++ {
		cx, cy := lattice.Cx[i], lattice.Cy[i]
		if cx == 0 && cy == 0 {
			continue
		}
		src, dst := f.planes[i], f.scratch
		for y := 0; y < ny; y++ {
			sy := y - cy
			if sy < 0 {
				sy += ny
			} else if sy >= ny {
				sy -= ny
			}
			srow := src[sy*nx : sy*nx+nx]
			drow := dst[y*nx : y*nx+nx]
			for x := 0; x < nx; x++ {
				sx := x - cx
				if sx < 0 {
					sx += nx
				} else if sx >= nx {
					sx -= nx
				}
				drow[x] = srow[sx]
			}
		}
		f.planes[i], f.scratch = f.scratch, f.planes[i]
	}
}

// capturePops copies the just-streamed 9-direction vector at every solid
// cell into buf (SolidCount * Q entries). The capture must complete before
// reflectPops writes any of those cells back.
func capturePops(f *Field, o *Obstacle, buf []float64) {
	for n, idx := range o.cells {
		base := n * lattice.Q
		for i := 0; i < lattice.Q; i++ {
			buf[base+i] = f.planes[i][idx]
		}
	}
}

// reflectPops writes each captured vector back into its solid cell with the
// reversal permutation applied: populations that streamed into the obstacle
// leave along the opposite direction.
func reflectPops(f *Field, o *Obstacle, buf []float64) {
	for n, idx := range o.cells {
		base := n * lattice.Q
		for i := 0; i < lattice.Q; i++ {
			f.planes[i][idx] = buf[base+lattice.Opposite[i]]
		}
	}
}

// Macro holds the macroscopic density and velocity fields recovered from the
// distribution field. It is recomputed every step and consumed within the
// same step; nothing persists across steps.
type Macro struct {
	Nx, Ny int

	Rho, Ux, Uy []float64
}

func NewMacro(nx, ny int) *Macro {
	return &Macro{
		Nx:  nx,
		Ny:  ny,
		Rho: make([]float64, nx*ny),
		Ux:  make([]float64, nx*ny),
		Uy:  make([]float64, nx*ny),
	}
}

// moments recovers rho, ux, uy for rows [y0, y1). A non-positive or
// non-finite density stops the computation; the returned StepError carries
// the offending cell, and the caller fills in the step number.
func (m *Macro) moments(f *Field, y0, y1 int) *StepError {
	nx := f.Nx
	for y := y0; y < y1; y++ {
		row := y * nx
		for x := 0; x < nx; x++ {
			idx := row + x
			rho, mx, my := 0.0, 0.0, 0.0
			for i := 0; i < lattice.Q; i++ {
				v := f.planes[i][idx]
				rho += v
				mx += v * cxf[i]
				my += v * cyf[i]
			}
			if !(rho > 0) || math.IsInf(rho, 0) {
				wrapped := ErrZeroDensity
				if math.IsNaN(rho) || math.IsInf(rho, 0) {
					wrapped = ErrDiverged
				}
				return &StepError{X: x, Y: y, Wrapped: wrapped}
			}
			m.Rho[idx] = rho
			m.Ux[idx] = mx / rho
			m.Uy[idx] = my / rho
		}
	}
	return nil
}

// finiteRows scans every population in rows [y0, y1) for NaN or Inf. The
// moments stage performs this check implicitly at the start of each step, but
// the last step's collision has no successor, so its output is scanned
// explicitly before the run is declared good.
func finiteRows(f *Field, y0, y1 int) *StepError {
	nx := f.Nx
	for i := 0; i < lattice.Q; i++ {
		plane := f.planes[i]
		for y := y0; y < y1; y++ {
			row := y * nx
			for x := 0; x < nx; x++ {
				v := plane[row+x]
				if math.IsNaN(v) || math.IsInf(v, 0) {
					return &StepError{X: x, Y: y, Wrapped: ErrDiverged}
				}
			}
		}
	}
	return nil
}

// pin forces the macroscopic velocity to exactly zero inside the obstacle.
// Density is left as computed and still participates in collision.
func (m *Macro) pin(o *Obstacle) {
	for _, idx := range o.cells {
		m.Ux[idx] = 0
		m.Uy[idx] = 0
	}
}

// collideRows relaxes every population in rows [y0, y1) toward its local
// BGK equilibrium at rate 1/tau, in place. Last stage of each timestep.
func collideRows(f *Field, m *Macro, invTau float64, y0, y1 int) {
	nx := f.Nx
	for y := y0; y < y1; y++ {
		row := y * nx
		for x := 0; x < nx; x++ {
			idx := row + x
			rho := m.Rho[idx]
			ux := m.Ux[idx]
			uy := m.Uy[idx]
			u215 := 1.5 * (ux*ux + uy*uy)
			for i := 0; i < lattice.Q; i++ {
				cu := cxf[i]*ux + cyf[i]*uy
				feq := rho * lattice.W[i] * (1 + 3*cu + 4.5*cu*cu - u215)
				f.planes[i][idx] += -invTau * (f.planes[i][idx] - feq)
			}
		}
	}
}
