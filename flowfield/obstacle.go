package flowfield

import "math"

// Obstacle is an immutable boolean field marking solid cells. It is built
// exactly once, before the time loop, and never mutated afterward.
type Obstacle struct {
	Nx, Ny int
	solid  []bool
	// cells lists the flat index of every solid cell, precomputed so the
	// bounce-back stage touches only obstacle cells.
	cells []int
}

// NewObstacle builds a circular mask: cell (x, y) is solid iff its Euclidean
// distance from the center is strictly less than the threshold radius.
func NewObstacle(nx, ny int, cfg ObstacleConfig) (*Obstacle, error) {
	o := &Obstacle{
		Nx:    nx,
		Ny:    ny,
		solid: make([]bool, nx*ny),
	}
	for y := 0; y < ny; y++ {
		for x := 0; x < nx; x++ {
			dx := float64(x - cfg.X)
			dy := float64(y - cfg.Y)
			if math.Sqrt(dx*dx+dy*dy) < cfg.Radius {
				idx := y*nx + x
				o.solid[idx] = true
				o.cells = append(o.cells, idx)
			}
		}
	}
	if len(o.cells) == 0 {
		return nil, ErrEmptyObstacle
	}
	return o, nil
}

// Solid reports whether cell (x, y) is inside the obstacle.
func (o *Obstacle) Solid(x, y int) bool {
	return o.solid[y*o.Nx+x]
}

// SolidCount returns the number of solid cells.
func (o *Obstacle) SolidCount() int {
	return len(o.cells)
}

// Mask returns a copy of the solid flags (row-major y*Nx+x), for consumers
// that render the obstacle alongside the flow.
func (o *Obstacle) Mask() []bool {
	mask := make([]bool, len(o.solid))
	copy(mask, o.solid)
	return mask
}
