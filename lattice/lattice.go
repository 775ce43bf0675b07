// Package lattice defines the D2Q9 discrete velocity set: nine lattice
// directions on a square grid (the rest direction plus the eight surrounding
// unit steps), each with an integer velocity and a quadrature weight.
// The tables are fixed for the lifetime of the program and shared by every
// solver stage.
package lattice

// Q is the number of discrete velocity directions in the D2Q9 set.
const Q = 9

// Direction indices follow the conventional ordering in which index 3 is the
// (+1, 0) direction; bounce-back depends on this ordering via Opposite.
var (
	// Cx and Cy are the x and y components of each lattice velocity.
	Cx = [Q]int{0, 0, 1, 1, 1, 0, -1, -1, -1}
	Cy = [Q]int{0, 1, 1, 0, -1, -1, -1, 0, 1}

	// W holds the quadrature weight of each direction: 4/9 for the rest
	// direction, 1/9 for the axis-aligned steps, 1/36 for the diagonals.
	// The nine weights sum to 1.
	W = [Q]float64{
		4.0 / 9,
		1.0 / 9, 1.0 / 36,
		1.0 / 9, 1.0 / 36,
		1.0 / 9, 1.0 / 36,
		1.0 / 9, 1.0 / 36,
	}

	// Opposite maps each direction to the one with the negated velocity.
	// It is an involution: Opposite[Opposite[i]] == i for all i.
	Opposite = [Q]int{0, 5, 6, 7, 8, 1, 2, 3, 4}
)

// Equilibrium returns the BGK equilibrium population for direction i at a
// cell with density rho and velocity (ux, uy):
//
//	Feq_i = rho * w_i * (1 + 3*cu + 4.5*cu^2 - 1.5*(ux^2 + uy^2))
//
// where cu is the projection of the velocity onto the lattice direction.
// At rest (ux = uy = 0) this reduces to rho * w_i.
func Equilibrium(i int, rho, ux, uy float64) float64 {
	cu := float64(Cx[i])*ux + float64(Cy[i])*uy
	u2 := ux*ux + uy*uy
	return rho * W[i] * (1 + 3*cu + 4.5*cu*cu - 1.5*u2)
}
