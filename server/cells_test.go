package server

import (
	"testing"

	"lbflow/flowfield"

	. "github.com/smartystreets/goconvey/convey"
)

func testSnapshot() *flowfield.Snapshot {
	nx, ny := 8, 4
	sn := &flowfield.Snapshot{
		Step:  0,
		Nx:    nx,
		Ny:    ny,
		Speed: make([]float64, nx*ny),
		Solid: make([]bool, nx*ny),
	}
	for i := range sn.Speed {
		sn.Speed[i] = float64(i)
	}
	// One solid cell at (2, 1).
	sn.Solid[1*nx+2] = true
	sn.Speed[1*nx+2] = 0
	return sn
}

func TestConvert(t *testing.T) {
	Convey("Given a snapshot", t, func() {
		sn := testSnapshot()

		Convey("Stride one maps every cell", func() {
			cells := Convert(sn, 1)
			So(len(cells), ShouldEqual, sn.Ny)
			So(len(cells[0]), ShouldEqual, sn.Nx)
			So(cells[1][2].Solid, ShouldBeTrue)
			So(cells[1][2].Fill, ShouldEqual, "rgb(0,0,0)")
		})

		Convey("A larger stride decimates the view", func() {
			cells := Convert(sn, 2)
			So(len(cells), ShouldEqual, 2)
			So(len(cells[0]), ShouldEqual, 4)
			// Cell view coordinates are in decimated units, with Y
			// flipped into the svg coordinate system.
			So(cells[1][3].X, ShouldEqual, 3)
			So(cells[1][3].Y, ShouldEqual, 0)
		})

		Convey("The fastest cell saturates the color ramp", func() {
			cells := Convert(sn, 1)
			So(cells[3][7].Fill, ShouldEqual, "rgb(0,170,255)")
		})
	})
}

func TestUpdateOps(t *testing.T) {
	Convey("Given converted cells", t, func() {
		cells := Convert(testSnapshot(), 1)
		updates := updateOps(cells)

		Convey("There is one fill op per displayed cell", func() {
			So(len(updates), ShouldEqual, 8*4)
			So(updates[0].EleId, ShouldEqual, "0-3-cell")
			So(len(updates[0].Ops), ShouldEqual, 1)
			So(updates[0].Ops[0].Key, ShouldEqual, "fill")
		})
	})
}
