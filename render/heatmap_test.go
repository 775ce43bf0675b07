package render

import (
	"os"
	"path/filepath"
	"testing"

	"lbflow/flowfield"

	. "github.com/smartystreets/goconvey/convey"
)

func testSnapshot() *flowfield.Snapshot {
	nx, ny := 6, 3
	sn := &flowfield.Snapshot{Nx: nx, Ny: ny, Speed: make([]float64, nx*ny)}
	for i := range sn.Speed {
		sn.Speed[i] = float64(i) * 0.01
	}
	return sn
}

func TestSpeedGrid(t *testing.T) {
	Convey("Given a snapshot adapted to a plotter grid", t, func() {
		sn := testSnapshot()
		g := speedGrid{sn}

		Convey("Dims match the snapshot shape", func() {
			c, r := g.Dims()
			So(c, ShouldEqual, 6)
			So(r, ShouldEqual, 3)
		})

		Convey("Rows are flipped so field row zero draws at the top", func() {
			So(g.Z(0, 2), ShouldEqual, sn.SpeedAt(0, 0))
			So(g.Z(5, 0), ShouldEqual, sn.SpeedAt(5, 2))
		})
	})
}

func TestSave(t *testing.T) {
	Convey("Given a heatmap writer on a temp dir", t, func() {
		dir, err := os.MkdirTemp("", "lbflow-render")
		So(err, ShouldBeNil)
		defer os.RemoveAll(dir)

		h, err := NewHeatmap(dir)
		So(err, ShouldBeNil)

		Convey("Saving a snapshot produces a png named by step", func() {
			sn := testSnapshot()
			sn.Step = 300
			So(h.Save(sn), ShouldBeNil)

			_, err := os.Stat(filepath.Join(dir, "speed_00300.png"))
			So(err, ShouldBeNil)
		})
	})
}
