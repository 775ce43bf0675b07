// Package render writes velocity-magnitude heatmap images for solver
// snapshots. Like the live server it is a pure snapshot consumer; a failed
// render is logged and the run continues.
package render

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"lbflow/flowfield"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Heatmap saves one png per snapshot into its output directory.
type Heatmap struct {
	outDir string
}

func NewHeatmap(outDir string) (*Heatmap, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("render: create output dir: %w", err)
	}
	return &Heatmap{outDir: outDir}, nil
}

// Watch consumes snapshots until the channel closes, saving each one.
func (h *Heatmap) Watch(snapshots <-chan *flowfield.Snapshot) {
	for sn := range snapshots {
		if err := h.Save(sn); err != nil {
			log.Printf("render: %v", err)
		}
	}
}

// Save writes the snapshot's speed field as speed_<step>.png.
func (h *Heatmap) Save(sn *flowfield.Snapshot) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("velocity magnitude, step %d", sn.Step)
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"

	hm := plotter.NewHeatMap(speedGrid{sn}, palette.Heat(255, 1))
	p.Add(hm)

	name := filepath.Join(h.outDir, fmt.Sprintf("speed_%05d.png", sn.Step))
	width := vg.Points(float64(sn.Nx) * 2)
	height := vg.Points(float64(sn.Ny) * 2)
	if err := p.Save(width, height, name); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	return nil
}

// speedGrid adapts a snapshot to the plotter grid interface. Rows are
// flipped so row zero of the field is drawn at the top, matching the svg
// view's orientation.
type speedGrid struct {
	sn *flowfield.Snapshot
}

func (g speedGrid) Dims() (c, r int) { return g.sn.Nx, g.sn.Ny }

func (g speedGrid) X(c int) float64 { return float64(c) }

func (g speedGrid) Y(r int) float64 { return float64(r) }

func (g speedGrid) Z(c, r int) float64 {
	return g.sn.SpeedAt(c, g.sn.Ny-1-r)
}
