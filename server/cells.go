// Package server serves a single page whose svg heatmap of the velocity
// magnitude field is updated in realtime over a websocket. The server is a
// pure consumer of solver snapshots: it never feeds anything back.
package server

import (
	"fmt"

	"lbflow/flowfield"
)

// EleUpdate is an element identifier and a set of operations to apply to its
// attributes/content. This is the wire format pushed to the page: the client
// js looks up each element by id and applies the ops.
type EleUpdate struct {
	// The id by which to find the element.
	EleId string
	// Op keys are attrib keys or 'textContent', values are the strings to
	// which these are set.
	Ops []Op
}

// Op is a key and value, e.g. an svg attribute and its new value.
type Op struct {
	Key   string
	Value string
}

// Cell is the view-model of one displayed grid cell: a flat projection of
// the snapshot that maps directly onto svg rect attributes. Cell fields
// should be immediately usable as view parameters.
type Cell struct {
	X, Y  int
	Speed float64
	Solid bool
	Fill  string
}

// Convert decimates a snapshot into a [][]Cell view-model, taking every
// stride-th cell in each direction. The snapshot itself stays full
// resolution; only the view is thinned, since a 400x100 grid would
// otherwise put 40k elements in the DOM. Y indices are flipped into the
// svg coordinate system, where row 0 is at the top.
func Convert(sn *flowfield.Snapshot, stride int) (cells [][]Cell) {
	if stride < 1 {
		stride = 1
	}
	max := sn.MaxSpeed()
	nRows := (sn.Ny + stride - 1) / stride
	for y := 0; y < sn.Ny; y += stride {
		var row []Cell
		for x := 0; x < sn.Nx; x += stride {
			solid := sn.Solid[y*sn.Nx+x]
			speed := sn.SpeedAt(x, y)
			row = append(row, Cell{
				X:     x / stride,
				Y:     nRows - 1 - y/stride,
				Speed: speed,
				Solid: solid,
				Fill:  fill(speed, max, solid),
			})
		}
		cells = append(cells, row)
	}
	return
}

// fill maps a speed to an svg color: black for the obstacle, otherwise a
// blue ramp scaled by the snapshot's maximum speed.
func fill(speed, max float64, solid bool) string {
	if solid {
		return "rgb(0,0,0)"
	}
	intensity := 0.0
	if max > 0 {
		intensity = speed / max
	}
	g := int(intensity * 170)
	b := 64 + int(intensity*191)
	return fmt.Sprintf("rgb(0,%d,%d)", g, b)
}

// updateOps returns the view updates needed for the page to reflect the
// passed cells.
func updateOps(cells [][]Cell) (updates []EleUpdate) {
	for _, row := range cells {
		for _, cell := range row {
			updates = append(updates, EleUpdate{
				EleId: fmt.Sprintf("%d-%d-cell", cell.X, cell.Y),
				Ops: []Op{
					{Key: "fill", Value: cell.Fill},
				},
			})
		}
	}
	return
}
