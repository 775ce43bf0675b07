package server

import (
	"context"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"sync"

	"lbflow/flowfield"

	"github.com/gorilla/mux"
	channerics "github.com/niceyeti/channerics/channels"
)

// Server serves the heatmap page and its websocket to a single client at a
// time, sufficient for watching a solo run. Snapshots arrive on a channel
// from the solver; the server converts each to cells and then to the
// ele-update ops pushed to the page.
type Server struct {
	addr   string
	stride int

	mu sync.RWMutex
	// The most recent cells, used to render the initial page.
	lastCells [][]Cell

	updates <-chan []EleUpdate
}

// NewServer wires the snapshot channel through the cell conversion. initial
// may be nil when the solver has not yet emitted; the page then renders a
// placeholder until the first update arrives.
func NewServer(
	ctx context.Context,
	addr string,
	stride int,
	initial *flowfield.Snapshot,
	snapshots <-chan *flowfield.Snapshot,
) *Server {
	server := &Server{
		addr:   addr,
		stride: stride,
	}
	if initial != nil {
		server.lastCells = Convert(initial, stride)
	}
	server.updates = channerics.Convert(ctx.Done(), snapshots, server.onSnapshot)
	return server
}

func (server *Server) onSnapshot(sn *flowfield.Snapshot) []EleUpdate {
	cells := Convert(sn, server.stride)
	server.mu.Lock()
	server.lastCells = cells
	server.mu.Unlock()
	return updateOps(cells)
}

// Serve blocks, serving the index page and the websocket endpoint.
func (server *Server) Serve() error {
	router := mux.NewRouter()
	router.HandleFunc("/", server.serveIndex).Methods(http.MethodGet)
	router.HandleFunc("/ws", server.serveWebsocket)

	if err := http.ListenAndServe(server.addr, router); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

func (server *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	cli, err := newClient(server.updates, w, r)
	if err != nil {
		log.Println("upgrade:", err)
		return
	}
	if err := cli.sync(); err != nil {
		log.Println("websocket:", err)
	}
}

func (server *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html")

	server.mu.RLock()
	cells := server.lastCells
	server.mu.RUnlock()

	t := template.New("index").Funcs(template.FuncMap{
		"add":  func(i, j int) int { return i + j },
		"mult": func(i, j int) int { return i * j },
	})
	if _, err := t.Parse(indexTemplate); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := t.Execute(w, cells); err != nil {
		log.Println("render:", err)
	}
}

// The page bootstraps a websocket and applies each pushed op to the element
// it names; rect ids are fixed, so pushing new fills repaints the heatmap
// without re-rendering the document.
const indexTemplate = `<html>
	<head>
		<script>
			const ws = new WebSocket("ws://" + location.host + "/ws");
			ws.onmessage = function (event) {
				const items = JSON.parse(event.data);
				const svg = document.getElementById("speed-heatmap");
				if (!svg) {
					location.reload();
					return;
				}
				for (const update of items) {
					const ele = svg.getElementById(update.EleId);
					if (!ele) continue;
					for (const op of update.Ops) {
						if (op.Key === "textContent") {
							ele.textContent = op.Value;
						} else {
							ele.setAttribute(op.Key, op.Value);
						}
					}
				}
			}
		</script>
	</head>
	<body>
	{{ if . }}
		{{ $cell_dim := 6 }}
		{{ $y_cells := len . }}
		{{ $x_cells := len (index . 0) }}
		{{ $width := mult $cell_dim $x_cells }}
		{{ $height := mult $cell_dim $y_cells }}
		<div>Velocity magnitude, {{ $x_cells }}x{{ $y_cells }} cells</div>
		<svg id="speed-heatmap"
			width="{{ add $width 1 }}px"
			height="{{ add $height 1 }}px"
			style="shape-rendering: crispEdges;">
			{{ range $row := . }}
				{{ range $cell := $row }}
				<rect id="{{ $cell.X }}-{{ $cell.Y }}-cell"
					x="{{ mult $cell.X $cell_dim }}"
					y="{{ mult $cell.Y $cell_dim }}"
					width="{{ $cell_dim }}"
					height="{{ $cell_dim }}"
					fill="{{ $cell.Fill }}"/>
				{{ end }}
			{{ end }}
		</svg>
	{{ else }}
		<div>Waiting for the first snapshot...</div>
	{{ end }}
	</body>
</html>
`
