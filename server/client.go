package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	channerics "github.com/niceyeti/channerics/channels"
	"golang.org/x/sync/errgroup"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 1 * time.Second

	// The rate at which ele-updates will be sent to the client, so as not
	// to overburden the page; updates arriving faster are dropped.
	pubResolution  = time.Millisecond * 100
	pingResolution = time.Millisecond * 200
	// Number of pings to tolerate losing before concluding the peer is gone.
	pongWait = pingResolution * 4
)

var upgrader = websocket.Upgrader{}

// ErrPongDeadlineExceeded signals client disconnect via missed pongs.
var ErrPongDeadlineExceeded = errors.New("client disconnect, pong deadline exceeded")

// client publishes ele-updates unidirectionally to one web client over a
// websocket. The updates must be idempotent: dropping intermediate ones and
// sending only the latest fully specifies the new view state, which is what
// permits the publish-rate limiting.
type client struct {
	updates <-chan []EleUpdate
	ws      *websocket.Conn
	rootCtx context.Context
	// The websocket permits one concurrent writer; pings and publications
	// both write, hence the lock.
	writeMu sync.Mutex
}

func newClient(
	updates <-chan []EleUpdate,
	w http.ResponseWriter,
	r *http.Request,
) (*client, error) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, err
	}
	return &client{
		updates: updates,
		ws:      ws,
		rootCtx: r.Context(),
	}, nil
}

// sync runs the read, ping-pong, and publish routines until the client
// disconnects, the updates channel closes, or one of the routines fails.
func (cli *client) sync() error {
	group, groupCtx := errgroup.WithContext(cli.rootCtx)

	group.Go(func() error {
		return cli.readMessages(groupCtx)
	})
	group.Go(func() error {
		return cli.pingPong(groupCtx)
	})
	group.Go(func() error {
		return cli.publish(groupCtx)
	})

	err := group.Wait()
	cli.close()
	return err
}

// readMessages drains client frames so the pong handler runs; errors from
// websocket reads are permanent and trigger full teardown.
func (cli *client) readMessages(ctx context.Context) error {
	for {
		if _, _, err := cli.ws.ReadMessage(); err != nil {
			if isClosure(err) || ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

// pingPong runs the client liveness check. Requires readMessages to be
// running, else the pong handler is never called.
func (cli *client) pingPong(ctx context.Context) error {
	pong := make(chan struct{}, 1)
	cli.ws.SetPongHandler(func(_ string) error {
		select {
		case pong <- struct{}{}:
		default:
		}
		return nil
	})

	pinger := channerics.NewTicker(ctx.Done(), pingResolution)
	lastPong := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-pinger:
			if time.Since(lastPong) > pongWait {
				return ErrPongDeadlineExceeded
			}
			cli.writeMu.Lock()
			err := cli.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			cli.writeMu.Unlock()
			if err != nil {
				return err
			}
		case <-pong:
			lastPong = time.Now()
		}
	}
}

// publish forwards incoming ele-updates to the peer at no more than the
// publication rate; faster updates are dropped.
func (cli *client) publish(ctx context.Context) error {
	lastSync := time.Time{}
	for {
		select {
		case <-ctx.Done():
			return nil
		case updates, ok := <-cli.updates:
			// Graceful input channel closure.
			if !ok {
				return nil
			}
			if time.Since(lastSync) < pubResolution {
				break
			}
			lastSync = time.Now()

			cli.writeMu.Lock()
			err := cli.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err == nil {
				err = cli.ws.WriteJSON(updates)
			}
			cli.writeMu.Unlock()
			if err != nil {
				if isClosure(err) {
					return nil
				}
				return err
			}
		}
	}
}

func (cli *client) close() {
	cli.writeMu.Lock()
	_ = cli.ws.SetWriteDeadline(time.Now().Add(writeWait))
	_ = cli.ws.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	cli.writeMu.Unlock()
	cli.ws.Close()
}

func isClosure(err error) bool {
	return err != nil && websocket.IsCloseError(
		err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway)
}
