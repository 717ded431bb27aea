// Package watch provides an optional websocket feed of block-commit
// notifications, so a caller waiting on a broadcast transaction's outcome
// can be woken as soon as its block commits instead of polling tx_query.
package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	reconnectDelay    = 2 * time.Second
	maxReconnectDelay = 60 * time.Second
)

// CommitNotice is one block-commit event: the block height and the
// transaction hashes it included.
type CommitNotice struct {
	Height  uint64   `json:"height"`
	TxHashs []string `json:"tx_hashes"`
}

// Watcher maintains a reconnecting websocket subscription to a node's
// block-commit feed and lets callers wait for a specific transaction hash
// to appear in a committed block.
type Watcher struct {
	url string

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
	done   chan struct{}

	waitersMu sync.Mutex
	waiters   map[string][]chan CommitNotice
}

// New creates a Watcher for the given websocket URL. Call Connect to start
// the feed.
func New(url string) *Watcher {
	return &Watcher{
		url:     url,
		done:    make(chan struct{}),
		waiters: make(map[string][]chan CommitNotice),
	}
}

// Connect dials the block-commit feed and starts the read and ping loops.
func (w *Watcher) Connect(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return fmt.Errorf("watch: connect on closed watcher")
	}

	dialer := websocket.Dialer{HandshakeTimeout: 15 * time.Second}
	conn, _, err := dialer.DialContext(ctx, w.url, nil)
	if err != nil {
		return fmt.Errorf("watch: connect: %w", err)
	}

	w.conn = conn
	w.conn.SetReadDeadline(time.Now().Add(pongWait))
	w.conn.SetPongHandler(func(string) error {
		w.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go w.readLoop()
	go w.pingLoop()

	return nil
}

// Close shuts the feed down and releases every pending waiter without a
// result.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	close(w.done)

	w.waitersMu.Lock()
	for hash, chans := range w.waiters {
		for _, ch := range chans {
			close(ch)
		}
		delete(w.waiters, hash)
	}
	w.waitersMu.Unlock()

	if w.conn != nil {
		_ = w.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		return w.conn.Close()
	}
	return nil
}

// WaitForTxHash blocks until txHash appears in a committed block, the
// context is cancelled, or the watcher is closed. A cancelled context
// resolves to ctx.Err(); a closed watcher resolves to a watcher-closed
// error.
func (w *Watcher) WaitForTxHash(ctx context.Context, txHash string) (CommitNotice, error) {
	ch := make(chan CommitNotice, 1)

	w.waitersMu.Lock()
	w.waiters[txHash] = append(w.waiters[txHash], ch)
	w.waitersMu.Unlock()

	defer w.removeWaiter(txHash, ch)

	select {
	case notice, ok := <-ch:
		if !ok {
			return CommitNotice{}, fmt.Errorf("watch: watcher closed while waiting for %s", txHash)
		}
		return notice, nil
	case <-ctx.Done():
		return CommitNotice{}, ctx.Err()
	}
}

func (w *Watcher) removeWaiter(txHash string, target chan CommitNotice) {
	w.waitersMu.Lock()
	defer w.waitersMu.Unlock()

	chans := w.waiters[txHash]
	for i, ch := range chans {
		if ch == target {
			w.waiters[txHash] = append(chans[:i], chans[i+1:]...)
			break
		}
	}
	if len(w.waiters[txHash]) == 0 {
		delete(w.waiters, txHash)
	}
}

func (w *Watcher) readLoop() {
	defer func() {
		w.mu.Lock()
		conn := w.conn
		w.mu.Unlock()
		if conn != nil {
			conn.Close()
		}
	}()

	for {
		select {
		case <-w.done:
			return
		default:
		}

		w.mu.Lock()
		conn := w.conn
		w.mu.Unlock()
		if conn == nil {
			return
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-w.done:
				return
			default:
			}
			w.reconnect()
			return
		}

		w.handleMessage(message)
	}
}

func (w *Watcher) pingLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			w.mu.Lock()
			conn := w.conn
			w.mu.Unlock()
			if conn == nil {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (w *Watcher) handleMessage(raw []byte) {
	var notice CommitNotice
	if err := json.Unmarshal(raw, &notice); err != nil {
		return
	}

	w.waitersMu.Lock()
	defer w.waitersMu.Unlock()
	for _, hash := range notice.TxHashs {
		for _, ch := range w.waiters[hash] {
			select {
			case ch <- notice:
			default:
			}
		}
		delete(w.waiters, hash)
	}
}

func (w *Watcher) reconnect() {
	delay := reconnectDelay
	for {
		select {
		case <-w.done:
			return
		default:
		}

		time.Sleep(delay)

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		err := w.Connect(ctx)
		cancel()
		if err == nil {
			return
		}

		delay *= 2
		if delay > maxReconnectDelay {
			delay = maxReconnectDelay
		}
	}
}
