package watch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T, notices <-chan CommitNotice) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for n := range notices {
			data, _ := json.Marshal(n)
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}
		// Keep the connection open until the client disconnects.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	return srv
}

func TestWaitForTxHashResolvesOnMatchingCommit(t *testing.T) {
	notices := make(chan CommitNotice, 1)
	srv := newTestServer(t, notices)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	w := New(wsURL)
	if err := w.Connect(t.Context()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer w.Close()

	notices <- CommitNotice{Height: 42, TxHashs: []string{"0xabc"}}
	close(notices)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got, err := w.WaitForTxHash(ctx, "0xabc")
	if err != nil {
		t.Fatalf("WaitForTxHash: %v", err)
	}
	if got.Height != 42 {
		t.Errorf("Height = %d, want 42", got.Height)
	}
}

func TestWaitForTxHashRespectsContextCancellation(t *testing.T) {
	notices := make(chan CommitNotice)
	srv := newTestServer(t, notices)
	defer srv.Close()
	defer close(notices)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	w := New(wsURL)
	if err := w.Connect(t.Context()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	cancel()

	if _, err := w.WaitForTxHash(ctx, "0xnever"); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestCloseReleasesPendingWaiters(t *testing.T) {
	notices := make(chan CommitNotice)
	srv := newTestServer(t, notices)
	defer srv.Close()
	defer close(notices)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	w := New(wsURL)
	if err := w.Connect(t.Context()); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := w.WaitForTxHash(t.Context(), "0xnever")
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	w.Close()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected error after Close")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("WaitForTxHash did not return after Close")
	}
}
