package recovery

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/idos-network/idos-sdk-go/types"
)

func encodeNodeList(t *testing.T, nodes []Node) []byte {
	t.Helper()
	out := types.LE32(uint32(len(nodes)))
	for _, n := range nodes {
		out = append(out, n.Address[:]...)
		out = append(out, types.LE32(uint32(len(n.URL)))...)
		out = append(out, []byte(n.URL)...)
	}
	return out
}

func TestDiscoverNodesDecodesFramedList(t *testing.T) {
	want := []Node{
		{Address: [21]byte{1, 2, 3}, URL: "https://node-a.example"},
		{Address: [21]byte{4, 5, 6}, URL: "https://node-b.example"},
	}
	raw := encodeNodeList(t, want)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      1,
			"result":  types.EncodeHex(raw),
		})
	}))
	defer srv.Close()

	cfg := Config{RPCURL: srv.URL, ContractAddress: "0x" + "11"}
	got, err := DiscoverNodes(t.Context(), srv.Client(), cfg)
	if err != nil {
		t.Fatalf("DiscoverNodes: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d nodes, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Address != want[i].Address || got[i].URL != want[i].URL {
			t.Fatalf("node %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestDiscoverNodesRejectsTruncatedList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      1,
			"result":  types.EncodeHex(types.LE32(3)), // claims 3 nodes, supplies none
		})
	}))
	defer srv.Close()

	cfg := Config{RPCURL: srv.URL, ContractAddress: "0x11"}
	if _, err := DiscoverNodes(t.Context(), srv.Client(), cfg); err == nil {
		t.Fatal("expected error decoding truncated node list")
	}
}
