package recovery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/idos-network/idos-sdk-go/types"
)

// Node is one recovery node discovered from the on-chain contract state.
type Node struct {
	Address [21]byte
	URL     string
}

// DiscoverNodes fetches the contract state from the chain RPC and
// deserializes it as a little-endian framed node list:
// count(4) || { address(21) || len(4) || utf8(len) } x count.
//
// Discovery is performed fresh on every call; nodes are never cached
// across operations, since membership can change between calls.
func DiscoverNodes(ctx context.Context, httpClient *http.Client, cfg Config) ([]Node, error) {
	raw, err := fetchContractState(ctx, httpClient, cfg)
	if err != nil {
		return nil, fmt.Errorf("recovery: fetching contract state: %w", err)
	}
	return decodeNodeList(raw)
}

func decodeNodeList(raw []byte) ([]Node, error) {
	if len(raw) < 4 {
		return nil, fmt.Errorf("recovery: contract state shorter than count prefix")
	}
	count := types.ReadLE32(raw[:4])
	offset := 4

	nodes := make([]Node, 0, count)
	for i := uint32(0); i < count; i++ {
		if offset+21+4 > len(raw) {
			return nil, fmt.Errorf("recovery: contract state truncated reading node %d header", i)
		}
		var addr [21]byte
		copy(addr[:], raw[offset:offset+21])
		offset += 21

		urlLen := int(types.ReadLE32(raw[offset : offset+4]))
		offset += 4

		if offset+urlLen > len(raw) {
			return nil, fmt.Errorf("recovery: contract state truncated reading node %d url", i)
		}
		url := string(raw[offset : offset+urlLen])
		offset += urlLen

		nodes = append(nodes, Node{Address: addr, URL: url})
	}
	return nodes, nil
}

// fetchContractState retrieves the raw contract state bytes via the chain
// RPC's eth_call-equivalent. The exact RPC surface of the underlying chain
// is outside this SDK's scope; this implementation assumes a JSON-RPC
// endpoint exposing a single "recovery_contractState" method returning
// the framed bytes hex-encoded, mirroring the SDK's own kwrpc envelope
// shape for consistency.
func fetchContractState(ctx context.Context, httpClient *http.Client, cfg Config) ([]byte, error) {
	reqBody, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "recovery_contractState",
		"params":  map[string]any{"contract_address": cfg.ContractAddress},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.RPCURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var envelope struct {
		Result string `json:"result"`
		Error  *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("recovery: decoding contract state response: %w", err)
	}
	if envelope.Error != nil {
		return nil, fmt.Errorf("recovery: chain rpc error: %s", envelope.Error.Message)
	}
	return types.DecodeHex(envelope.Result)
}
