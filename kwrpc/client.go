// Package kwrpc implements the JSON-RPC 2.0 protocol client: the RPC
// method surface, the HTTP transport with its cookie-jar session, and the
// gateway challenge-response building blocks the action executor drives
// to recover from a −901 authentication-required error.
package kwrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"sync/atomic"
	"time"
)

// Client is the RPC client for a single base URL. A Client's cookie jar
// is its session: once gateway_authn sets a session cookie, subsequent
// calls on the same Client carry it automatically.
type Client struct {
	baseURL    string
	httpClient *http.Client
	nextID     atomic.Int64
	log        *slog.Logger
}

// NewClient builds a Client against baseURL (e.g.
// "https://rpc.idos.network"). All RPC methods POST to
// "<baseURL>/rpc/v1".
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("kwrpc: creating cookie jar: %w", err)
	}
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar,
		},
		log: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Option configures a Client at construction time.
type Option func(*Client)

// WithHTTPTimeout overrides the default 30s request timeout.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithLogger overrides the default slog.Default() logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// jsonrpcRequest is the JSON-RPC 2.0 request envelope.
type jsonrpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// jsonrpcResponse is the JSON-RPC 2.0 response envelope.
type jsonrpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcErrorBody   `json:"error,omitempty"`
}

type rpcErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// call sends one JSON-RPC 2.0 request and decodes its result into out
// (which should be a pointer, or nil if the method has no result of
// interest). It does not implement the challenge-response retry -- that
// is the executor's responsibility; call surfaces a -901 as an
// *RpcError like any other RPC error.
func (c *Client) call(ctx context.Context, method string, params, out any) error {
	id := c.nextID.Add(1)
	reqBody, err := json.Marshal(jsonrpcRequest{
		JSONRPC: "2.0",
		ID:      id,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return &SerializationError{Cause: fmt.Errorf("marshal request: %w", err)}
	}

	url := c.baseURL + "/rpc/v1"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return &NetworkError{Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Cause: err}
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Cause: fmt.Errorf("reading response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HttpError{Status: resp.StatusCode, Body: respBytes}
	}

	var envelope jsonrpcResponse
	if err := json.Unmarshal(respBytes, &envelope); err != nil {
		return &SerializationError{Cause: fmt.Errorf("unmarshal response envelope: %w", err)}
	}

	if envelope.Error != nil {
		return &RpcError{Code: envelope.Error.Code, Message: envelope.Error.Message}
	}

	if out == nil {
		return nil
	}
	if len(envelope.Result) == 0 {
		return &InvalidResponse{Method: method, Reason: "missing result"}
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return &InvalidResponse{Method: method, Reason: fmt.Sprintf("decoding result: %v", err)}
	}
	return nil
}
