package kwrpc

import "context"

// Ping checks connectivity to the gateway.
func (c *Client) Ping(ctx context.Context) error {
	return c.call(ctx, "user.ping", nil, nil)
}

// Health returns the gateway's health status.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var out HealthStatus
	if err := c.call(ctx, "user.health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChainInfo returns the chain id and current block height.
func (c *Client) ChainInfo(ctx context.Context) (*ChainInfo, error) {
	var out ChainInfo
	if err := c.call(ctx, "user.chain_info", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetAccount returns the account identified by identifierHex, including
// its current nonce. The executor computes the next transaction's nonce
// as Account.Nonce + 1.
func (c *Client) GetAccount(ctx context.Context, identifierHex string) (*Account, error) {
	var out Account
	params := map[string]string{"identifier": identifierHex}
	if err := c.call(ctx, "user.account", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Broadcast submits a signed transaction envelope. envelope must be
// JSON-serializable as the codec.Transaction shape (signature, body,
// sender, serialization). When sync is WaitForCommit and the server
// returns a non-zero result code, Broadcast returns a *TransactionFailed.
func (c *Client) Broadcast(ctx context.Context, envelope any, sync BroadcastSync) (*BroadcastResult, error) {
	params := map[string]any{
		"tx":   envelope,
		"sync": int(sync),
	}
	var out BroadcastResult
	if err := c.call(ctx, "user.broadcast", params, &out); err != nil {
		return nil, err
	}
	if sync == WaitForCommit && out.Result != nil && out.Result.Code != 0 {
		return &out, &TransactionFailed{Log: out.Result.Log, TxHash: out.TxHash}
	}
	return &out, nil
}

// Call invokes a view action. msg carries the encoded call payload and,
// for authenticated views, the caller's identifier and signature.
func (c *Client) Call(ctx context.Context, msg RpcMessage) (*QueryResult, error) {
	var out QueryResult
	if err := c.call(ctx, "user.call", msg, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListDatabases returns the databases visible to the caller.
func (c *Client) ListDatabases(ctx context.Context) ([]DatabaseInfo, error) {
	var out []DatabaseInfo
	if err := c.call(ctx, "user.databases", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// EstimatePrice estimates the fee for a not-yet-broadcast transaction
// body. tx should be JSON-serializable as codec.TxBody.
func (c *Client) EstimatePrice(ctx context.Context, tx any) (string, error) {
	var out struct {
		Price string `json:"price"`
	}
	if err := c.call(ctx, "user.estimate_price", map[string]any{"tx": tx}, &out); err != nil {
		return "", err
	}
	return out.Price, nil
}

// Query runs an ad-hoc SQL query against a namespace.
func (c *Client) Query(ctx context.Context, namespace, sql string) (*QueryResult, error) {
	params := map[string]string{"namespace": namespace, "query": sql}
	var out QueryResult
	if err := c.call(ctx, "user.query", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TxQuery looks up a previously broadcast transaction by hash, for the
// caller to reconcile an operation whose outcome is uncertain after a
// cancellation.
func (c *Client) TxQuery(ctx context.Context, txHash string) (*TxQueryResult, error) {
	var out TxQueryResult
	if err := c.call(ctx, "user.tx_query", map[string]string{"tx_hash": txHash}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Schema returns the action/table schema of a namespace.
func (c *Client) Schema(ctx context.Context, namespace string) (*QueryResult, error) {
	var out QueryResult
	if err := c.call(ctx, "user.schema", map[string]string{"namespace": namespace}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Challenge fetches a fresh hex-encoded gateway challenge nonce, step 1
// of the challenge-response flow.
func (c *Client) Challenge(ctx context.Context) (string, error) {
	var out struct {
		Challenge string `json:"challenge"`
	}
	if err := c.call(ctx, "user.challenge", nil, &out); err != nil {
		return "", err
	}
	if out.Challenge == "" {
		return "", &InvalidResponse{Method: "user.challenge", Reason: "empty challenge"}
	}
	return out.Challenge, nil
}

// GatewayAuthParam fetches gateway-specific authentication parameters
// ahead of a gateway_authn submission. The result shape is opaque to this
// SDK beyond its presence in the method surface; the caller may inspect
// the raw fields it cares about.
func (c *Client) GatewayAuthParam(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := c.call(ctx, "kgw.authn_param", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GatewayAuthn submits the signed challenge to complete gateway
// authentication. On success the gateway sets a session cookie in the
// Client's cookie jar, which subsequent calls automatically carry.
func (c *Client) GatewayAuthn(ctx context.Context, req GatewayAuthnRequest) error {
	if err := c.call(ctx, "kgw.authn", req, nil); err != nil {
		return &AuthenticationFailed{Reason: err.Error()}
	}
	return nil
}

// GatewayLogout ends the current gateway session.
func (c *Client) GatewayLogout(ctx context.Context) error {
	return c.call(ctx, "kgw.logout", nil, nil)
}
