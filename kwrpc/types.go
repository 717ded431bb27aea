package kwrpc

import "github.com/idos-network/idos-sdk-go/signer"

// BroadcastSync selects whether Broadcast waits for the transaction to
// commit or returns as soon as it is accepted into the mempool.
type BroadcastSync int

const (
	FireAndForget BroadcastSync = 0
	WaitForCommit BroadcastSync = 1
)

// MessageBody carries either a view-call payload or a gateway challenge:
// {body:{payload:base64?, challenge:hex?}, auth_type, sender?, signature?}.
type MessageBody struct {
	Payload   string `json:"payload,omitempty"`
	Challenge string `json:"challenge,omitempty"`
}

// RpcMessage is the envelope a view call or gateway-auth submission is
// wrapped in. For public (unauthenticated) calls, Sender and Signature
// are omitted and AuthType is "invalid".
type RpcMessage struct {
	Body      MessageBody          `json:"body"`
	AuthType  signer.SignatureType `json:"auth_type"`
	Sender    string               `json:"sender,omitempty"`
	Signature string               `json:"signature,omitempty"`
}

// Account is the result of get_account.
type Account struct {
	Identifier string `json:"identifier"`
	Nonce      uint64 `json:"nonce"`
	Balance    string `json:"balance,omitempty"`
}

// TxResult is the result block of a wait-for-commit broadcast.
type TxResult struct {
	Code int    `json:"code"`
	Gas  uint64 `json:"gas"`
	Log  string `json:"log,omitempty"`
}

// BroadcastResult is the full broadcast response.
type BroadcastResult struct {
	TxHash string    `json:"tx_hash"`
	Result *TxResult `json:"result,omitempty"`
}

// QueryResult is a tabular result as returned by call, query, and schema
// introspection: column names paired positionally with each row's cells.
type QueryResult struct {
	Columns []string `json:"column_names"`
	Values  [][]any  `json:"values"`
}

// Rows pairs each row's cells with the column names, for callers that
// want record-shaped access instead of raw parallel slices.
func (q *QueryResult) Rows() []map[string]any {
	rows := make([]map[string]any, len(q.Values))
	for i, row := range q.Values {
		rec := make(map[string]any, len(q.Columns))
		for j, col := range q.Columns {
			if j < len(row) {
				rec[col] = row[j]
			}
		}
		rows[i] = rec
	}
	return rows
}

// ChainInfo is the result of chain_info.
type ChainInfo struct {
	ChainID     string `json:"chain_id"`
	BlockHeight uint64 `json:"block_height"`
}

// HealthStatus is the result of health.
type HealthStatus struct {
	Healthy bool   `json:"healthy"`
	Version string `json:"version,omitempty"`
}

// DatabaseInfo is one entry of list_databases.
type DatabaseInfo struct {
	Name  string `json:"name"`
	Owner string `json:"owner,omitempty"`
}

// TxQueryResult is the result of tx_query.
type TxQueryResult struct {
	Hash   string    `json:"hash"`
	Height uint64    `json:"height"`
	Result *TxResult `json:"result,omitempty"`
}

// GatewayAuthnRequest is submitted to kgw.authn to complete the
// challenge-response exchange.
type GatewayAuthnRequest struct {
	Nonce     string              `json:"nonce"`
	Sender    string              `json:"sender"`
	Signature GatewayAuthSignature `json:"signature"`
}

// GatewayAuthSignature is the signature block of a gateway-authn request.
type GatewayAuthSignature struct {
	Sig  string               `json:"sig"`
	Type signer.SignatureType `json:"type"`
}
