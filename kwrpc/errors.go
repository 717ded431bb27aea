package kwrpc

import "fmt"

// GatewayAuthRequiredCode is the JSON-RPC error code the gateway returns
// when a call requires an authenticated session. Callers that want to
// drive the challenge-response flow themselves should check for it with
// IsAuthRequired rather than comparing RpcError.Code directly.
const GatewayAuthRequiredCode = -901

// NetworkError wraps a transport-level failure: DNS, connection refused,
// timeout, context cancellation, or any other error from the underlying
// http.Client that never produced an HTTP response.
type NetworkError struct {
	Cause error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("kwrpc: network error: %v", e.Cause) }
func (e *NetworkError) Unwrap() error { return e.Cause }

// HttpError is any non-2xx HTTP response (e.g. a reverse proxy 502, or a
// gateway redirect). Body holds the raw response; it is not parsed for a
// JSON-RPC error envelope.
type HttpError struct {
	Status int
	Body   []byte
}

func (e *HttpError) Error() string {
	return fmt.Sprintf("kwrpc: http %d: %s", e.Status, string(e.Body))
}

// SerializationError is a failure to marshal a request or unmarshal a
// response body.
type SerializationError struct {
	Cause error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("kwrpc: serialization error: %v", e.Cause)
}
func (e *SerializationError) Unwrap() error { return e.Cause }

// RpcError is a JSON-RPC 2.0 error object returned in place of a result.
type RpcError struct {
	Code    int
	Message string
}

func (e *RpcError) Error() string { return fmt.Sprintf("kwrpc: rpc error %d: %s", e.Code, e.Message) }

// IsAuthRequired reports whether err is an RpcError carrying the
// gateway-auth-required code. Callers orchestrating the challenge-response
// retry (the action executor) use this to decide whether to re-run the
// auth flow instead of surfacing the error.
func IsAuthRequired(err error) bool {
	var rpcErr *RpcError
	return asRpcError(err, &rpcErr) && rpcErr.Code == GatewayAuthRequiredCode
}

func asRpcError(err error, target **RpcError) bool {
	for err != nil {
		if re, ok := err.(*RpcError); ok {
			*target = re
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// InvalidResponse is a structurally well-formed JSON-RPC response that
// nonetheless doesn't carry the shape a given method expects (e.g. a
// result missing a required field).
type InvalidResponse struct {
	Method string
	Reason string
}

func (e *InvalidResponse) Error() string {
	return fmt.Sprintf("kwrpc: invalid response from %s: %s", e.Method, e.Reason)
}

// TransactionFailed is raised by Broadcast when a wait-for-commit
// broadcast returns a non-zero result code: the transaction reached the
// chain but was rejected.
type TransactionFailed struct {
	Log    string
	TxHash string
}

func (e *TransactionFailed) Error() string {
	return fmt.Sprintf("kwrpc: transaction %s failed: %s", e.TxHash, e.Log)
}

// AuthenticationFailed is raised when the gateway challenge-response flow
// itself fails to establish a session (as opposed to the -901 that
// triggers the flow in the first place).
type AuthenticationFailed struct {
	Reason string
}

func (e *AuthenticationFailed) Error() string {
	return fmt.Sprintf("kwrpc: gateway authentication failed: %s", e.Reason)
}
