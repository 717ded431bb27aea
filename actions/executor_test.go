package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/idos-network/idos-sdk-go/codec"
	"github.com/idos-network/idos-sdk-go/kwrpc"
	"github.com/idos-network/idos-sdk-go/signer"
)

// getUserStub is a minimal ActionStub for "idos.get_user": input is an
// id string, output is a record with the same id echoed back plus a
// name column.
type getUserStub struct{}

func (getUserStub) Namespace() string              { return "idos" }
func (getUserStub) Name() string                   { return "get_user" }
func (getUserStub) ParamTypes() []codec.ParamType  { return []codec.ParamType{codec.Text(0)} }
func (getUserStub) ProjectInput(input any) ([]any, error) {
	id, ok := input.(string)
	if !ok {
		return nil, fmt.Errorf("input must be a string id")
	}
	return []any{id}, nil
}
func (getUserStub) DecodeRow(row map[string]any) (any, error) {
	return row, nil
}

// addWalletStub is a minimal ActionStub for "idos.add_wallet".
type addWalletStub struct{}

func (addWalletStub) Namespace() string             { return "idos" }
func (addWalletStub) Name() string                  { return "add_wallet" }
func (addWalletStub) ParamTypes() []codec.ParamType { return []codec.ParamType{codec.Text(0)} }
func (addWalletStub) ProjectInput(input any) ([]any, error) {
	addr, ok := input.(string)
	if !ok {
		return nil, fmt.Errorf("input must be an address string")
	}
	return []any{addr}, nil
}
func (addWalletStub) DecodeRow(row map[string]any) (any, error) { return row, nil }

type rpcReqBody struct {
	Method string          `json:"method"`
	ID     int64           `json:"id"`
	Params json.RawMessage `json:"params"`
}

func writeResult(w http.ResponseWriter, id int64, result any) {
	_ = json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": id, "result": result})
}

func writeRPCError(w http.ResponseWriter, id int64, code int, msg string) {
	_ = json.NewEncoder(w).Encode(map[string]any{
		"jsonrpc": "2.0", "id": id, "error": map[string]any{"code": code, "message": msg},
	})
}

func newTestSigner(t *testing.T) signer.Signer {
	t.Helper()
	s, err := signer.GenerateEd25519Signer()
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestViewDecodesRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcReqBody
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Method != "user.call" {
			t.Fatalf("unexpected method %q", req.Method)
		}
		writeResult(w, req.ID, kwrpc.QueryResult{
			Columns: []string{"id", "name"},
			Values:  [][]any{{"u1", "alice"}},
		})
	}))
	defer srv.Close()

	rpc, err := kwrpc.NewClient(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	exec := NewExecutor(rpc, "chain-1")

	records, err := exec.View(context.Background(), getUserStub{}, "u1", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	rec := records[0].(map[string]any)
	if rec["name"] != "alice" {
		t.Errorf("name = %v, want alice", rec["name"])
	}
}

func TestCallSingleNotFoundOnWrongRowCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcReqBody
		_ = json.NewDecoder(r.Body).Decode(&req)
		writeResult(w, req.ID, kwrpc.QueryResult{Columns: []string{"id"}, Values: nil})
	}))
	defer srv.Close()

	rpc, _ := kwrpc.NewClient(srv.URL)
	exec := NewExecutor(rpc, "chain-1")

	_, err := exec.CallSingle(context.Background(), getUserStub{}, "missing", nil)
	if _, ok := err.(*NotFound); !ok {
		t.Fatalf("expected *NotFound, got %T: %v", err, err)
	}
}

// TestExecuteNonceRaceSurfacesActionFailed models a
// broadcast whose result code is non-zero (rejected for "bad nonce")
// must surface as ActionFailed with the tx hash populated.
func TestExecuteNonceRaceSurfacesActionFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcReqBody
		_ = json.NewDecoder(r.Body).Decode(&req)
		switch req.Method {
		case "user.account":
			writeResult(w, req.ID, kwrpc.Account{Identifier: "id", Nonce: 5})
		case "user.broadcast":
			writeResult(w, req.ID, kwrpc.BroadcastResult{
				TxHash: "0xbad",
				Result: &kwrpc.TxResult{Code: 1, Log: "bad nonce"},
			})
		default:
			t.Fatalf("unexpected method %q", req.Method)
		}
	}))
	defer srv.Close()

	rpc, _ := kwrpc.NewClient(srv.URL)
	exec := NewExecutor(rpc, "chain-1")
	s := newTestSigner(t)

	_, err := exec.Execute(context.Background(), addWalletStub{}, "0xwallet", s, kwrpc.WaitForCommit)
	af, ok := err.(*ActionFailed)
	if !ok {
		t.Fatalf("expected *ActionFailed, got %T: %v", err, err)
	}
	if af.TxHash != "0xbad" {
		t.Errorf("tx_hash = %q, want 0xbad", af.TxHash)
	}
}

// TestExecuteNonceIsAccountNoncePlusOne verifies the nonce invariant:
// body.nonce == get_account(identifier).nonce + 1.
func TestExecuteNonceIsAccountNoncePlusOne(t *testing.T) {
	var capturedNonce float64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcReqBody
		_ = json.NewDecoder(r.Body).Decode(&req)
		switch req.Method {
		case "user.account":
			writeResult(w, req.ID, kwrpc.Account{Identifier: "id", Nonce: 5})
		case "user.broadcast":
			var params map[string]any
			_ = json.Unmarshal(req.Params, &params)
			tx := params["tx"].(map[string]any)
			body := tx["body"].(map[string]any)
			capturedNonce = body["nonce"].(float64)
			writeResult(w, req.ID, kwrpc.BroadcastResult{TxHash: "0xok"})
		default:
			t.Fatalf("unexpected method %q", req.Method)
		}
	}))
	defer srv.Close()

	rpc, _ := kwrpc.NewClient(srv.URL)
	exec := NewExecutor(rpc, "chain-1")
	s := newTestSigner(t)

	txHash, err := exec.Execute(context.Background(), addWalletStub{}, "0xwallet", s, kwrpc.FireAndForget)
	if err != nil {
		t.Fatal(err)
	}
	if txHash != "0xok" {
		t.Errorf("tx_hash = %q, want 0xok", txHash)
	}
	if capturedNonce != 6 {
		t.Errorf("nonce = %v, want 6 (account.nonce=5 + 1)", capturedNonce)
	}
}

// TestAutoReauthRetriesOnce models a first call that fails
// with -901, the executor runs the challenge flow, and the retried call
// succeeds.
func TestAutoReauthRetriesOnce(t *testing.T) {
	callAttempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcReqBody
		_ = json.NewDecoder(r.Body).Decode(&req)
		switch req.Method {
		case "user.call":
			callAttempts++
			if callAttempts == 1 {
				writeRPCError(w, req.ID, kwrpc.GatewayAuthRequiredCode, "authentication required")
				return
			}
			writeResult(w, req.ID, kwrpc.QueryResult{
				Columns: []string{"id"},
				Values:  [][]any{{"u1"}},
			})
		case "user.challenge":
			writeResult(w, req.ID, map[string]string{"challenge": "aa"})
		case "kgw.authn":
			http.SetCookie(w, &http.Cookie{Name: "kgw_session", Value: "ok"})
			writeResult(w, req.ID, map[string]any{"ok": true})
		default:
			t.Fatalf("unexpected method %q", req.Method)
		}
	}))
	defer srv.Close()

	rpc, _ := kwrpc.NewClient(srv.URL)
	exec := NewExecutor(rpc, "chain-1")
	s := newTestSigner(t)

	records, err := exec.View(context.Background(), getUserStub{}, "u1", s)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record after reauth retry, got %d", len(records))
	}
	if callAttempts != 2 {
		t.Fatalf("expected exactly 2 user.call attempts, got %d", callAttempts)
	}
}

// TestAutoReauthFailsClosedOnSecondAuthRequired models two
// consecutive -901s must surface AuthenticationRequired.
func TestAutoReauthFailsClosedOnSecondAuthRequired(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcReqBody
		_ = json.NewDecoder(r.Body).Decode(&req)
		switch req.Method {
		case "user.call":
			writeRPCError(w, req.ID, kwrpc.GatewayAuthRequiredCode, "authentication required")
		case "user.challenge":
			writeResult(w, req.ID, map[string]string{"challenge": "aa"})
		case "kgw.authn":
			writeResult(w, req.ID, map[string]any{"ok": true})
		default:
			t.Fatalf("unexpected method %q", req.Method)
		}
	}))
	defer srv.Close()

	rpc, _ := kwrpc.NewClient(srv.URL)
	exec := NewExecutor(rpc, "chain-1")
	s := newTestSigner(t)

	_, err := exec.View(context.Background(), getUserStub{}, "u1", s)
	if _, ok := err.(*AuthenticationRequired); !ok {
		t.Fatalf("expected *AuthenticationRequired, got %T: %v", err, err)
	}
}
