package kwrpc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

type jsonrpcReqBody struct {
	Method string          `json:"method"`
	ID     int64           `json:"id"`
	Params json.RawMessage `json:"params"`
}

func newTestServer(t *testing.T, handler func(w http.ResponseWriter, method string)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req jsonrpcReqBody
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		handler(w, req.Method)
	}))
}

func writeResult(w http.ResponseWriter, id int64, result any) {
	resp := map[string]any{"jsonrpc": "2.0", "id": id, "result": result}
	_ = json.NewEncoder(w).Encode(resp)
}

func writeRPCError(w http.ResponseWriter, id int64, code int, msg string) {
	resp := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"error":   map[string]any{"code": code, "message": msg},
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func TestGetAccountNonce(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, method string) {
		if method != "user.account" {
			t.Fatalf("unexpected method %q", method)
		}
		writeResult(w, 1, Account{Identifier: "0xabc", Nonce: 5})
	})
	defer srv.Close()

	c, err := NewClient(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	acct, err := c.GetAccount(context.Background(), "0xabc")
	if err != nil {
		t.Fatal(err)
	}
	if acct.Nonce != 5 {
		t.Errorf("nonce = %d, want 5", acct.Nonce)
	}
}

func TestBroadcastWaitForCommitFailure(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, method string) {
		writeResult(w, 1, BroadcastResult{
			TxHash: "0xdeadbeef",
			Result: &TxResult{Code: 1, Log: "bad nonce"},
		})
	})
	defer srv.Close()

	c, err := NewClient(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.Broadcast(context.Background(), map[string]string{}, WaitForCommit)
	if err == nil {
		t.Fatal("expected TransactionFailed, got nil")
	}
	txFailed, ok := err.(*TransactionFailed)
	if !ok {
		t.Fatalf("expected *TransactionFailed, got %T: %v", err, err)
	}
	if txFailed.TxHash != "0xdeadbeef" || txFailed.Log != "bad nonce" {
		t.Errorf("unexpected TransactionFailed: %+v", txFailed)
	}
}

func TestBroadcastFireAndForgetSucceeds(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, method string) {
		writeResult(w, 1, BroadcastResult{TxHash: "0xfeed"})
	})
	defer srv.Close()

	c, err := NewClient(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	res, err := c.Broadcast(context.Background(), map[string]string{}, FireAndForget)
	if err != nil {
		t.Fatal(err)
	}
	if res.TxHash != "0xfeed" {
		t.Errorf("tx_hash = %q, want 0xfeed", res.TxHash)
	}
}

func TestGatewayAuthRequiredIsDetectable(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, method string) {
		writeRPCError(w, 1, GatewayAuthRequiredCode, "authentication required")
	})
	defer srv.Close()

	c, err := NewClient(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.Call(context.Background(), RpcMessage{AuthType: "invalid"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsAuthRequired(err) {
		t.Fatalf("expected IsAuthRequired(err) == true, got err = %v", err)
	}
}

// TestChallengeGatewayAuthnFlow exercises a
// challenge fetch and gateway_authn submission against a mock server,
// simulating the re-authentication the action executor drives on a -901.
func TestChallengeGatewayAuthnFlow(t *testing.T) {
	var authnCalls int
	srv := newTestServer(t, func(w http.ResponseWriter, method string) {
		switch method {
		case "user.challenge":
			writeResult(w, 1, map[string]string{"challenge": "aa"})
		case "kgw.authn":
			authnCalls++
			// A successful gateway_authn sets a session cookie.
			http.SetCookie(w, &http.Cookie{Name: "kgw_session", Value: "s3ss10n"})
			writeResult(w, 1, map[string]any{"ok": true})
		default:
			t.Fatalf("unexpected method %q", method)
		}
	})
	defer srv.Close()

	c, err := NewClient(srv.URL)
	if err != nil {
		t.Fatal(err)
	}

	challenge, err := c.Challenge(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if challenge != "aa" {
		t.Errorf("challenge = %q, want \"aa\"", challenge)
	}

	err = c.GatewayAuthn(context.Background(), GatewayAuthnRequest{
		Nonce:  challenge,
		Sender: "0xsender",
		Signature: GatewayAuthSignature{
			Sig:  "0xsignature",
			Type: "eth_personal_sign_eip712",
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if authnCalls != 1 {
		t.Fatalf("expected exactly one kgw.authn call, got %d", authnCalls)
	}
}

func TestHttpErrorOnNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, "upstream unavailable")
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.Health(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := err.(*HttpError); !ok {
		t.Fatalf("expected *HttpError, got %T: %v", err, err)
	}
}
