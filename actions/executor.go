package actions

import (
	"context"
	"fmt"
	"time"

	"github.com/idos-network/idos-sdk-go/codec"
	"github.com/idos-network/idos-sdk-go/internal/store/postgres"
	"github.com/idos-network/idos-sdk-go/internal/watch"
	"github.com/idos-network/idos-sdk-go/kwrpc"
	"github.com/idos-network/idos-sdk-go/signer"
	"github.com/idos-network/idos-sdk-go/types"
)

// defaultNonceLockTTL bounds how long a held nonce lock survives a crashed
// holder before another caller can acquire it.
const defaultNonceLockTTL = 15 * time.Second

// defaultPollInterval paces the tx_query fallback wait path used when a
// configured Watcher fails to observe the commit.
const defaultPollInterval = 2 * time.Second

// NonceLock serializes the fetch-nonce-then-broadcast critical section
// across processes sharing one account. *redis.NonceLock satisfies this.
type NonceLock interface {
	Acquire(ctx context.Context, account string, ttl time.Duration) (func(), error)
}

// AuditLogger records the outcome of every broadcast attempt.
// *postgres.Store satisfies this.
type AuditLogger interface {
	Log(ctx context.Context, e postgres.Entry, detail map[string]any) error
}

// Notifier forwards named events to whatever channels it was built with.
// *notify.Notifier satisfies this.
type Notifier interface {
	Notify(ctx context.Context, event, title, message string) error
}

// Watcher supplies a push-based alternative to tx_query polling for
// waiting on a transaction's commit. *watch.Watcher satisfies this.
type Watcher interface {
	WaitForTxHash(ctx context.Context, txHash string) (watch.CommitNotice, error)
}

// Executor drives the view and execute pipelines against a protocol
// client, with auto re-authentication on a gateway-auth-required error.
// It owns the protocol client; the protocol client owns the HTTP client.
//
// NonceLock, AuditLogger, Notifier, and Watcher are all optional
// collaborators: a zero-value Executor (or one built with no options)
// degrades gracefully to the same behavior as before they existed.
type Executor struct {
	rpc     *kwrpc.Client
	chainID string

	nonceLock    NonceLock
	nonceLockTTL time.Duration
	audit        AuditLogger
	notifier     Notifier
	watcher      Watcher
	pollInterval time.Duration
}

// ExecutorOption configures optional Executor collaborators at
// construction time.
type ExecutorOption func(*Executor)

// WithNonceLock wires a distributed lock that serializes concurrent
// executes against the same account.
func WithNonceLock(nl NonceLock) ExecutorOption {
	return func(e *Executor) { e.nonceLock = nl }
}

// WithNonceLockTTL overrides the default nonce lock TTL.
func WithNonceLockTTL(ttl time.Duration) ExecutorOption {
	return func(e *Executor) { e.nonceLockTTL = ttl }
}

// WithAuditLogger wires a store that records every broadcast outcome, so
// an operator can reconcile a broadcast whose result was never observed.
func WithAuditLogger(a AuditLogger) ExecutorOption {
	return func(e *Executor) { e.audit = a }
}

// WithNotifier wires a channel that is told about broadcast failures and
// authentication-required outcomes as they happen.
func WithNotifier(n Notifier) ExecutorOption {
	return func(e *Executor) { e.notifier = n }
}

// WithWatcher wires a block-commit feed as the preferred wait-for-commit
// path; the kwrpc tx_query poll is the fallback when it fails to observe
// the commit. Without a watcher, the broadcast itself waits for commit
// server-side.
func WithWatcher(w Watcher) ExecutorOption {
	return func(e *Executor) { e.watcher = w }
}

// WithPollInterval overrides the tx_query fallback poll interval.
func WithPollInterval(d time.Duration) ExecutorOption {
	return func(e *Executor) { e.pollInterval = d }
}

// NewExecutor builds an Executor bound to chainID, the value placed in
// every transaction envelope this executor signs.
func NewExecutor(rpc *kwrpc.Client, chainID string, opts ...ExecutorOption) *Executor {
	e := &Executor{
		rpc:          rpc,
		chainID:      chainID,
		nonceLockTTL: defaultNonceLockTTL,
		pollInterval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// View runs a read-only action and returns its decoded rows in the order
// the server returned them. s may be nil for a public (unauthenticated)
// view.
func (e *Executor) View(ctx context.Context, stub ActionStub, input any, s signer.Signer) ([]any, error) {
	var records []any
	err := e.withReauth(ctx, s, func() error {
		qr, decodeErr := e.call(ctx, stub, input, s)
		if decodeErr != nil {
			return decodeErr
		}
		records = make([]any, 0, len(qr.Values))
		for _, row := range qr.Rows() {
			rec, err := stub.DecodeRow(row)
			if err != nil {
				return &ValidationError{Msg: fmt.Sprintf("decoding row: %v", err)}
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	return records, nil
}

// CallSingle runs a view expected to return exactly one row, failing
// with NotFound otherwise.
func (e *Executor) CallSingle(ctx context.Context, stub ActionStub, input any, s signer.Signer) (any, error) {
	records, err := e.View(ctx, stub, input, s)
	if err != nil {
		return nil, err
	}
	if len(records) != 1 {
		return nil, &NotFound{}
	}
	return records[0], nil
}

// Execute runs a write action: fetch nonce, encode, build and sign the
// envelope, broadcast, and return the transaction hash. sync defaults to
// wait-for-commit.
//
// When a NonceLock is configured, it is held across the fetch-nonce-then-
// broadcast critical section. When a wait-for-commit broadcast is
// requested and a Watcher is configured, the broadcast itself is
// submitted fire-and-forget and the wait is instead driven by the
// watcher (falling back to tx_query polling), so a slow or unavailable
// gateway-side wait never blocks the broadcast call itself. Every
// outcome, successful or not, is recorded through the AuditLogger and
// failures are pushed through the Notifier, when configured.
func (e *Executor) Execute(ctx context.Context, stub ActionStub, input any, s signer.Signer, sync kwrpc.BroadcastSync) (string, error) {
	if s == nil {
		return "", mapError(&ValidationError{Msg: "execute requires a signer"})
	}

	var txHash string
	err := e.withReauth(ctx, s, func() error {
		values, err := stub.ProjectInput(input)
		if err != nil {
			return &ValidationError{Msg: err.Error()}
		}
		args, err := buildArgs(values, stub.ParamTypes())
		if err != nil {
			return err
		}

		identifier := types.EncodeHex(s.GetIdentifier())

		if e.nonceLock != nil {
			unlock, lockErr := e.nonceLock.Acquire(ctx, identifier, e.nonceLockTTL)
			if lockErr != nil {
				return &Unknown{Msg: fmt.Sprintf("acquiring nonce lock: %v", lockErr), Cause: lockErr}
			}
			defer unlock()
		}

		acct, err := e.rpc.GetAccount(ctx, identifier)
		if err != nil {
			return err
		}
		nonce := acct.Nonce + 1

		payload, err := codec.EncodeExecutionPayload(stub.Namespace(), stub.Name(), [][]codec.Arg{args})
		if err != nil {
			return &ValidationError{Msg: err.Error()}
		}

		desc := fmt.Sprintf("%s.%s", stub.Namespace(), stub.Name())
		tx := codec.NewUnsignedTransaction(desc, payload, nonce, e.chainID, s.GetSignatureType(), identifier)
		if err := codec.Sign(tx, payload, s); err != nil {
			return &Unknown{Msg: "signing transaction", Cause: err}
		}

		broadcastSync := sync
		waitViaWatcher := sync == kwrpc.WaitForCommit && e.watcher != nil
		if waitViaWatcher {
			broadcastSync = kwrpc.FireAndForget
		}

		res, broadcastErr := e.rpc.Broadcast(ctx, tx, broadcastSync)
		var code int
		var logMsg string
		if res != nil {
			txHash = res.TxHash
			if res.Result != nil {
				code, logMsg = res.Result.Code, res.Result.Log
			}
		}

		if waitViaWatcher && broadcastErr == nil {
			tqr, waitErr := e.awaitCommit(ctx, txHash)
			switch {
			case waitErr != nil:
				broadcastErr = waitErr
			case tqr.Result != nil:
				code, logMsg = tqr.Result.Code, tqr.Result.Log
				if code != 0 {
					broadcastErr = &kwrpc.TransactionFailed{Log: logMsg, TxHash: txHash}
				}
			}
		}

		e.logBroadcast(ctx, identifier, stub, nonce, txHash, code, logMsg, broadcastErr)
		if broadcastErr != nil {
			e.notifyOutcome(ctx, mapError(broadcastErr))
			return broadcastErr
		}
		return nil
	})
	if err != nil {
		mapped := mapError(err)
		if _, ok := mapped.(*AuthenticationRequired); ok {
			e.notifyOutcome(ctx, mapped)
		}
		return "", mapped
	}
	return txHash, nil
}

// Reconcile looks up a previously broadcast transaction's outcome by
// hash. A caller whose context was cancelled after a broadcast but before
// observing its result uses this to find out whether the transaction
// actually landed, per the cancellation contract: cancellation after
// broadcast does not retract it.
func (e *Executor) Reconcile(ctx context.Context, txHash string) (*kwrpc.TxQueryResult, error) {
	res, err := e.rpc.TxQuery(ctx, txHash)
	if err != nil {
		return nil, mapError(err)
	}
	return res, nil
}

// awaitCommit blocks until txHash commits, preferring the Watcher's
// push-based feed and falling back to the kwrpc tx_query poll when no
// watcher is configured or it fails to observe the commit.
func (e *Executor) awaitCommit(ctx context.Context, txHash string) (*kwrpc.TxQueryResult, error) {
	if e.watcher != nil {
		if _, err := e.watcher.WaitForTxHash(ctx, txHash); err == nil {
			return e.rpc.TxQuery(ctx, txHash)
		}
	}
	return e.rpc.PollForCommit(ctx, txHash, e.pollInterval)
}

// logBroadcast records one broadcast attempt through the AuditLogger. A
// logging failure is not surfaced to the caller -- it must never mask the
// broadcast's actual outcome.
func (e *Executor) logBroadcast(ctx context.Context, sender string, stub ActionStub, nonce uint64, txHash string, code int, log string, outcome error) {
	if e.audit == nil {
		return
	}
	detail := map[string]any{}
	if outcome != nil {
		detail["error"] = outcome.Error()
	}
	entry := postgres.Entry{
		Sender:    sender,
		Namespace: stub.Namespace(),
		Action:    stub.Name(),
		Nonce:     nonce,
		TxHash:    txHash,
		Code:      code,
		Log:       log,
	}
	_ = e.audit.Log(ctx, entry, detail)
}

// notifyOutcome forwards a broadcast failure or auth-required outcome
// through the Notifier. Delivery failures are swallowed by the Notifier
// itself (it logs them); they must not propagate back as the call's error.
func (e *Executor) notifyOutcome(ctx context.Context, mapped error) {
	if e.notifier == nil {
		return
	}
	switch m := mapped.(type) {
	case *ActionFailed:
		_ = e.notifier.Notify(ctx, "broadcast_failed", "broadcast failed",
			fmt.Sprintf("tx %s: %s", m.TxHash, m.Msg))
	case *AuthenticationRequired:
		_ = e.notifier.Notify(ctx, "auth_required", "authentication required",
			"gateway session could not be re-established")
	}
}

// call encodes and submits a view-call RPC message for stub/input,
// attaching s's identifier and signature type when present.
func (e *Executor) call(ctx context.Context, stub ActionStub, input any, s signer.Signer) (*kwrpc.QueryResult, error) {
	values, err := stub.ProjectInput(input)
	if err != nil {
		return nil, &ValidationError{Msg: err.Error()}
	}
	args, err := buildArgs(values, stub.ParamTypes())
	if err != nil {
		return nil, err
	}
	payload, err := codec.EncodeCallPayload(stub.Namespace(), stub.Name(), args)
	if err != nil {
		return nil, &ValidationError{Msg: err.Error()}
	}

	msg := kwrpc.RpcMessage{
		Body: kwrpc.MessageBody{Payload: types.EncodeBase64(payload)},
	}
	if s != nil {
		msg.AuthType = s.GetSignatureType()
		msg.Sender = types.EncodeHex(s.GetIdentifier())
	} else {
		msg.AuthType = signer.Invalid
	}

	return e.rpc.Call(ctx, msg)
}

// withReauth runs fn; on a gateway-auth-required error it runs the
// challenge flow exactly once and re-runs fn from the start. A second
// auth-required error surfaces as AuthenticationRequired.
func (e *Executor) withReauth(ctx context.Context, s signer.Signer, fn func() error) error {
	err := fn()
	if err == nil || !kwrpc.IsAuthRequired(err) {
		return err
	}
	if s == nil {
		return &AuthenticationRequired{}
	}
	if reauthErr := e.reauthenticate(ctx, s); reauthErr != nil {
		return reauthErr
	}
	err = fn()
	if err != nil && kwrpc.IsAuthRequired(err) {
		return &AuthenticationRequired{}
	}
	return err
}

// reauthenticate runs the gateway challenge-response flow: fetch
// a challenge, sign it, submit gateway_authn. A successful exchange sets
// a session cookie in the shared HTTP client's cookie jar.
func (e *Executor) reauthenticate(ctx context.Context, s signer.Signer) error {
	challengeHex, err := e.rpc.Challenge(ctx)
	if err != nil {
		return err
	}
	challenge, err := types.DecodeHex(challengeHex)
	if err != nil {
		return &kwrpc.AuthenticationFailed{Reason: fmt.Sprintf("invalid challenge encoding: %v", err)}
	}
	sig, err := s.Sign(challenge)
	if err != nil {
		return &kwrpc.AuthenticationFailed{Reason: fmt.Sprintf("signing challenge: %v", err)}
	}
	return e.rpc.GatewayAuthn(ctx, kwrpc.GatewayAuthnRequest{
		Nonce:  challengeHex,
		Sender: types.EncodeHex(s.GetIdentifier()),
		Signature: kwrpc.GatewayAuthSignature{
			Sig:  types.EncodeBase64(sig),
			Type: s.GetSignatureType(),
		},
	})
}

// mapError collapses protocol, transport, and enclave errors onto the
// closed public taxonomy.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch e := err.(type) {
	case *ActionFailed, *ValidationError, *NotFound, *AuthenticationRequired, *Unknown:
		return e
	case *kwrpc.TransactionFailed:
		return &ActionFailed{Msg: e.Log, TxHash: e.TxHash}
	case *kwrpc.AuthenticationFailed:
		return &AuthenticationRequired{}
	case *kwrpc.RpcError:
		return &ActionFailed{Msg: e.Message}
	default:
		return &Unknown{Msg: err.Error(), Cause: err}
	}
}
