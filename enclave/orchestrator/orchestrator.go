// Package orchestrator holds the Locked/Unlocking/Unlocked state machine
// that sits in front of an enclave: it decides when the raw enclave may
// be touched and publishes that decision to subscribers.
package orchestrator

import (
	"errors"
	"sync"
	"time"

	"github.com/idos-network/idos-sdk-go/enclave"
)

// State is one of the three phases of the orchestrator's lifecycle.
type State int

const (
	Locked State = iota
	Unlocking
	Unlocked
)

func (s State) String() string {
	switch s {
	case Locked:
		return "locked"
	case Unlocking:
		return "unlocking"
	case Unlocked:
		return "unlocked"
	default:
		return "unknown"
	}
}

// Orchestrator guards a single Enclave behind a state machine. It is safe
// for concurrent use; state transitions are serialized by mu, and the
// current state is broadcast to subscribers registered via Subscribe.
type Orchestrator struct {
	mu      sync.Mutex
	state   State
	enclave *enclave.Enclave
	subs    map[chan State]struct{}
}

// New builds an Orchestrator in the Locked state, guarding e.
func New(e *enclave.Enclave) *Orchestrator {
	return &Orchestrator{
		state:   Locked,
		enclave: e,
		subs:    make(map[chan State]struct{}),
	}
}

// State returns the current state without touching storage.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// CheckStatus consults the enclave's persisted key metadata and moves to
// Unlocked if it is present and unexpired, or to Locked otherwise. It
// never itself calls unlock -- it only reconciles state with what is
// already on disk (e.g. a key unlocked by another process, or one that
// expired since the last check).
func (o *Orchestrator) CheckStatus() State {
	err := o.enclave.HasValidKey()
	o.setState(boolToState(err == nil))
	return o.State()
}

// Unlock derives the enclave's key from userID and password and transitions
// Locked -> Unlocking -> {Unlocked, Locked}.
func (o *Orchestrator) Unlock(userID, password string, expiration time.Duration) error {
	o.setState(Unlocking)

	_, err := o.enclave.GenerateKey(userID, password, expiration)
	if err != nil {
		o.setState(Locked)
		return err
	}

	o.setState(Unlocked)
	return nil
}

// Lock tears down the enclave's key and unconditionally ends in Locked,
// even if the underlying delete fails -- a lock attempt must be
// unconditionally effective from the caller's point of view.
func (o *Orchestrator) Lock() {
	_ = o.enclave.DeleteKey()
	o.setState(Locked)
}

// ErrLocked is returned by WithEnclave when the orchestrator is not
// currently Unlocked.
var ErrLocked = errors.New("orchestrator: enclave is not unlocked")

// WithEnclave invokes fn with the live enclave iff the orchestrator is
// currently Unlocked, and returns fn's error unchanged. If the
// orchestrator is Locked or Unlocking, it returns ErrLocked without
// calling fn. There is no queuing: concurrent callers simply observe
// whatever state holds at the moment they call WithEnclave.
func (o *Orchestrator) WithEnclave(fn func(*enclave.Enclave) error) error {
	if o.State() != Unlocked {
		return ErrLocked
	}
	return fn(o.enclave)
}

// Subscribe registers ch to receive the current state immediately and
// every subsequent transition. The channel is buffered by the caller's
// choice; a full channel's send is dropped rather than blocking the
// orchestrator. Unsubscribe must be called to stop delivery and release
// the channel.
func (o *Orchestrator) Subscribe(ch chan State) {
	o.mu.Lock()
	o.subs[ch] = struct{}{}
	current := o.state
	o.mu.Unlock()

	select {
	case ch <- current:
	default:
	}
}

// Unsubscribe stops delivery to ch. It does not close ch.
func (o *Orchestrator) Unsubscribe(ch chan State) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.subs, ch)
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	subs := make([]chan State, 0, len(o.subs))
	for ch := range o.subs {
		subs = append(subs, ch)
	}
	o.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- s:
		default:
		}
	}
}

func boolToState(valid bool) State {
	if valid {
		return Unlocked
	}
	return Locked
}
