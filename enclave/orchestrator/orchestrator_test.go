package orchestrator

import (
	"errors"
	"testing"
	"time"

	"github.com/idos-network/idos-sdk-go/enclave"
)

const testUserID = "550e8400-e29b-41d4-a716-446655440000"

func newTestOrchestrator() *Orchestrator {
	e := enclave.New(enclave.KindUser, enclave.NewInMemorySecretStore(), enclave.NewInMemoryMetadataStore())
	return New(e)
}

func TestInitialStateLocked(t *testing.T) {
	o := newTestOrchestrator()
	if got := o.State(); got != Locked {
		t.Fatalf("initial state = %v, want Locked", got)
	}
}

func TestUnlockTransitionsToUnlocked(t *testing.T) {
	o := newTestOrchestrator()
	if err := o.Unlock(testUserID, "correct horse battery staple", time.Hour); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	if got := o.State(); got != Unlocked {
		t.Fatalf("state after Unlock = %v, want Unlocked", got)
	}
}

func TestUnlockFailureLeavesLocked(t *testing.T) {
	o := newTestOrchestrator()
	if err := o.Unlock("not-a-uuid", "pw", time.Hour); err == nil {
		t.Fatal("Unlock with invalid user id: expected error, got nil")
	}
	if got := o.State(); got != Locked {
		t.Fatalf("state after failed Unlock = %v, want Locked", got)
	}
}

func TestLockAlwaysEndsLocked(t *testing.T) {
	o := newTestOrchestrator()
	if err := o.Unlock(testUserID, "pw", time.Hour); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	o.Lock()
	if got := o.State(); got != Locked {
		t.Fatalf("state after Lock = %v, want Locked", got)
	}

	// Lock on an already-locked orchestrator (delete_key on empty
	// storage) must still end Locked, never propagate an error.
	o.Lock()
	if got := o.State(); got != Locked {
		t.Fatalf("state after second Lock = %v, want Locked", got)
	}
}

func TestWithEnclaveRunsOnlyWhenUnlocked(t *testing.T) {
	o := newTestOrchestrator()

	called := false
	err := o.WithEnclave(func(*enclave.Enclave) error {
		called = true
		return nil
	})
	if !errors.Is(err, ErrLocked) {
		t.Fatalf("WithEnclave while locked = %v, want ErrLocked", err)
	}
	if called {
		t.Fatal("WithEnclave invoked fn while locked")
	}

	if err := o.Unlock(testUserID, "pw", time.Hour); err != nil {
		t.Fatalf("Unlock: %v", err)
	}

	err = o.WithEnclave(func(e *enclave.Enclave) error {
		called = true
		_, _, err := e.Encrypt([]byte("hi"), make([]byte, 32))
		return err
	})
	if err != nil {
		t.Fatalf("WithEnclave while unlocked: %v", err)
	}
	if !called {
		t.Fatal("WithEnclave did not invoke fn while unlocked")
	}
}

func TestCheckStatusReconcilesWithStorage(t *testing.T) {
	e := enclave.New(enclave.KindUser, enclave.NewInMemorySecretStore(), enclave.NewInMemoryMetadataStore())
	o := New(e)

	if got := o.CheckStatus(); got != Locked {
		t.Fatalf("CheckStatus with no key = %v, want Locked", got)
	}

	if _, err := e.GenerateKey(testUserID, "pw", time.Hour); err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}

	// The key now exists on disk even though this orchestrator never
	// called Unlock itself -- CheckStatus must still observe it.
	if got := o.CheckStatus(); got != Unlocked {
		t.Fatalf("CheckStatus after out-of-band key generation = %v, want Unlocked", got)
	}
}

func TestSubscribeReceivesCurrentStateThenTransitions(t *testing.T) {
	o := newTestOrchestrator()

	ch := make(chan State, 8)
	o.Subscribe(ch)

	if got := <-ch; got != Locked {
		t.Fatalf("initial subscribed state = %v, want Locked", got)
	}

	if err := o.Unlock(testUserID, "pw", time.Hour); err != nil {
		t.Fatalf("Unlock: %v", err)
	}

	if got := <-ch; got != Unlocking {
		t.Fatalf("first transition = %v, want Unlocking", got)
	}
	if got := <-ch; got != Unlocked {
		t.Fatalf("second transition = %v, want Unlocked", got)
	}

	o.Unsubscribe(ch)
	o.Lock()

	select {
	case got := <-ch:
		t.Fatalf("received %v after Unsubscribe, want no delivery", got)
	default:
	}
}
