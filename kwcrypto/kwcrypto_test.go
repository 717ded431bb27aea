package kwcrypto

import (
	"bytes"
	"testing"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

func TestBoxSealOpenRoundTrip(t *testing.T) {
	recvPub, recvSec, err := GenerateBoxKeypair()
	if err != nil {
		t.Fatal(err)
	}
	sendPub, sendSec, err := GenerateBoxKeypair()
	if err != nil {
		t.Fatal(err)
	}

	msg := []byte("hello")
	sealed, err := BoxSeal(msg, recvPub, sendSec)
	if err != nil {
		t.Fatal(err)
	}

	opened, err := BoxOpen(sealed, sendPub, recvSec)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(opened, msg) {
		t.Errorf("BoxOpen(BoxSeal(msg)) = %q, want %q", opened, msg)
	}

	// No proper prefix of the sealed output should open successfully.
	for i := 1; i < len(sealed); i++ {
		if _, err := BoxOpen(sealed[:i], sendPub, recvSec); err == nil {
			t.Fatalf("prefix of length %d unexpectedly opened", i)
		}
	}
}

func TestBoxSealFreshNoncePerCall(t *testing.T) {
	recvPub, _, err := GenerateBoxKeypair()
	if err != nil {
		t.Fatal(err)
	}
	_, sendSec, err := GenerateBoxKeypair()
	if err != nil {
		t.Fatal(err)
	}

	a, err := BoxSeal([]byte("same message"), recvPub, sendSec)
	if err != nil {
		t.Fatal(err)
	}
	b, err := BoxSeal([]byte("same message"), recvPub, sendSec)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(a, b) {
		t.Error("expected distinct ciphertexts across calls due to fresh nonces")
	}
}

func TestDeriveScryptKeyRequiresUUIDSalt(t *testing.T) {
	if _, err := DeriveScryptKey("pw", "not-a-uuid"); err == nil {
		t.Error("expected error for non-uuid salt")
	}
}

func TestDeriveScryptKeyDeterministic(t *testing.T) {
	userID := "550e8400-e29b-41d4-a716-446655440000"
	a, err := DeriveScryptKey("correct horse battery staple", userID)
	if err != nil {
		t.Fatal(err)
	}
	b, err := DeriveScryptKey("correct horse battery staple", userID)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("expected deterministic derivation for identical inputs")
	}
	if len(a) != ScryptDKLen {
		t.Errorf("derived key length = %d, want %d", len(a), ScryptDKLen)
	}
}

func TestPersonalSignRoundTrip(t *testing.T) {
	priv, err := ethcrypto.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	msg := []byte("sign me")
	sig, err := SignPersonal(msg, priv)
	if err != nil {
		t.Fatal(err)
	}
	if sig[64] != 27 && sig[64] != 28 {
		t.Errorf("recovery byte = %d, want 27 or 28", sig[64])
	}
	recovered, err := RecoverPersonal(msg, sig)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(recovered, CompressedPublicKey(priv)) {
		t.Error("recovered public key does not match signer's public key")
	}
}

func TestPayloadDigestLength(t *testing.T) {
	d := PayloadDigest([]byte("arbitrary payload"))
	if len(d) != 20 {
		t.Errorf("PayloadDigest length = %d, want 20", len(d))
	}
}
