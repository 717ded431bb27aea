package config

import (
	"testing"

	"github.com/idos-network/idos-sdk-go/recovery"
)

func validConfig() Config {
	cfg := Defaults()
	cfg.Mode = "client"
	cfg.Signer.PrivateKey = "0xabc123"
	return cfg
}

func TestDefaultsPassValidationForClientMode(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestValidateRejectsUnknownMode(t *testing.T) {
	cfg := validConfig()
	cfg.Mode = "bogus"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestValidateRequiresSignerForClientMode(t *testing.T) {
	cfg := validConfig()
	cfg.Signer.PrivateKey = ""
	cfg.Signer.EncryptedKeyPath = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error: client mode without a signer key source")
	}
}

func TestValidateAllowsMissingSignerForWatcherMode(t *testing.T) {
	cfg := validConfig()
	cfg.Mode = "watcher"
	cfg.Signer.PrivateKey = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil for watcher mode with no signer", err)
	}
}

func TestValidateRequiresPasswordWithEncryptedKeyPath(t *testing.T) {
	cfg := validConfig()
	cfg.Signer.PrivateKey = ""
	cfg.Signer.EncryptedKeyPath = "/keys/account.json"
	cfg.Signer.KeyPassword = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error: encrypted_key_path without key_password")
	}
}

func TestValidateSkipsRecoveryWhenContractAddressUnset(t *testing.T) {
	cfg := validConfig()
	cfg.Recovery = recovery.Config{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil when recovery is unconfigured", err)
	}
}

func TestValidateChecksRecoveryArithmeticWhenConfigured(t *testing.T) {
	cfg := validConfig()
	cfg.Recovery = recovery.Config{
		ContractAddress: "0x1122334455667788990011223344556677889900",
		TotalNodes:      3,
		Threshold:       5, // k > n, invalid
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error: recovery threshold exceeds total nodes")
	}
}

func TestValidateRejectsBadPostgresPort(t *testing.T) {
	cfg := validConfig()
	cfg.Postgres.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for out-of-range postgres port")
	}
}

func TestRedactedConfigHidesSecretsWithoutMutatingOriginal(t *testing.T) {
	cfg := validConfig()
	cfg.Signer.PrivateKey = "supersecret"
	cfg.Postgres.Password = "dbpass"
	cfg.S3.SecretKey = "s3secret"

	redacted := RedactedConfig(&cfg)

	if redacted.Signer.PrivateKey != "***" {
		t.Errorf("Signer.PrivateKey = %q, want redacted", redacted.Signer.PrivateKey)
	}
	if redacted.Postgres.Password != "***" {
		t.Errorf("Postgres.Password = %q, want redacted", redacted.Postgres.Password)
	}
	if redacted.S3.SecretKey != "***" {
		t.Errorf("S3.SecretKey = %q, want redacted", redacted.S3.SecretKey)
	}

	// Original must be untouched.
	if cfg.Signer.PrivateKey != "supersecret" {
		t.Errorf("original Signer.PrivateKey was mutated: %q", cfg.Signer.PrivateKey)
	}
}

func TestRedactedConfigCopiesSlicesIndependently(t *testing.T) {
	cfg := validConfig()
	cfg.Notify.Events = []string{"key_unlocked"}

	redacted := RedactedConfig(&cfg)
	redacted.Notify.Events[0] = "mutated"

	if cfg.Notify.Events[0] != "key_unlocked" {
		t.Fatalf("mutating redacted copy's slice affected original: %q", cfg.Notify.Events[0])
	}
}
