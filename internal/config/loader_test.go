package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleTOML = `
mode = "client"
log_level = "debug"

[network]
rpc_url = "https://rpc.example.org"
chain_id = 42

[signer]
scheme = "ed25519"
private_key = "0xdeadbeef"
`

func writeTempTOML(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMergesFileOntoDefaults(t *testing.T) {
	path := writeTempTOML(t, sampleTOML)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Mode != "client" {
		t.Errorf("Mode = %q, want client", cfg.Mode)
	}
	if cfg.Network.RPCURL != "https://rpc.example.org" {
		t.Errorf("Network.RPCURL = %q", cfg.Network.RPCURL)
	}
	if cfg.Network.ChainID != 42 {
		t.Errorf("Network.ChainID = %d, want 42", cfg.Network.ChainID)
	}
	// Untouched-by-file fields retain their defaults.
	if cfg.Network.GatewayURL != Defaults().Network.GatewayURL {
		t.Errorf("Network.GatewayURL = %q, want default preserved", cfg.Network.GatewayURL)
	}
	if cfg.Enclave.StoragePath != Defaults().Enclave.StoragePath {
		t.Errorf("Enclave.StoragePath = %q, want default preserved", cfg.Enclave.StoragePath)
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	path := writeTempTOML(t, sampleTOML)

	t.Setenv("IDOS_NETWORK_RPC_URL", "https://rpc.from-env.example")
	t.Setenv("IDOS_SIGNER_PRIVATE_KEY", "0xfromenv")
	t.Setenv("IDOS_SERVER_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Network.RPCURL != "https://rpc.from-env.example" {
		t.Errorf("Network.RPCURL = %q, want env override", cfg.Network.RPCURL)
	}
	if cfg.Signer.PrivateKey != "0xfromenv" {
		t.Errorf("Signer.PrivateKey = %q, want env override", cfg.Signer.PrivateKey)
	}
	want := []string{"https://a.example", "https://b.example"}
	if len(cfg.Server.CORSOrigins) != len(want) || cfg.Server.CORSOrigins[0] != want[0] || cfg.Server.CORSOrigins[1] != want[1] {
		t.Errorf("Server.CORSOrigins = %v, want %v", cfg.Server.CORSOrigins, want)
	}
}

func TestLoadLeavesFieldUnchangedWhenEnvVarEmpty(t *testing.T) {
	path := writeTempTOML(t, sampleTOML)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Signer.Scheme != "ed25519" {
		t.Errorf("Signer.Scheme = %q, want ed25519 from file", cfg.Signer.Scheme)
	}
}
