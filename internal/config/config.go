// Package config defines the top-level configuration for idOS SDK services
// (the gateway, the block-commit watcher, and the demo CLI) and provides
// validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/idos-network/idos-sdk-go/internal/crypto"
	"github.com/idos-network/idos-sdk-go/recovery"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by IDOS_* environment variables.
type Config struct {
	Network  NetworkConfig   `toml:"network"`
	Signer   SignerConfig    `toml:"signer"`
	Enclave  EnclaveConfig   `toml:"enclave"`
	Recovery recovery.Config `toml:"recovery"`
	Postgres PostgresConfig  `toml:"postgres"`
	Redis    RedisConfig     `toml:"redis"`
	S3       S3Config        `toml:"s3"`
	Watch    WatchConfig     `toml:"watch"`
	Server   ServerConfig    `toml:"server"`
	Notify   NotifyConfig    `toml:"notify"`
	Mode     string          `toml:"mode"`
	LogLevel string          `toml:"log_level"`
}

// NetworkConfig holds the RPC/gateway endpoints this SDK calls and
// broadcasts against.
type NetworkConfig struct {
	RPCURL     string `toml:"rpc_url"`
	GatewayURL string `toml:"gateway_url"`
	Namespace  string `toml:"namespace"`
	ChainID    int    `toml:"chain_id"`
}

// SignerConfig holds the account signing credentials used to authorize
// gateway calls and sign executes.
type SignerConfig struct {
	Scheme           string `toml:"scheme"` // "secp256k1_ep" or "ed25519"
	PrivateKey       string `toml:"private_key"`
	EncryptedKeyPath string `toml:"encrypted_key_path"`
	KeyPassword      string `toml:"key_password"`
}

// ResolvePrivateKey returns the hex-encoded private key this config names,
// decrypting the file at EncryptedKeyPath with KeyPassword when PrivateKey
// itself is not set directly.
func (s SignerConfig) ResolvePrivateKey() (string, error) {
	return crypto.LoadKey(crypto.KeyConfig{
		RawPrivateKey:    s.PrivateKey,
		EncryptedKeyPath: s.EncryptedKeyPath,
		KeyPassword:      s.KeyPassword,
	})
}

// EnclaveConfig holds the password-derived enclave's storage location and
// default key-expiration policy.
type EnclaveConfig struct {
	StoragePath         string   `toml:"storage_path"`
	DefaultExpiration   duration `toml:"default_expiration"`
	DefaultExpiryPolicy string   `toml:"default_expiry_policy"` // "timed", "one_shot", "session"
}

// PostgresConfig holds PostgreSQL connection parameters for the broadcast
// audit trail.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters, used to back the optional
// cross-process nonce lock.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters, used to archive
// broadcast audit records.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// WatchConfig holds the block-commit watcher's websocket connection
// parameters.
type WatchConfig struct {
	Enabled           bool     `toml:"enabled"`
	WebsocketURL      string   `toml:"websocket_url"`
	ReconnectInterval duration `toml:"reconnect_interval"`
	PingInterval      duration `toml:"ping_interval"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// ServerConfig holds the gateway's HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// NotifyConfig holds notification channel credentials and the set of idOS
// domain events that should be forwarded to them.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// Defaults returns a Config populated with reasonable default values. These
// match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Network: NetworkConfig{
			RPCURL:     "https://rpc.idos.network",
			GatewayURL: "https://nodes.idos.network",
			Namespace:  "idos",
			ChainID:    1,
		},
		Signer: SignerConfig{
			Scheme: "secp256k1_ep",
		},
		Enclave: EnclaveConfig{
			StoragePath:         "./enclave-data",
			DefaultExpiration:   duration{30 * time.Minute},
			DefaultExpiryPolicy: "timed",
		},
		Recovery: recovery.Config{
			RPCURL:         "https://rpc.idos.network",
			TotalNodes:     5,
			Threshold:      3,
			MaliciousNodes: 1,
		},
		Postgres: PostgresConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "idos_audit",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
			TLSEnabled: false,
		},
		S3: S3Config{
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "idos-audit-archive",
			UseSSL:         false,
			ForcePathStyle: true,
		},
		Watch: WatchConfig{
			Enabled:           false,
			ReconnectInterval: duration{5 * time.Second},
			PingInterval:      duration{30 * time.Second},
		},
		Server: ServerConfig{
			Enabled:     true,
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Notify: NotifyConfig{
			Events: []string{"key_unlocked", "key_locked", "broadcast_failed", "auth_required", "recovery_upload_failed"},
		},
		Mode:     "full",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"client":  true,
	"gateway": true,
	"watcher": true,
	"full":    true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validExpiryPolicies = map[string]bool{
	"timed":    true,
	"one_shot": true,
	"session":  true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: client, gateway, watcher, full)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Network
	if c.Network.RPCURL == "" {
		errs = append(errs, "network: rpc_url must not be empty")
	}
	if c.Network.ChainID <= 0 {
		errs = append(errs, "network: chain_id must be positive")
	}

	// Signer — at least one credential source must be specified for modes
	// that sign and broadcast on the caller's behalf.
	needsSigner := c.Mode == "client" || c.Mode == "full"
	if needsSigner {
		if c.Signer.PrivateKey == "" && c.Signer.EncryptedKeyPath == "" {
			errs = append(errs, "signer: either private_key or encrypted_key_path must be set for mode "+c.Mode)
		}
		if c.Signer.EncryptedKeyPath != "" && c.Signer.KeyPassword == "" {
			errs = append(errs, "signer: key_password is required when encrypted_key_path is set")
		}
	}
	if c.Signer.Scheme != "secp256k1_ep" && c.Signer.Scheme != "ed25519" {
		errs = append(errs, fmt.Sprintf("signer: scheme must be secp256k1_ep or ed25519, got %q", c.Signer.Scheme))
	}

	// Enclave
	if c.Enclave.StoragePath == "" {
		errs = append(errs, "enclave: storage_path must not be empty")
	}
	if !validExpiryPolicies[c.Enclave.DefaultExpiryPolicy] {
		errs = append(errs, fmt.Sprintf("enclave: default_expiry_policy must be timed, one_shot, or session, got %q", c.Enclave.DefaultExpiryPolicy))
	}

	// Recovery — only required when a recovery contract is actually
	// configured; an SDK user who never calls the recovery client can leave
	// this entirely at its zero value.
	if c.Recovery.ContractAddress != "" {
		if err := c.Recovery.Validate(); err != nil {
			errs = append(errs, "recovery: "+err.Error())
		}
	}

	// Postgres
	if strings.TrimSpace(c.Postgres.DSN) == "" {
		if c.Postgres.Host == "" {
			errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
		}
		if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
			errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
		}
		if c.Postgres.Database == "" {
			errs = append(errs, "postgres: database must not be empty")
		}
	}
	if c.Postgres.PoolMaxConns < 1 {
		errs = append(errs, "postgres: pool_max_conns must be >= 1")
	}
	if c.Postgres.PoolMinConns < 0 {
		errs = append(errs, "postgres: pool_min_conns must be >= 0")
	}
	if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
		errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
	}

	// Redis
	if c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must not be empty")
	}
	if c.Redis.PoolSize < 1 {
		errs = append(errs, "redis: pool_size must be >= 1")
	}

	// S3
	if c.S3.Endpoint == "" {
		errs = append(errs, "s3: endpoint must not be empty")
	}
	if c.S3.Bucket == "" {
		errs = append(errs, "s3: bucket must not be empty")
	}

	// Watch
	if c.Watch.Enabled && c.Watch.WebsocketURL == "" {
		errs = append(errs, "watch: websocket_url must not be empty when enabled")
	}

	// Server
	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
