package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies IDOS_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known IDOS_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e.
// not empty). This lets operators inject secrets at deploy time without
// touching the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Network ──
	setStr(&cfg.Network.RPCURL, "IDOS_NETWORK_RPC_URL")
	setStr(&cfg.Network.GatewayURL, "IDOS_NETWORK_GATEWAY_URL")
	setStr(&cfg.Network.Namespace, "IDOS_NETWORK_NAMESPACE")
	setInt(&cfg.Network.ChainID, "IDOS_NETWORK_CHAIN_ID")

	// ── Signer ──
	setStr(&cfg.Signer.Scheme, "IDOS_SIGNER_SCHEME")
	setStr(&cfg.Signer.PrivateKey, "IDOS_SIGNER_PRIVATE_KEY")
	setStr(&cfg.Signer.EncryptedKeyPath, "IDOS_SIGNER_ENCRYPTED_KEY_PATH")
	setStr(&cfg.Signer.KeyPassword, "IDOS_SIGNER_KEY_PASSWORD")

	// ── Enclave ──
	setStr(&cfg.Enclave.StoragePath, "IDOS_ENCLAVE_STORAGE_PATH")
	setDuration(&cfg.Enclave.DefaultExpiration, "IDOS_ENCLAVE_DEFAULT_EXPIRATION")
	setStr(&cfg.Enclave.DefaultExpiryPolicy, "IDOS_ENCLAVE_DEFAULT_EXPIRY_POLICY")

	// ── Recovery ──
	setStr(&cfg.Recovery.RPCURL, "IDOS_RECOVERY_RPC_URL")
	setStr(&cfg.Recovery.ContractAddress, "IDOS_RECOVERY_CONTRACT_ADDRESS")
	setInt(&cfg.Recovery.TotalNodes, "IDOS_RECOVERY_TOTAL_NODES")
	setInt(&cfg.Recovery.Threshold, "IDOS_RECOVERY_THRESHOLD")
	setInt(&cfg.Recovery.MaliciousNodes, "IDOS_RECOVERY_MALICIOUS_NODES")

	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "IDOS_POSTGRES_DSN")
	setStr(&cfg.Postgres.DSN, "IDOS_POSTGRES_URL") // compatibility alias
	setStr(&cfg.Postgres.Host, "IDOS_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "IDOS_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "IDOS_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "IDOS_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "IDOS_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "IDOS_POSTGRES_SSLMODE")
	setStr(&cfg.Postgres.SSLMode, "IDOS_POSTGRES_SSL_MODE") // compatibility alias
	setInt(&cfg.Postgres.PoolMaxConns, "IDOS_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "IDOS_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "IDOS_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "IDOS_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "IDOS_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "IDOS_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "IDOS_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "IDOS_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "IDOS_REDIS_TLS_ENABLED")

	// ── S3 ──
	setStr(&cfg.S3.Endpoint, "IDOS_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "IDOS_S3_REGION")
	setStr(&cfg.S3.Bucket, "IDOS_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "IDOS_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "IDOS_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "IDOS_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "IDOS_S3_FORCE_PATH_STYLE")

	// ── Watch ──
	setBool(&cfg.Watch.Enabled, "IDOS_WATCH_ENABLED")
	setStr(&cfg.Watch.WebsocketURL, "IDOS_WATCH_WEBSOCKET_URL")
	setDuration(&cfg.Watch.ReconnectInterval, "IDOS_WATCH_RECONNECT_INTERVAL")
	setDuration(&cfg.Watch.PingInterval, "IDOS_WATCH_PING_INTERVAL")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "IDOS_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "IDOS_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "IDOS_SERVER_CORS_ORIGINS")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "IDOS_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "IDOS_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "IDOS_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "IDOS_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "IDOS_MODE")
	setStr(&cfg.LogLevel, "IDOS_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
