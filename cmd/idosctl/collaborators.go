package main

import (
	"context"
	"fmt"

	"github.com/idos-network/idos-sdk-go/actions"
	"github.com/idos-network/idos-sdk-go/internal/cache/redis"
	"github.com/idos-network/idos-sdk-go/internal/notify"
	"github.com/idos-network/idos-sdk-go/internal/store/postgres"
	"github.com/idos-network/idos-sdk-go/internal/watch"
)

// executorCollaborators holds the optional infrastructure execute wires
// into an Executor, plus a teardown func that releases all of it.
type executorCollaborators struct {
	opts  []actions.ExecutorOption
	close func()
}

// buildExecutorCollaborators conditionally connects the nonce lock,
// audit logger, notifier, and block-commit watcher named in cfg and by
// the given flags, returning the ExecutorOptions that wire them in. Any
// collaborator not requested is simply omitted -- Executor degrades
// gracefully without it.
func buildExecutorCollaborators(ctx context.Context, useNonceLock, useAudit, useNotify, useWatch bool) (*executorCollaborators, error) {
	var opts []actions.ExecutorOption
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if useNonceLock {
		rdb, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("connecting nonce lock redis: %w", err)
		}
		closers = append(closers, func() { _ = rdb.Close() })
		opts = append(opts, actions.WithNonceLock(redis.NewNonceLock(rdb)))
	}

	if useAudit {
		pool, err := postgres.NewPool(ctx, postgres.PoolConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("connecting audit postgres: %w", err)
		}
		closers = append(closers, pool.Close)
		opts = append(opts, actions.WithAuditLogger(postgres.NewStore(pool)))
	}

	if useNotify {
		var senders []notify.Sender
		if cfg.Notify.DiscordWebhookURL != "" {
			senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
		}
		if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
			senders = append(senders, notify.NewTelegramSender(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID))
		}
		if len(senders) == 0 {
			closeAll()
			return nil, fmt.Errorf("notify: no channel configured (set notify.discord_webhook_url or notify.telegram_token/telegram_chat_id)")
		}
		opts = append(opts, actions.WithNotifier(notify.NewNotifier(senders, cfg.Notify.Events, logger)))
	}

	if useWatch {
		if cfg.Watch.WebsocketURL == "" {
			closeAll()
			return nil, fmt.Errorf("watch: websocket_url must be set to use --watch")
		}
		w := watch.New(cfg.Watch.WebsocketURL)
		if err := w.Connect(ctx); err != nil {
			closeAll()
			return nil, fmt.Errorf("connecting block-commit watcher: %w", err)
		}
		closers = append(closers, func() { _ = w.Close() })
		opts = append(opts, actions.WithWatcher(w))
	}

	return &executorCollaborators{opts: opts, close: closeAll}, nil
}
