package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/idos-network/idos-sdk-go/enclave"
	s3blob "github.com/idos-network/idos-sdk-go/internal/blob/s3"
	"github.com/idos-network/idos-sdk-go/internal/store/postgres"
)

// newArchiveCmd groups the broadcast-audit and enclave-metadata backup
// operations run against cold storage, backed by internal/blob/s3.
func newArchiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "back up broadcast audit records and enclave metadata to S3",
	}
	cmd.AddCommand(newArchiveBroadcastsCmd(), newArchiveMetadataCmd())
	return cmd
}

func openArchiver() (*s3blob.Archiver, func(), error) {
	ctx := context.Background()
	client, err := s3blob.New(ctx, s3blob.ClientConfig{
		Endpoint:       cfg.S3.Endpoint,
		Region:         cfg.S3.Region,
		Bucket:         cfg.S3.Bucket,
		AccessKey:      cfg.S3.AccessKey,
		SecretKey:      cfg.S3.SecretKey,
		UseSSL:         cfg.S3.UseSSL,
		ForcePathStyle: cfg.S3.ForcePathStyle,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("archive: connecting to S3: %w", err)
	}

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
		return nil, nil, fmt.Errorf("archive: connecting to Postgres: %w", err)
	}

	store := postgres.NewStore(pool)
	writer := s3blob.NewWriter(client)
	closeAll := func() {
		pool.Close()
		_ = client.Close()
	}
	return s3blob.NewArchiver(writer, store), closeAll, nil
}

func newArchiveBroadcastsCmd() *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "broadcasts",
		Short: "copy broadcast audit records older than --older-than into S3 as JSONL",
		RunE: func(cmd *cobra.Command, args []string) error {
			archiver, closeFn, err := openArchiver()
			if err != nil {
				return err
			}
			defer closeFn()

			count, err := archiver.ArchiveBroadcasts(cmd.Context(), time.Now().Add(-olderThan))
			if err != nil {
				return fmt.Errorf("archive broadcasts: %w", err)
			}
			fmt.Printf("archived %d broadcast audit records\n", count)
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "archive audit records older than this duration")
	return cmd
}

func newArchiveMetadataCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "metadata",
		Short: "back up the enclave's encrypted key metadata to S3",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				return fmt.Errorf("archive metadata: --password is required")
			}
			archiver, closeFn, err := openArchiver()
			if err != nil {
				return err
			}
			defer closeFn()

			_, metadata, err := openOrchestrator(enclave.KindUser)
			if err != nil {
				return err
			}

			path, err := archiver.ArchiveMetadata(cmd.Context(), metadata, enclave.KindUser, password)
			if err != nil {
				return fmt.Errorf("archive metadata: %w", err)
			}
			fmt.Println(path)
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "password to encrypt the archived metadata blob with")
	return cmd
}
