package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/idos-network/idos-sdk-go/enclave"
)

func newKeygenCmd() *cobra.Command {
	var userID, password string
	var expiration time.Duration

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "derive and store a new password-protected enclave key",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" || password == "" {
				return fmt.Errorf("keygen: --user-id and --password are required")
			}
			if expiration == 0 {
				expiration = cfg.Enclave.DefaultExpiration.Duration
			}

			orch, metadata, err := openOrchestrator(enclave.KindUser)
			if err != nil {
				return err
			}
			if err := orch.Unlock(userID, password, expiration); err != nil {
				return fmt.Errorf("keygen: %w", err)
			}

			meta, err := metadata.Get(enclave.KindUser)
			if err != nil {
				return fmt.Errorf("keygen: reading back metadata: %w", err)
			}
			fmt.Printf("public_key=%s expires_at=%d\n", meta.PublicKey, *meta.ExpiresAt)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user-id", "", "account identifier the key is derived for")
	cmd.Flags().StringVar(&password, "password", "", "password the key is derived from")
	cmd.Flags().DurationVar(&expiration, "expiration", 0, "key expiration, defaults to enclave.default_expiration")
	return cmd
}
