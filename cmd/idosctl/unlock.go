package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/idos-network/idos-sdk-go/enclave"
)

func newUnlockCmd() *cobra.Command {
	var userID, password string
	var expiration time.Duration
	var status, lock bool

	cmd := &cobra.Command{
		Use:   "unlock",
		Short: "unlock an existing enclave key, check its status, or lock it",
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, _, err := openOrchestrator(enclave.KindUser)
			if err != nil {
				return err
			}

			switch {
			case status:
				fmt.Println(orch.CheckStatus())
				return nil
			case lock:
				orch.Lock()
				fmt.Println(orch.State())
				return nil
			}

			if userID == "" || password == "" {
				return fmt.Errorf("unlock: --user-id and --password are required (or pass --status / --lock)")
			}
			if expiration == 0 {
				expiration = cfg.Enclave.DefaultExpiration.Duration
			}
			if err := orch.Unlock(userID, password, expiration); err != nil {
				return fmt.Errorf("unlock: %w", err)
			}
			fmt.Println(orch.State())
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user-id", "", "account identifier the key was derived for")
	cmd.Flags().StringVar(&password, "password", "", "password the key was derived from")
	cmd.Flags().DurationVar(&expiration, "expiration", 0, "key expiration, defaults to enclave.default_expiration")
	cmd.Flags().BoolVar(&status, "status", false, "report the current lock state without unlocking")
	cmd.Flags().BoolVar(&lock, "lock", false, "lock the enclave, erasing its stored key and metadata")
	return cmd
}
