package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/idos-network/idos-sdk-go/actions"
	"github.com/idos-network/idos-sdk-go/kwrpc"
)

func newExecuteCmd() *cobra.Command {
	var namespace, action, paramsCSV, typesCSV, sync string
	var withNonceLock, withAudit, withNotify, withWatch bool

	cmd := &cobra.Command{
		Use:   "execute",
		Short: "sign and broadcast a write action, printing its transaction hash",
		RunE: func(cmd *cobra.Command, args []string) error {
			types, err := parseParamTypes(splitCSV(typesCSV))
			if err != nil {
				return err
			}
			values, err := parseParamValues(splitCSV(paramsCSV), types)
			if err != nil {
				return err
			}

			var broadcastSync kwrpc.BroadcastSync
			switch strings.ToLower(sync) {
			case "", "commit":
				broadcastSync = kwrpc.WaitForCommit
			case "fire-and-forget":
				broadcastSync = kwrpc.FireAndForget
			default:
				return fmt.Errorf("execute: unknown --sync %q (valid: commit, fire-and-forget)", sync)
			}

			rpc, err := kwrpc.NewClient(cfg.Network.RPCURL, kwrpc.WithLogger(logger))
			if err != nil {
				return err
			}
			s, err := buildSigner()
			if err != nil {
				return err
			}
			if s == nil {
				return fmt.Errorf("execute: a signer is required, set signer.private_key or signer.encrypted_key_path")
			}

			collaborators, err := buildExecutorCollaborators(cmd.Context(), withNonceLock, withAudit, withNotify, withWatch)
			if err != nil {
				return fmt.Errorf("execute: %w", err)
			}
			defer collaborators.close()

			executor := actions.NewExecutor(rpc, fmt.Sprintf("%d", cfg.Network.ChainID), collaborators.opts...)
			stub := actions.NewDynamicStub(namespace, action, types)

			txHash, err := executor.Execute(cmd.Context(), stub, values, s, broadcastSync)
			if err != nil {
				return fmt.Errorf("execute: %w", err)
			}
			fmt.Println(txHash)
			return nil
		},
	}

	cmd.Flags().StringVar(&namespace, "namespace", "", "action namespace")
	cmd.Flags().StringVar(&action, "action", "", "action name")
	cmd.Flags().StringVar(&paramsCSV, "params", "", "comma-separated positional parameter values")
	cmd.Flags().StringVar(&typesCSV, "types", "", "comma-separated positional parameter types (text, int, bool)")
	cmd.Flags().StringVar(&sync, "sync", "commit", "broadcast mode: commit or fire-and-forget")
	cmd.Flags().BoolVar(&withNonceLock, "nonce-lock", false, "serialize broadcasts for this signer through the Redis nonce lock")
	cmd.Flags().BoolVar(&withAudit, "audit", false, "log the broadcast outcome to the Postgres audit trail")
	cmd.Flags().BoolVar(&withNotify, "notify", false, "dispatch failure/reauth notifications to the configured channels")
	cmd.Flags().BoolVar(&withWatch, "watch", false, "await commit over the block-commit websocket feed instead of the gateway's server-side wait")
	_ = cmd.MarkFlagRequired("namespace")
	_ = cmd.MarkFlagRequired("action")
	return cmd
}
