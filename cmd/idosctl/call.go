package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/idos-network/idos-sdk-go/actions"
	"github.com/idos-network/idos-sdk-go/kwrpc"
)

func newCallCmd() *cobra.Command {
	var namespace, action, paramsCSV, typesCSV string

	cmd := &cobra.Command{
		Use:   "call",
		Short: "run a read-only action and print its decoded rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			types, err := parseParamTypes(splitCSV(typesCSV))
			if err != nil {
				return err
			}
			values, err := parseParamValues(splitCSV(paramsCSV), types)
			if err != nil {
				return err
			}

			rpc, err := kwrpc.NewClient(cfg.Network.RPCURL, kwrpc.WithLogger(logger))
			if err != nil {
				return err
			}
			s, err := buildSigner()
			if err != nil {
				return err
			}

			executor := actions.NewExecutor(rpc, fmt.Sprintf("%d", cfg.Network.ChainID))
			stub := actions.NewDynamicStub(namespace, action, types)

			rows, err := executor.View(cmd.Context(), stub, values, s)
			if err != nil {
				return fmt.Errorf("call: %w", err)
			}
			out, err := json.MarshalIndent(rows, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&namespace, "namespace", "", "action namespace")
	cmd.Flags().StringVar(&action, "action", "", "action name")
	cmd.Flags().StringVar(&paramsCSV, "params", "", "comma-separated positional parameter values")
	cmd.Flags().StringVar(&typesCSV, "types", "", "comma-separated positional parameter types (text, int, bool)")
	_ = cmd.MarkFlagRequired("namespace")
	_ = cmd.MarkFlagRequired("action")
	return cmd
}
