package main

import (
	"fmt"
	"os"

	"github.com/idanalyzer/idanalyzer-go/pkg/client"
	"github.com/idanalyzer/idanalyzer-go/pkg/policy"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func filterFlags(cmd *cobra.Command, f *client.TransactionFilter) {
	cmd.Flags().Int64Var(&f.CreatedAtMin, "created-after", 0, "Only transactions created after this unix time")
	cmd.Flags().Int64Var(&f.CreatedAtMax, "created-before", 0, "Only transactions created before this unix time")
	cmd.Flags().StringVar(&f.CustomData, "custom-data", "", "Filter by custom data")
	cmd.Flags().StringVar(&f.Decision, "decision", "", "Filter by decision: accept, review or reject")
	cmd.Flags().StringVar(&f.Docupass, "docupass", "", "Filter by Docupass reference")
	cmd.Flags().StringVar(&f.ProfileID, "profile-id", "", "Filter by KYC profile id")
}

func listFlags(cmd *cobra.Command, order, limit, offset *int) {
	cmd.Flags().IntVar(order, "order", -1, "Sort order: -1 newest first, 1 oldest first")
	cmd.Flags().IntVar(limit, "limit", 10, "Number of items, 1 to 100")
	cmd.Flags().IntVar(offset, "offset", 0, "Number of items to skip")
}

func addTransactionCommands(root *cobra.Command) {
	transactionCmd := &cobra.Command{
		Use:   "transaction",
		Short: "Manage transactions",
	}

	getCmd := &cobra.Command{
		Use:   "get <transaction-id>",
		Short: "Show a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := state.client.Transaction.GetTransaction(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printResponse(resp)
		},
	}

	filter := client.DefaultTransactionFilter()
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := state.client.Transaction.ListTransaction(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return printResponse(resp)
		},
	}
	listFlags(listCmd, &filter.Order, &filter.Limit, &filter.Offset)
	filterFlags(listCmd, &filter)

	updateCmd := &cobra.Command{
		Use:   "update <transaction-id> <accept|review|reject>",
		Short: "Change the decision of a transaction",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := state.client.Transaction.UpdateTransaction(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printResponse(resp)
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <transaction-id>",
		Short: "Delete a transaction and its files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := state.client.Transaction.DeleteTransaction(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printResponse(resp)
		},
	}

	imageCmd := &cobra.Command{
		Use:   "image <image-token> <destination>",
		Short: "Download a transaction image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := state.client.Transaction.SaveImage(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			log.Info().Str("destination", args[1]).Msg("image saved")
			return nil
		},
	}

	fileCmd := &cobra.Command{
		Use:   "file <file-name> <destination>",
		Short: "Download a transaction file such as a contract or audit report",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := state.client.Transaction.SaveFile(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			log.Info().Str("destination", args[1]).Msg("file saved")
			return nil
		},
	}

	var export client.ExportOptions
	exportCmd := &cobra.Command{
		Use:   "export <destination>",
		Short: "Export transactions to a zip archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := state.client.Transaction.ExportTransaction(cmd.Context(), args[0], export)
			if err != nil {
				return err
			}
			if err := resp.Err(); err != nil {
				return err
			}
			log.Info().Str("destination", args[0]).Msg("export saved")
			return nil
		},
	}
	exportCmd.Flags().StringVar(&export.ExportType, "type", "csv", "Export format: csv or json")
	exportCmd.Flags().BoolVar(&export.IgnoreUnrecognized, "ignore-unrecognized", false, "Leave out unrecognized documents")
	exportCmd.Flags().BoolVar(&export.IgnoreDuplicate, "ignore-duplicate", false, "Leave out duplicate documents")
	exportCmd.Flags().StringSliceVar(&export.TransactionIDs, "id", nil, "Export only these transaction ids")
	filterFlags(exportCmd, &export.Filter)

	var policyPath string
	decideCmd := &cobra.Command{
		Use:   "decide <transaction-id>",
		Short: "Decide a transaction with a local Rego policy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(policyPath)
			if err != nil {
				return fmt.Errorf("failed to read policy: %w", err)
			}
			engine := policy.NewEngine(string(src))
			if err := engine.Compile(cmd.Context()); err != nil {
				return err
			}

			resp, err := state.client.Transaction.Decide(cmd.Context(), args[0], engine)
			if err != nil {
				return err
			}
			return printResponse(resp)
		},
	}
	decideCmd.Flags().StringVarP(&policyPath, "policy", "p", "policy.rego", "Path to the Rego policy")

	transactionCmd.AddCommand(getCmd, listCmd, updateCmd, deleteCmd, imageCmd, fileCmd, exportCmd, decideCmd)
	root.AddCommand(transactionCmd)
}
