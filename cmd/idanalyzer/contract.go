package main

import (
	"fmt"
	"os"

	"github.com/idanalyzer/idanalyzer-go/pkg/client"
	"github.com/spf13/cobra"
)

type templateFlags struct {
	client.Template
	contentPath string
}

func (t *templateFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&t.Name, "name", "", "Template name")
	cmd.Flags().StringVar(&t.contentPath, "content-file", "", "HTML file with the template content")
	cmd.Flags().StringVar(&t.Orientation, "orientation", "0", "0 portrait, 1 landscape")
	cmd.Flags().StringVar(&t.Timezone, "timezone", "UTC", "Timezone of dates in the contract")
	cmd.Flags().StringVar(&t.Font, "font", "Open Sans", "Font family")
}

func (t *templateFlags) load() (client.Template, error) {
	if t.contentPath != "" {
		content, err := os.ReadFile(t.contentPath)
		if err != nil {
			return t.Template, fmt.Errorf("failed to read template content: %w", err)
		}
		t.Content = string(content)
	}
	return t.Template, nil
}

func addContractCommands(root *cobra.Command) {
	contractCmd := &cobra.Command{
		Use:   "contract",
		Short: "Manage contract templates",
	}

	var order, limit, offset int
	var templateID string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List contract templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := state.client.Contract.ListTemplate(cmd.Context(), order, limit, offset, templateID)
			if err != nil {
				return err
			}
			return printResponse(resp)
		},
	}
	listFlags(listCmd, &order, &limit, &offset)
	listCmd.Flags().StringVar(&templateID, "template-id", "", "Filter by template id")

	getCmd := &cobra.Command{
		Use:   "get <template-id>",
		Short: "Show a contract template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := state.client.Contract.GetTemplate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printResponse(resp)
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <template-id>",
		Short: "Delete a contract template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := state.client.Contract.DeleteTemplate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printResponse(resp)
		},
	}

	var create templateFlags
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a contract template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := create.load()
			if err != nil {
				return err
			}
			resp, err := state.client.Contract.CreateTemplate(cmd.Context(), t)
			if err != nil {
				return err
			}
			return printResponse(resp)
		},
	}
	create.register(createCmd)

	var update templateFlags
	updateCmd := &cobra.Command{
		Use:   "update <template-id>",
		Short: "Replace a contract template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := update.load()
			if err != nil {
				return err
			}
			resp, err := state.client.Contract.UpdateTemplate(cmd.Context(), args[0], t)
			if err != nil {
				return err
			}
			return printResponse(resp)
		},
	}
	update.register(updateCmd)

	var format, transactionID string
	var fill []string
	generateCmd := &cobra.Command{
		Use:   "generate <template-id>",
		Short: "Generate a document from a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fillData, err := keyValues(fill)
			if err != nil {
				return err
			}
			resp, err := state.client.Contract.Generate(cmd.Context(), args[0], format, transactionID, fillData)
			if err != nil {
				return err
			}
			return printResponse(resp)
		},
	}
	generateCmd.Flags().StringVar(&format, "format", "PDF", "Output format: PDF, DOCX or HTML")
	generateCmd.Flags().StringVar(&transactionID, "transaction", "", "Fill the template with this transaction")
	generateCmd.Flags().StringArrayVarP(&fill, "fill", "f", nil, "Template field name=value")

	contractCmd.AddCommand(listCmd, getCmd, createCmd, updateCmd, deleteCmd, generateCmd)
	root.AddCommand(contractCmd)
}
