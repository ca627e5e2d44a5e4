package main

import (
	"fmt"

	"al.essio.dev/pkg/shellescape"
	"github.com/idanalyzer/idanalyzer-go/pkg/client"
	"github.com/idanalyzer/idanalyzer-go/pkg/models"
	"github.com/spf13/cobra"
)

func addDocupassCommands(root *cobra.Command) {
	docupassCmd := &cobra.Command{
		Use:   "docupass",
		Short: "Manage hosted verification links",
	}

	var opts client.DocupassOptions
	var output string
	var prefill []string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a verification link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "json" && output != "env" {
				return fmt.Errorf("invalid output format: %s", output)
			}
			var err error
			if opts.ContractPrefill, err = keyValues(prefill); err != nil {
				return err
			}

			resp, err := state.client.Docupass.CreateDocupass(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if output == "json" {
				return printResponse(resp)
			}
			if err := resp.Err(); err != nil {
				return err
			}

			var d models.Docupass
			if err := resp.Decode(&d); err != nil {
				return err
			}
			fmt.Printf("export IDANALYZER_DOCUPASS_REFERENCE=%s\n", shellescape.Quote(d.Reference))
			fmt.Printf("export IDANALYZER_DOCUPASS_URL=%s\n", shellescape.Quote(d.URL))
			return nil
		},
	}
	flags := createCmd.Flags()
	flags.StringVar(&opts.Profile, "profile", "", "KYC profile id")
	flags.IntVar(&opts.Mode, "mode", 0, "0 identity verification, 1 document only, 2 face only, 3 contract signing")
	flags.BoolVar(&opts.Reusable, "reusable", false, "Allow the link to be used more than once")
	flags.StringVar(&opts.CustomData, "custom-data", "", "Custom data stored with the transaction")
	flags.StringVar(&opts.Language, "language", "", "Interface language")
	flags.StringVar(&opts.UserPhone, "user-phone", "", "Send the link to this phone number")
	flags.StringVar(&opts.ContractGenerate, "contract", "", "Contract template ids to generate")
	flags.StringVar(&opts.ContractSign, "contract-sign", "", "Contract template id to sign")
	flags.StringVar(&opts.ContractFormat, "contract-format", "", "Contract format: PDF, DOCX or HTML")
	flags.StringArrayVar(&prefill, "contract-prefill", nil, "Contract field name=value")
	flags.StringVar(&opts.ReferenceDocument, "reference-document", "", "Document the user must present")
	flags.StringVar(&opts.ReferenceDocumentBack, "reference-document-back", "", "Back of the reference document")
	flags.StringVar(&opts.ReferenceFace, "reference-face", "", "Face the user must match")
	flags.StringVar(&opts.VerifyName, "verify-name", "", "Expected full name")
	flags.StringVar(&opts.VerifyDOB, "verify-dob", "", "Expected date of birth, YYYY/MM/DD")
	flags.StringVar(&opts.VerifyAge, "verify-age", "", "Accepted age range, e.g. 18-99")
	flags.StringVar(&opts.VerifyAddress, "verify-address", "", "Expected address")
	flags.StringVar(&opts.VerifyPostcode, "verify-postcode", "", "Expected postcode")
	flags.StringVar(&opts.VerifyDocumentNumber, "verify-document-number", "", "Expected document number")
	flags.StringVarP(&output, "output", "o", "json", "Output format: json or env")

	var order, limit, offset int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List verification links",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := state.client.Docupass.ListDocupass(cmd.Context(), order, limit, offset)
			if err != nil {
				return err
			}
			return printResponse(resp)
		},
	}
	listFlags(listCmd, &order, &limit, &offset)

	deleteCmd := &cobra.Command{
		Use:   "delete <reference>",
		Short: "Delete a verification link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := state.client.Docupass.DeleteDocupass(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printResponse(resp)
		},
	}

	docupassCmd.AddCommand(createCmd, listCmd, deleteCmd)
	root.AddCommand(docupassCmd)
}
