package main

import (
	"fmt"
	"os"

	"github.com/idanalyzer/idanalyzer-go/pkg/profile"
	"github.com/spf13/cobra"
)

type profileFlags struct {
	id         string
	file       string
	customData string
}

func (p *profileFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.id, "profile", profile.SecurityNone, "KYC profile id or security preset")
	cmd.Flags().StringVar(&p.file, "profile-file", "", "YAML or JSON file with profile overrides")
	cmd.Flags().StringVar(&p.customData, "custom-data", "", "Custom data stored with the transaction")
}

func (p *profileFlags) load() (*profile.Profile, error) {
	prof := profile.New(p.id)
	if p.file != "" {
		data, err := os.ReadFile(p.file)
		if err != nil {
			return nil, fmt.Errorf("failed to read profile file: %w", err)
		}
		if err := prof.LoadYAML(data); err != nil {
			return nil, err
		}
	}
	return prof, nil
}

type faceFlags struct {
	photo string
	video string
}

func (f *faceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.photo, "face", "", "Selfie photo (file, URL or cache reference)")
	cmd.Flags().StringVar(&f.video, "face-video", "", "Selfie video (file or URL), ignored when --face is set")
}

func addScanCommands(root *cobra.Command) {
	var (
		prof            profileFlags
		face            faceFlags
		back            string
		ip              string
		restrictCountry string
		restrictState   string
		restrictType    string
		contract        string
		contractFormat  string
		cache           bool
	)

	scanCmd := &cobra.Command{
		Use:   "scan <document-front>",
		Short: "Scan a document and verify the holder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := prof.load()
			if err != nil {
				return err
			}
			scanner := state.client.Scanner
			if err := scanner.SetProfile(p); err != nil {
				return err
			}
			scanner.SetCustomData(prof.customData)
			scanner.SetUserIP(ip)
			scanner.RestrictCountry(restrictCountry)
			scanner.RestrictState(restrictState)
			scanner.RestrictType(restrictType)
			scanner.SetContractOptions(contract, contractFormat, nil)

			resp, err := scanner.Scan(cmd.Context(), args[0], back, face.photo, face.video)
			if err != nil {
				return err
			}
			return printResponse(resp)
		},
	}
	prof.register(scanCmd)
	face.register(scanCmd)
	scanCmd.Flags().StringVar(&back, "back", "", "Back of the document")
	scanCmd.Flags().StringVar(&ip, "ip", "", "User IP address")
	scanCmd.Flags().StringVar(&restrictCountry, "restrict-country", "", "Accepted issuing countries, e.g. US,CA")
	scanCmd.Flags().StringVar(&restrictState, "restrict-state", "", "Accepted issuing states, e.g. CA,TX")
	scanCmd.Flags().StringVar(&restrictType, "restrict-type", "", "Accepted document types: P, D or I")
	scanCmd.Flags().StringVar(&contract, "contract", "", "Contract template ids to generate")
	scanCmd.Flags().StringVar(&contractFormat, "contract-format", "PDF", "Contract format: PDF, DOCX or HTML")

	quickScanCmd := &cobra.Command{
		Use:   "quickscan <document-front>",
		Short: "Read a document without verification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := state.client.Scanner.QuickScan(cmd.Context(), args[0], back, cache)
			if err != nil {
				return err
			}
			return printResponse(resp)
		},
	}
	quickScanCmd.Flags().StringVar(&back, "back", "", "Back of the document")
	quickScanCmd.Flags().BoolVar(&cache, "cache", false, "Cache the images for 24 hours and return references")

	faceCmd := &cobra.Command{
		Use:   "face <reference>",
		Short: "Compare a selfie against a reference face",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := prof.load()
			if err != nil {
				return err
			}
			biometric := state.client.Biometric
			if err := biometric.SetProfile(p); err != nil {
				return err
			}
			biometric.SetCustomData(prof.customData)

			resp, err := biometric.VerifyFace(cmd.Context(), args[0], face.photo, face.video)
			if err != nil {
				return err
			}
			return printResponse(resp)
		},
	}
	prof.register(faceCmd)
	face.register(faceCmd)

	livenessCmd := &cobra.Command{
		Use:   "liveness",
		Short: "Check that a selfie shows a live person",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := prof.load()
			if err != nil {
				return err
			}
			biometric := state.client.Biometric
			if err := biometric.SetProfile(p); err != nil {
				return err
			}
			biometric.SetCustomData(prof.customData)

			resp, err := biometric.VerifyLiveness(cmd.Context(), face.photo, face.video)
			if err != nil {
				return err
			}
			return printResponse(resp)
		},
	}
	prof.register(livenessCmd)
	face.register(livenessCmd)

	root.AddCommand(scanCmd, quickScanCmd, faceCmd, livenessCmd)
}
