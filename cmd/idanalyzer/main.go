// idanalyzer cli
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/idanalyzer/idanalyzer-go/pkg/client"
	"github.com/idanalyzer/idanalyzer-go/pkg/endpoint"
	"github.com/idanalyzer/idanalyzer-go/pkg/models"
	"github.com/idanalyzer/idanalyzer-go/pkg/providers"
	"github.com/idanalyzer/idanalyzer-go/pkg/static"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type State struct {
	apiKey     string
	region     string
	endpoint   string
	configPath string
	logLevel   string
	insecure   bool
	throw      bool

	client *client.Client
}

var state State

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("github.com/idanalyzer/idanalyzer-go@%s (%s)\n", static.Version, static.Commit)
	},
}

func main() {
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.InfoLevel)
	rootCmd := &cobra.Command{
		Use:          "idanalyzer",
		Long:         `ID Analyzer identity verification cli`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd == versionCmd {
				return nil
			}
			return state.prepare(cmd)
		},
	}
	rootCmd.AddCommand(versionCmd)
	addScanCommands(rootCmd)
	addTransactionCommands(rootCmd)
	addContractCommands(rootCmd)
	addDocupassCommands(rootCmd)

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&state.apiKey,
		"api-key", "k", os.Getenv(models.EnvAPIKey),
		"API key (env: IDANALYZER_KEY)")
	flags.StringVar(&state.region,
		"region", os.Getenv(endpoint.EnvRegion),
		"API region, us or eu (env: IDANALYZER_REGION)")
	flags.StringVar(&state.endpoint,
		"endpoint", os.Getenv("IDANALYZER_ENDPOINT"),
		"Override the API base URL (env: IDANALYZER_ENDPOINT)")
	flags.StringVarP(&state.configPath,
		"config", "c", os.Getenv("IDANALYZER_CONFIG"),
		"Path to a configuration file (env: IDANALYZER_CONFIG)")
	flags.StringVar(&state.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flags.BoolVar(&state.insecure, "insecure", false, "Skip TLS certificate verification")
	flags.BoolVar(&state.throw, "throw", false, "Fail on API errors without printing the response")

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// prepare builds the client from the configuration file, environment and
// flags, in increasing order of precedence.
func (s *State) prepare(cmd *cobra.Command) error {
	ctx := cmd.Context()
	flags := cmd.Flags()
	opts := []client.Option{}
	logLevel := s.logLevel

	if s.configPath != "" {
		config, err := models.ReadConfiguration(s.configPath)
		if err != nil {
			return fmt.Errorf("failed to read configuration: %w", err)
		}
		opts = append(opts, client.WithConfiguration(config))
		if !flags.Changed("log-level") {
			logLevel = config.LogLevel
		}

		if !flags.Changed("api-key") {
			key, err := providers.NewResolver().WithDefaultProviders().ResolveOne(ctx, config.APIKey)
			if err != nil {
				return fmt.Errorf("failed to resolve API key: %w", err)
			}
			s.apiKey = key
		}
	}

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level: %s", logLevel)
	}
	log.Logger = log.Logger.Level(level)

	if s.region != "" {
		opts = append(opts, client.WithRegion(s.region))
	}
	if s.endpoint != "" {
		opts = append(opts, client.WithEndpoint(s.endpoint))
	}
	if flags.Changed("insecure") {
		opts = append(opts, client.WithInsecureSkipVerify(s.insecure))
	}
	if flags.Changed("throw") {
		opts = append(opts, client.WithThrowAPIError(s.throw))
	}

	s.client, err = client.New(s.apiKey, opts...)
	return err
}

// printResponse writes the response body and fails when it carries an API error.
func printResponse(resp *client.Response) error {
	if err := models.JSONEncoder(os.Stdout).Encode(resp.Body); err != nil {
		return err
	}
	return resp.Err()
}

// keyValues parses repeated key=value flags.
func keyValues(pairs []string) (map[string]any, error) {
	out := map[string]any{}
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found {
			return nil, fmt.Errorf("invalid key=value pair: %s", pair)
		}
		out[key] = value
	}
	return out, nil
}
