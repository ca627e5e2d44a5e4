// idanalyzer sandbox server
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/idanalyzer/idanalyzer-go/pkg/models"
	"github.com/idanalyzer/idanalyzer-go/pkg/providers"
	"github.com/idanalyzer/idanalyzer-go/pkg/sandbox"
	"github.com/idanalyzer/idanalyzer-go/pkg/static"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var configPath string

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("github.com/idanalyzer/idanalyzer-go@%s (%s)\n", static.Version, static.Commit)
	},
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the sandbox server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		config, err := models.ReadSandboxConfiguration(configPath)
		if err != nil {
			return err
		}

		level, _ := zerolog.ParseLevel(config.LogLevel)
		log.Logger = log.Logger.Level(level)

		keys, err := providers.NewResolver().WithDefaultProviders().ResolveAll(ctx, config.APIKeys)
		if err != nil {
			return err
		}
		if len(keys) == 0 {
			return fmt.Errorf("no API keys configured")
		}
		log.Info().Int("api_keys", len(keys)).Msg("loaded api keys")

		gin.SetMode(gin.ReleaseMode)
		return sandbox.NewAPI(config, keys).Run()
	},
}

func main() {
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

	rootCmd := &cobra.Command{
		Use:           "idanalyzer-sandbox",
		Long:          `ID Analyzer API sandbox server`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(startCmd)

	startCmd.Flags().StringVarP(&configPath,
		"config", "c", "sandbox.yaml",
		"Path to the configuration file",
	)

	if len(os.Args) == 1 {
		rootCmd.SetArgs([]string{"start"})
	}

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Error().Err(err).Send()
		os.Exit(1)
	}
}
