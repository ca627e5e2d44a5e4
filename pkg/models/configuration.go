package models

import (
	"errors"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const EnvAPIKey = "IDANALYZER_KEY"

// Client configuration
type Configuration struct {
	// API key, literal or read through a credential provider
	APIKey Credential `yaml:"api_key"`
	// Data region ("eu" or empty for US)
	Region string `yaml:"region"`
	// Base endpoint overriding the region hosts, e.g. an on-premise deployment
	Endpoint string `yaml:"endpoint"`
	// Skip TLS certificate verification
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`
	// Return API error envelopes as errors
	ThrowAPIError bool `yaml:"throw_api_error"`
	// Overrides the per-operation timeouts when set
	Timeout time.Duration `yaml:"timeout"`
	// Log level (debug, info, warn, error)
	LogLevel string `yaml:"log_level"`
}

// Load a YAML client configuration file
func ReadConfiguration(path string) (*Configuration, error) {
	c := Configuration{}
	if err := readYAML(path, &c); err != nil {
		return nil, err
	}

	if c.APIKey.IsZero() {
		c.APIKey = Credential{Provider: "env", ID: EnvAPIKey}
	}

	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	return &c, nil
}

// Sandbox server configuration
type SandboxConfiguration struct {
	// IP address and port to listen on
	Listen string `yaml:"listen"`
	// API keys accepted by the sandbox
	APIKeys []Credential `yaml:"api_keys"`
	// Base URL advertised in download and Docupass links
	PublicURL string `yaml:"public_url"`
	// Log level (debug, info, warn, error)
	LogLevel string `yaml:"log_level"`
}

// Load a YAML sandbox configuration file
func ReadSandboxConfiguration(path string) (*SandboxConfiguration, error) {
	c := SandboxConfiguration{}
	if err := readYAML(path, &c); err != nil {
		return nil, err
	}

	if len(c.Listen) == 0 {
		port := os.Getenv("PORT")
		if port == "" {
			port = "3502"
		}
		c.Listen = "127.0.0.1:" + port
	}

	if c.PublicURL == "" {
		c.PublicURL = "http://" + c.Listen
	}

	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	return &c, nil
}

func readYAML(path string, out any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	err = yaml.NewDecoder(f).Decode(out)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
