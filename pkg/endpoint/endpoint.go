package endpoint

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

const (
	EnvRegion = "IDANALYZER_REGION"

	DefaultHost = "https://v2-us1.idanalyzer.com/"
	EUHost      = "https://api2-eu.idanalyzer.com/"
)

// Resolver computes absolute operation URLs. Override takes precedence over
// Region; when Region is empty the IDANALYZER_REGION environment variable is
// read on every resolution.
type Resolver struct {
	Override string
	Region   string
	GetEnv   func(string) string
}

func NewResolver(override, region string) *Resolver {
	return &Resolver{
		Override: override,
		Region:   region,
		GetEnv:   os.Getenv,
	}
}

func (r *Resolver) Resolve(operation string) (string, error) {
	if len(operation) >= 4 && strings.EqualFold(operation[:4], "http") {
		return operation, nil
	}

	base := r.Base()
	u, err := url.JoinPath(base, operation)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %w", base, err)
	}
	return u, nil
}

// Base returns the base URL operations are resolved against.
func (r *Resolver) Base() string {
	if r.Override != "" {
		return r.Override
	}

	region := r.Region
	if region == "" && r.GetEnv != nil {
		region = r.GetEnv(EnvRegion)
	}
	if strings.EqualFold(region, "eu") {
		return EUHost
	}
	return DefaultHost
}
