// Package providers reads credentials such as API keys from the
// environment, local files, AWS SSM Parameter Store or Kubernetes secrets.
package providers

import (
	"context"
	"fmt"

	"github.com/idanalyzer/idanalyzer-go/pkg/models"
	"github.com/rs/zerolog/log"
)

// A CredentialProvider reads a batch of secrets. ids maps a caller chosen
// name to the provider specific id; missing secrets are left out of the
// result.
type CredentialProvider interface {
	Read(ctx context.Context, ids map[string]string) (map[string]string, error)
}

type Resolver struct {
	providers map[string]CredentialProvider
}

func NewResolver() *Resolver {
	return &Resolver{
		providers: map[string]CredentialProvider{},
	}
}

func (r *Resolver) WithDefaultProviders() *Resolver {
	r.Add("env", NewEnvProvider())
	r.Add("string", NewStringProvider())
	r.Add("file", NewFileProvider())
	r.Add("aws.ssm", NewSSMProvider())
	r.Add("kubernetes.secret", NewKubernetesProvider())
	return r
}

func (r *Resolver) Add(id string, provider CredentialProvider) {
	r.providers[id] = provider
}

// Resolve reads every credential, one provider call per provider.
// Credentials with an unknown provider or no value are missing from the
// result.
func (r *Resolver) Resolve(ctx context.Context, credentials map[string]models.Credential) (map[string]string, error) {
	result := map[string]string{}
	batches := map[string]map[string]string{}

	for name, c := range credentials {
		if r.providers[c.Provider] == nil {
			log.Warn().
				Str("provider", c.Provider).
				Str("credential", name).
				Msg("unknown credential provider")
			continue
		}
		if batches[c.Provider] == nil {
			batches[c.Provider] = map[string]string{}
		}
		batches[c.Provider][name] = c.ID
	}

	for provider, ids := range batches {
		values, err := r.providers[provider].Read(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", provider, err)
		}
		for name, value := range values {
			if value != "" {
				result[name] = value
			}
		}
	}

	return result, nil
}

// ResolveOne reads a single credential and fails when it has no value.
func (r *Resolver) ResolveOne(ctx context.Context, c models.Credential) (string, error) {
	values, err := r.Resolve(ctx, map[string]models.Credential{"credential": c})
	if err != nil {
		return "", err
	}
	value, ok := values["credential"]
	if !ok {
		return "", fmt.Errorf("credential %s:%s could not be resolved", c.Provider, c.ID)
	}
	return value, nil
}

// ResolveAll reads a list of credentials, dropping the ones without a
// value.
func (r *Resolver) ResolveAll(ctx context.Context, credentials []models.Credential) ([]string, error) {
	named := make(map[string]models.Credential, len(credentials))
	for i, c := range credentials {
		named[fmt.Sprint(i)] = c
	}
	values, err := r.Resolve(ctx, named)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(values))
	for i := range credentials {
		if v, ok := values[fmt.Sprint(i)]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}
