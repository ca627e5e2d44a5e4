package providers

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"
)

type EnvProvider struct {
	GetEnv func(string) string
}

func NewEnvProvider() *EnvProvider {
	return &EnvProvider{
		GetEnv: os.Getenv,
	}
}

func (p *EnvProvider) Read(ctx context.Context, ids map[string]string) (map[string]string, error) {
	result := make(map[string]string, len(ids))
	for name, env := range ids {
		value := p.GetEnv(env)
		if value == "" {
			log.Warn().Str("credential", name).Str("env", env).Msg("environment variable is empty")
			continue
		}
		result[name] = value
	}
	return result, nil
}
