package providers

import (
	"context"
	"maps"
	"slices"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"
)

// GetParameters accepts at most 10 names per call
const ssmBatchSize = 10

// Parameters of the AWS Systems Manager Parameter Store, decrypted
type SSMProvider struct {
	Client SSMClient
}

type SSMClient interface {
	GetParameters(ctx context.Context, params *ssm.GetParametersInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersOutput, error)
}

func NewSSMProvider() *SSMProvider {
	return &SSMProvider{}
}

func (p *SSMProvider) Read(ctx context.Context, ids map[string]string) (map[string]string, error) {
	if err := p.configure(ctx); err != nil {
		return nil, err
	}

	// several credentials may share a parameter
	names := map[string][]string{}
	for name, param := range ids {
		names[param] = append(names[param], name)
	}
	params := slices.Sorted(maps.Keys(names))

	result := map[string]string{}
	for batch := range slices.Chunk(params, ssmBatchSize) {
		log.Debug().Strs("parameters", batch).Msg("get ssm parameters")
		resp, err := p.Client.GetParameters(ctx, &ssm.GetParametersInput{
			Names:          batch,
			WithDecryption: aws.Bool(true),
		})
		if err != nil {
			log.Warn().Err(err).Msg("failed to get ssm parameters")
			continue
		}
		if len(resp.InvalidParameters) > 0 {
			log.Warn().Strs("parameters", resp.InvalidParameters).Msg("invalid ssm parameters")
		}
		for _, param := range resp.Parameters {
			if param.Name == nil || param.Value == nil {
				continue
			}
			for _, name := range names[*param.Name] {
				result[name] = *param.Value
			}
		}
	}

	return result, nil
}

func (p *SSMProvider) configure(ctx context.Context) error {
	if p.Client != nil {
		return nil
	}
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return err
	}
	p.Client = ssm.NewFromConfig(cfg)
	return nil
}
