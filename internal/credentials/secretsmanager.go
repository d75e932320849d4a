package credentials

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/aws/smithy-go"
)

// SecretsManagerAPI is the subset of the Secrets Manager client used here.
type SecretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// SecretsManagerProvider reads secrets from AWS Secrets Manager.
type SecretsManagerProvider struct {
	client SecretsManagerAPI
}

// NewSecretsManagerProvider wraps a Secrets Manager client.
func NewSecretsManagerProvider(client SecretsManagerAPI) *SecretsManagerProvider {
	return &SecretsManagerProvider{client: client}
}

// NewSecretsManagerProviderFromEnv builds a client from the default AWS
// credential chain. An empty region defers to the environment.
func NewSecretsManagerProviderFromEnv(ctx context.Context, region string) (*SecretsManagerProvider, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return NewSecretsManagerProvider(secretsmanager.NewFromConfig(cfg)), nil
}

// GetSecret fetches and decodes the secret string.
func (p *SecretsManagerProvider) GetSecret(ctx context.Context, name string) (Secret, error) {
	out, err := p.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "AccessDeniedException" {
			return nil, fmt.Errorf("%w: %s", ErrAccessDenied, name)
		}
		return nil, fmt.Errorf("get secret %s: %w", name, err)
	}
	if out.SecretString == nil {
		return nil, fmt.Errorf("%w: %s has no string value", ErrParse, name)
	}
	return ParseSecret([]byte(*out.SecretString))
}

var _ Provider = (*SecretsManagerProvider)(nil)
