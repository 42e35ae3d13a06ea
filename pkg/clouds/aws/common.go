package aws

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials/processcreds"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

type Region string

func (r Region) String() string {
	return string(r)
}

type Aws struct {
	AccountID string
	Region    Region
}

func (a *Aws) LoadConfig(ctx context.Context) (aws.Config, error) {
	cfg, err := LoadDefaultConfig(ctx, a.Region)
	if err != nil {
		return cfg, err
	}
	if cfg.Region == "" {
		return cfg, errors.New("missing AWS region: set AWS_REGION or edit your AWS profile at ~/.aws/config")
	}
	a.Region = Region(cfg.Region)
	if a.AccountID == "" {
		if output, err := sts.NewFromConfig(cfg).GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{}); err == nil {
			a.AccountID = *output.Account
		}
	}
	return cfg, nil
}

func LoadDefaultConfig(ctx context.Context, region Region) (aws.Config, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(string(region)))
	if err != nil {
		return cfg, err
	}

	// Fall back to whatever credentials the aws CLI is using, eg. SSO sessions.
	cliProvider := processcreds.NewProviderCommand(
		processcreds.NewCommandBuilderFunc(
			func(ctx context.Context) (*exec.Cmd, error) {
				return exec.CommandContext(ctx, "aws", "configure", "export-credentials", "--format", "process"), nil
			},
		),
	)

	cfg.Credentials = newChainProvider(
		cfg.Credentials,
		cliProvider,
	)
	return cfg, nil
}

func newChainProvider(providers ...aws.CredentialsProvider) aws.CredentialsProvider {
	return aws.NewCredentialsCache(
		aws.CredentialsProviderFunc(func(ctx context.Context) (aws.Credentials, error) {
			var errs []error
			for _, p := range providers {
				if p == nil {
					continue
				}
				creds, err := p.Retrieve(ctx)
				if err == nil {
					return creds, nil
				}
				errs = append(errs, err)
			}
			return aws.Credentials{}, errors.Join(errs...)
		}),
	)
}

// GetAccountID returns the account of an ARN, or "" if it is malformed.
func GetAccountID(arn string) string {
	parts := strings.Split(arn, ":")
	if len(parts) < 6 || parts[0] != "arn" {
		return ""
	}
	return parts[4]
}

func ConsoleURL(region Region, service string) string {
	return fmt.Sprintf("https://%s.console.aws.amazon.com/%s/home?region=%s", region, service, region)
}
