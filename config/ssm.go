package config

import (
	"context"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"

	"github.com/solocreator/planner/errs"
)

// LoadParameters overlays every parameter stored under SSM_PARAMETER_PATH onto cfg.
// Values already present in the environment win.
func LoadParameters(ctx context.Context, cfg map[string]string) error {
	prefix := GetString(cfg, "SSM_PARAMETER_PATH", "")
	if prefix == "" {
		return nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return errs.NewConfigError("aws", err)
	}
	return MergeParameters(ctx, ssm.NewFromConfig(awsCfg), prefix, cfg)
}

// MergeParameters copies parameters under prefix into cfg keyed by their upper-cased leaf name.
func MergeParameters(ctx context.Context, client ssm.GetParametersByPathAPIClient, prefix string, cfg map[string]string) error {
	paginator := ssm.NewGetParametersByPathPaginator(client, &ssm.GetParametersByPathInput{
		Path:           aws.String(prefix),
		Recursive:      aws.Bool(true),
		WithDecryption: aws.Bool(true),
	})

	merged := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return errs.NewConfigError("ssm "+prefix, err)
		}
		for _, p := range page.Parameters {
			key := strings.ToUpper(path.Base(aws.ToString(p.Name)))
			if _, exists := cfg[key]; exists {
				continue
			}
			cfg[key] = aws.ToString(p.Value)
			merged++
		}
	}

	log.Info().Str("path", prefix).Int("count", merged).Msg("Loaded parameters from SSM")
	return nil
}
