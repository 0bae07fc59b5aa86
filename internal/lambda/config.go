package lambda

import (
	"context"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"

	"github.com/christophergentle/calplot/internal/config"
	"github.com/christophergentle/calplot/internal/series"
)

// Parameter names in SSM Parameter Store
const (
	ParamBucket   = "/calplot/storage/bucket"
	ParamTable    = "/calplot/storage/table"
	ParamPrefix   = "/calplot/storage/prefix"
	ParamHow      = "/calplot/plot/how"
	ParamCmap     = "/calplot/plot/cmap"
	ParamTitle    = "/calplot/plot/title"
	ParamDropZero = "/calplot/plot/dropzero"
	ParamDPI      = "/calplot/output/dpi"
	ParamDryRun   = "/calplot/settings/dry_run"
)

// SSMAPI is the part of the SSM client the loader uses
type SSMAPI interface {
	GetParameters(ctx context.Context, params *ssm.GetParametersInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersOutput, error)
}

// Settings is the Lambda configuration
type Settings struct {
	*config.Config
	// DryRun renders without publishing.
	DryRun bool
}

// SSMConfigLoader handles loading configuration from SSM Parameter Store
type SSMConfigLoader struct {
	client SSMAPI
}

// NewSSMConfigLoader creates a new SSM configuration loader
func NewSSMConfigLoader(ctx context.Context) (*SSMConfigLoader, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}

	return NewSSMConfigLoaderWithClient(ssm.NewFromConfig(cfg)), nil
}

// NewSSMConfigLoaderWithClient creates a loader on an existing client
func NewSSMConfigLoaderWithClient(client SSMAPI) *SSMConfigLoader {
	return &SSMConfigLoader{client: client}
}

// LoadConfig loads configuration from SSM Parameter Store
func (s *SSMConfigLoader) LoadConfig(ctx context.Context) (*Settings, error) {
	// Optional parameters are simply absent from the result; only the
	// required ones are checked below.
	parameterNames := []string{
		ParamBucket,
		ParamTable,
		ParamPrefix,
		ParamHow,
		ParamCmap,
		ParamTitle,
		ParamDropZero,
		ParamDPI,
		ParamDryRun,
	}

	result, err := s.client.GetParameters(ctx, &ssm.GetParametersInput{
		Names:          parameterNames,
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}

	params := make(map[string]string)
	for _, param := range result.Parameters {
		if param.Name != nil && param.Value != nil {
			params[*param.Name] = *param.Value
		}
	}

	var missing []string
	for _, name := range []string{ParamBucket, ParamTable} {
		if params[name] == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &config.ConfigError{
			Message: "Missing required parameters",
			Details: missing,
		}
	}

	cfg := config.Default()
	cfg.Storage.Bucket = params[ParamBucket]
	cfg.Storage.Table = params[ParamTable]
	cfg.Storage.Prefix = params[ParamPrefix]

	cfg.Plot.How = params[ParamHow]
	cfg.Plot.Cmap = params[ParamCmap]
	cfg.Plot.Title = params[ParamTitle]
	if v := params[ParamDropZero]; v != "" {
		p, err := series.ParseDropZero(v)
		if err != nil {
			return nil, &config.ConfigError{Message: "Invalid parameter " + ParamDropZero, Details: []string{err.Error()}}
		}
		cfg.Plot.DropZero = config.DropZero{DropZero: p}
	}
	cfg.Output.DPI = parseFloatWithDefault(params[ParamDPI], cfg.Output.DPI)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Settings{
		Config: cfg,
		DryRun: parseBoolWithDefault(params[ParamDryRun], false),
	}, nil
}

// parseFloatWithDefault parses a float with a default value
func parseFloatWithDefault(value string, defaultValue float64) float64 {
	if value == "" {
		return defaultValue
	}

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}

	return parsed
}

// parseBoolWithDefault parses a boolean with a default value
func parseBoolWithDefault(value string, defaultValue bool) bool {
	if value == "" {
		return defaultValue
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return parsed
}
