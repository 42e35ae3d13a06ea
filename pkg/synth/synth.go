package synth

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/Vidhant007/docker-lambda-aws/pkg/config"
	"github.com/Vidhant007/docker-lambda-aws/pkg/stack"
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/jsii-runtime-go"
)

type Result struct {
	StackName   string
	Template    []byte // CloudFormation JSON
	AssemblyDir string
	// Bootstrapless is set when the template can be deployed without CDK assets.
	Bootstrapless bool
}

func NewApp(outdir string) awscdk.App {
	props := &awscdk.AppProps{AnalyticsReporting: jsii.Bool(false)}
	if outdir != "" {
		props.Outdir = jsii.String(outdir)
	}
	return awscdk.NewApp(props)
}

// StackProps maps the config onto CDK stack properties.
func StackProps(cfg config.Config) awscdk.StackProps {
	props := awscdk.StackProps{
		StackName: jsii.String(cfg.Stack),
	}
	if cfg.Account != "" || cfg.Region != "" {
		props.Env = &awscdk.Environment{}
		if cfg.Account != "" {
			props.Env.Account = jsii.String(cfg.Account)
		}
		if cfg.Region != "" {
			props.Env.Region = jsii.String(cfg.Region)
		}
	}
	if !cfg.HasImageAssets() {
		props.Synthesizer = awscdk.NewBootstraplessSynthesizer(&awscdk.BootstraplessSynthesizerProps{})
	}
	return props
}

// Declare adds the stack to app.
func Declare(app awscdk.App, cfg config.Config) *stack.DockerLambdaStack {
	return stack.NewDockerLambdaStack(app, cfg.Stack, &stack.DockerLambdaStackProps{
		StackProps: StackProps(cfg),
		Config:     cfg,
	})
}

// Synth declares and synthesizes the stack into outdir and returns its template.
func Synth(cfg config.Config, outdir string) (result *Result, err error) {
	// jsii reports construct errors as panics
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to synthesize %s: %v", cfg.Stack, r)
		}
	}()

	app := NewApp(outdir)
	s := Declare(app, cfg)
	assembly := app.Synth(nil)
	artifact := assembly.GetStackArtifact(s.ArtifactId())

	template, err := os.ReadFile(*artifact.TemplateFullPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read template: %w", err)
	}
	slog.Debug("synthesized stack", "stack", *s.StackName(), "dir", *assembly.Directory())

	return &Result{
		StackName:     *s.StackName(),
		Template:      template,
		AssemblyDir:   *assembly.Directory(),
		Bootstrapless: !cfg.HasImageAssets(),
	}, nil
}
