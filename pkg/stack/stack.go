package stack

import (
	"github.com/Vidhant007/docker-lambda-aws/pkg"
	"github.com/Vidhant007/docker-lambda-aws/pkg/config"
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awselasticache"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsiam"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslambda"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

type DockerLambdaStackProps struct {
	awscdk.StackProps
	Config config.Config
}

// DockerLambdaStack holds the declared resources. Network, cache and bucket
// handles are nil for the minimal revision.
type DockerLambdaStack struct {
	awscdk.Stack
	Config config.Config

	Vpc                 awsec2.Vpc
	CacheSecurityGroup  awsec2.SecurityGroup
	LambdaSecurityGroup awsec2.SecurityGroup
	CacheSubnetGroup    awselasticache.CfnSubnetGroup
	Cache               awselasticache.CfnCacheCluster

	PreprocessorRole awsiam.Role
	EmbedderRole     awsiam.Role // same as PreprocessorRole when roles are shared

	Bucket awss3.Bucket

	Preprocessor    awslambda.DockerImageFunction
	Embedder        awslambda.DockerImageFunction
	PreprocessorUrl awslambda.FunctionUrl
	EmbedderUrl     awslambda.FunctionUrl
}

// NewDockerLambdaStack declares the stack. The config is expected to be
// validated by the caller.
func NewDockerLambdaStack(scope constructs.Construct, id string, props *DockerLambdaStackProps) *DockerLambdaStack {
	var sprops awscdk.StackProps
	cfg := config.Default()
	if props != nil {
		sprops = props.StackProps
		cfg = props.Config
	}
	if sprops.Description == nil && cfg.Description != "" {
		sprops.Description = jsii.String(cfg.Description)
	}
	if sprops.TerminationProtection == nil {
		sprops.TerminationProtection = jsii.Bool(cfg.TerminationProtection)
	}

	s := &DockerLambdaStack{
		Stack:  awscdk.NewStack(scope, &id, &sprops),
		Config: cfg,
	}

	awscdk.Tags_Of(s.Stack).Add(jsii.String("project"), jsii.String(pkg.ProjectName), nil)
	for key, value := range cfg.Tags {
		awscdk.Tags_Of(s.Stack).Add(jsii.String(key), jsii.String(value), nil)
	}

	if cfg.Networked() {
		s.declareNetwork()
		s.declareCache()
	}
	s.declareRoles()
	if cfg.Networked() {
		s.declareBucket()
	}
	s.declareFunctions()
	s.grantScoped()
	s.declareUrls()
	s.declareOutputs()

	return s
}

func (s *DockerLambdaStack) Functions() []awslambda.DockerImageFunction {
	return []awslambda.DockerImageFunction{s.Preprocessor, s.Embedder}
}
