package stack

import (
	"fmt"
	"strconv"

	"github.com/Vidhant007/docker-lambda-aws/pkg/config"
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsecr"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsecrassets"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsiam"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslambda"
	"github.com/aws/jsii-runtime-go"
)

// Environment variables injected into the functions.
const (
	EnvRedisHost            = "REDIS_HOST"
	EnvRedisPort            = "REDIS_PORT"
	EnvChunkBucketName      = "CHUNK_BUCKET_NAME"
	EnvEmbedderFunctionName = "EMBEDDER_FUNCTION_NAME"
)

func architecture(arch string) awslambda.Architecture {
	if arch == config.ArchitectureArm64 {
		return awslambda.Architecture_ARM_64()
	}
	return awslambda.Architecture_X86_64()
}

func (s *DockerLambdaStack) imageCode(id string, f config.Function) awslambda.DockerImageCode {
	if f.ImageURI == "" {
		platform := awsecrassets.Platform_LINUX_AMD64()
		if f.Architecture == config.ArchitectureArm64 {
			platform = awsecrassets.Platform_LINUX_ARM64()
		}
		return awslambda.DockerImageCode_FromImageAsset(jsii.String(f.ImageDir), &awslambda.AssetImageCodeProps{
			Platform: platform,
		})
	}

	ref, err := config.ParseImageURI(f.ImageURI)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", f.Name, err)) // config.Validate rejects these
	}
	repo := awsecr.Repository_FromRepositoryAttributes(s.Stack, jsii.String(id+"Repository"), &awsecr.RepositoryAttributes{
		RepositoryArn:  jsii.String(ref.RepositoryArn()),
		RepositoryName: jsii.String(ref.Repository),
	})
	return awslambda.DockerImageCode_FromEcr(repo, &awslambda.EcrImageCodeProps{
		TagOrDigest: jsii.String(ref.TagOrDigest),
	})
}

func (s *DockerLambdaStack) newFunction(id string, f config.Function, role awsiam.IRole, env map[string]*string) awslambda.DockerImageFunction {
	props := &awslambda.DockerImageFunctionProps{
		FunctionName: jsii.String(f.Name),
		Code:         s.imageCode(id, f),
		MemorySize:   jsii.Number(f.MemorySize),
		Timeout:      awscdk.Duration_Seconds(jsii.Number(f.Timeout)),
		Architecture: architecture(f.Architecture),
		Role:         role,
	}
	if len(env) > 0 {
		props.Environment = &env
	}
	if s.Vpc != nil {
		props.Vpc = s.Vpc
		props.VpcSubnets = s.privateSubnets()
		props.SecurityGroups = &[]awsec2.ISecurityGroup{s.LambdaSecurityGroup}
	}
	return awslambda.NewDockerImageFunction(s.Stack, jsii.String(id), props)
}

func (s *DockerLambdaStack) declareFunctions() {
	cfg := s.Config

	var preEnv, embEnv map[string]*string
	if cfg.Networked() {
		preEnv = map[string]*string{
			EnvChunkBucketName:      s.Bucket.BucketName(),
			EnvEmbedderFunctionName: jsii.String(cfg.Embedder.Name),
		}
		embEnv = map[string]*string{
			EnvRedisHost: s.Cache.AttrRedisEndpointAddress(),
			EnvRedisPort: jsii.String(strconv.Itoa(cfg.Cache.Port)),
		}
	}

	s.Preprocessor = s.newFunction("DockerFunc1", cfg.Preprocessor, s.PreprocessorRole, preEnv)
	if s.Bucket != nil {
		s.notifyPreprocessor()
	}
	s.Embedder = s.newFunction("DockerFunc2", cfg.Embedder, s.EmbedderRole, embEnv)
}

func functionUrlOptions(f config.Function) *awslambda.FunctionUrlOptions {
	opts := &awslambda.FunctionUrlOptions{AuthType: awslambda.FunctionUrlAuthType_NONE}
	if f.URLAuthType == config.AuthTypeAwsIam {
		opts.AuthType = awslambda.FunctionUrlAuthType_AWS_IAM
	}
	if f.OpenCors {
		opts.Cors = &awslambda.FunctionUrlCorsOptions{
			AllowedMethods: &[]awslambda.HttpMethod{awslambda.HttpMethod_ALL},
			AllowedHeaders: jsii.Strings("*"),
			AllowedOrigins: jsii.Strings("*"),
		}
	}
	return opts
}

func (s *DockerLambdaStack) declareUrls() {
	s.PreprocessorUrl = s.Preprocessor.AddFunctionUrl(functionUrlOptions(s.Config.Preprocessor))
	s.EmbedderUrl = s.Embedder.AddFunctionUrl(functionUrlOptions(s.Config.Embedder))
}
