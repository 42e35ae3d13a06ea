package stack

import (
	"github.com/Vidhant007/docker-lambda-aws/pkg/clouds/aws/cfn"
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/jsii-runtime-go"
)

func (s *DockerLambdaStack) output(key, description string, value *string) {
	props := &awscdk.CfnOutputProps{Value: value}
	if description != "" {
		props.Description = jsii.String(description)
	}
	awscdk.NewCfnOutput(s.Stack, jsii.String(key), props)
}

func (s *DockerLambdaStack) declareOutputs() {
	if s.Cache != nil {
		s.output(cfn.OutputsCacheEndpointAddress, "Redis endpoint address", s.Cache.AttrRedisEndpointAddress())
	}
	if s.Bucket != nil {
		s.output(cfn.OutputsBucketName, "Upload documents here to trigger "+s.Config.Preprocessor.Name, s.Bucket.BucketName())
	}
	s.output(cfn.OutputsFunctionUrl1, s.Config.Preprocessor.Name+" function URL", s.PreprocessorUrl.Url())
	s.output(cfn.OutputsFunctionUrl2, s.Config.Embedder.Name+" function URL", s.EmbedderUrl.Url())
	if s.Config.Networked() {
		s.output(cfn.OutputsPreprocessorFunctionName, "", s.Preprocessor.FunctionName())
		s.output(cfn.OutputsEmbedderFunctionName, "", s.Embedder.FunctionName())
	}
}
