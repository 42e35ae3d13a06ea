package stack

import (
	"github.com/Vidhant007/docker-lambda-aws/pkg/config"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/jsii-runtime-go"
)

func (s *DockerLambdaStack) privateSubnetType() awsec2.SubnetType {
	// private subnets without a NAT gateway must be isolated
	if s.Config.NatGateways == 0 {
		return awsec2.SubnetType_PRIVATE_ISOLATED
	}
	return awsec2.SubnetType_PRIVATE_WITH_EGRESS
}

func (s *DockerLambdaStack) privateSubnets() *awsec2.SubnetSelection {
	return &awsec2.SubnetSelection{SubnetType: s.privateSubnetType()}
}

func (s *DockerLambdaStack) declareNetwork() {
	cfg := s.Config

	s.Vpc = awsec2.NewVpc(s.Stack, jsii.String("Vpc"), &awsec2.VpcProps{
		MaxAzs:                       jsii.Number(cfg.MaxAzs),
		NatGateways:                  jsii.Number(cfg.NatGateways),
		RestrictDefaultSecurityGroup: jsii.Bool(false), // avoids a custom resource with a code asset
		SubnetConfiguration: &[]*awsec2.SubnetConfiguration{
			{
				Name:       jsii.String("public"),
				SubnetType: awsec2.SubnetType_PUBLIC,
				CidrMask:   jsii.Number(24),
			},
			{
				Name:       jsii.String("private"),
				SubnetType: s.privateSubnetType(),
				CidrMask:   jsii.Number(24),
			},
		},
	})

	s.CacheSecurityGroup = awsec2.NewSecurityGroup(s.Stack, jsii.String("CacheSecurityGroup"), &awsec2.SecurityGroupProps{
		Vpc:              s.Vpc,
		Description:      jsii.String("Redis cache cluster"),
		AllowAllOutbound: jsii.Bool(true),
	})
	s.LambdaSecurityGroup = awsec2.NewSecurityGroup(s.Stack, jsii.String("LambdaSecurityGroup"), &awsec2.SecurityGroupProps{
		Vpc:              s.Vpc,
		Description:      jsii.String("Document-Preprocessor and Chunk-Embedder functions"),
		AllowAllOutbound: jsii.Bool(true),
	})

	port := awsec2.Port_Tcp(jsii.Number(cfg.Cache.Port))
	switch cfg.CacheIngress {
	case config.IngressOpen:
		s.CacheSecurityGroup.AddIngressRule(awsec2.Peer_AnyIpv4(), port, jsii.String("Redis from anywhere"), jsii.Bool(false))
		s.LambdaSecurityGroup.AddIngressRule(awsec2.Peer_SecurityGroupId(s.CacheSecurityGroup.SecurityGroupId(), nil), port, jsii.String("Redis from the cache"), jsii.Bool(false))
	default:
		// Peer_SecurityGroupId keeps the rule inline on the cache security group
		s.CacheSecurityGroup.AddIngressRule(awsec2.Peer_SecurityGroupId(s.LambdaSecurityGroup.SecurityGroupId(), nil), port, jsii.String("Redis from the functions"), jsii.Bool(false))
	}
}
