package stack

import (
	"github.com/aws/aws-cdk-go/awscdk/v2/awselasticache"
	"github.com/aws/jsii-runtime-go"
)

func (s *DockerLambdaStack) declareCache() {
	cfg := s.Config.Cache

	s.CacheSubnetGroup = awselasticache.NewCfnSubnetGroup(s.Stack, jsii.String("CacheSubnetGroup"), &awselasticache.CfnSubnetGroupProps{
		Description: jsii.String("Private subnets for " + cfg.ClusterName),
		SubnetIds:   s.Vpc.SelectSubnets(s.privateSubnets()).SubnetIds,
	})

	props := &awselasticache.CfnCacheClusterProps{
		ClusterName:          jsii.String(cfg.ClusterName),
		CacheNodeType:        jsii.String(cfg.NodeType),
		Engine:               jsii.String(cfg.Engine),
		NumCacheNodes:        jsii.Number(cfg.NumNodes),
		Port:                 jsii.Number(cfg.Port),
		CacheSubnetGroupName: s.CacheSubnetGroup.Ref(),
		VpcSecurityGroupIds:  &[]*string{s.CacheSecurityGroup.SecurityGroupId()},
	}
	if cfg.TransitEncryption {
		props.TransitEncryptionEnabled = jsii.Bool(true)
	}
	s.Cache = awselasticache.NewCfnCacheCluster(s.Stack, jsii.String("RedisCluster"), props)
}
