package stack

import (
	"slices"

	"github.com/Vidhant007/docker-lambda-aws/pkg/config"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsiam"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

const (
	basicExecutionPolicy = "service-role/AWSLambdaBasicExecutionRole"
	vpcAccessPolicy      = "service-role/AWSLambdaVPCAccessExecutionRole"
)

// sharedRoleActions are granted on all resources to the shared role.
var sharedRoleActions = []string{
	"s3:*",
	"dynamodb:*",
	"logs:*",
	"cloudwatch:*",
	"lambda:*",
}

var networkInterfaceActions = []string{
	"ec2:CreateNetworkInterface",
	"ec2:DescribeNetworkInterfaces",
	"ec2:DeleteNetworkInterface",
}

func newLambdaRole(scope constructs.Construct, id, description string, managed ...string) awsiam.Role {
	policies := make([]awsiam.IManagedPolicy, 0, len(managed))
	for _, name := range managed {
		policies = append(policies, awsiam.ManagedPolicy_FromAwsManagedPolicyName(jsii.String(name)))
	}
	return awsiam.NewRole(scope, jsii.String(id), &awsiam.RoleProps{
		AssumedBy:       awsiam.NewServicePrincipal(jsii.String("lambda.amazonaws.com"), nil),
		Description:     jsii.String(description),
		ManagedPolicies: &policies,
	})
}

func (s *DockerLambdaStack) declareRoles() {
	if s.Config.Roles == config.RolesPerFunction {
		managed := []string{basicExecutionPolicy}
		if s.Config.Networked() {
			managed = append(managed, vpcAccessPolicy)
		}
		s.PreprocessorRole = newLambdaRole(s.Stack, "PreprocessorRole", "Execution role for "+s.Config.Preprocessor.Name, managed...)
		s.EmbedderRole = newLambdaRole(s.Stack, "EmbedderRole", "Execution role for "+s.Config.Embedder.Name, managed...)
		return
	}

	role := newLambdaRole(s.Stack, "LambdaExecutionRole", "Shared execution role for the document pipeline", basicExecutionPolicy)
	actions := sharedRoleActions
	if s.Config.Networked() {
		actions = slices.Concat(sharedRoleActions, networkInterfaceActions)
	}
	role.AddToPolicy(awsiam.NewPolicyStatement(&awsiam.PolicyStatementProps{
		Effect:    awsiam.Effect_ALLOW,
		Resources: jsii.Strings("*"),
		Actions:   jsii.Strings(actions...),
	}))
	s.PreprocessorRole = role
	s.EmbedderRole = role
}

// grantScoped adds resource-scoped grants to per-function roles once the
// resources they refer to exist.
func (s *DockerLambdaStack) grantScoped() {
	if s.Config.Roles != config.RolesPerFunction {
		return
	}
	if s.Bucket != nil {
		s.Bucket.GrantReadWrite(s.PreprocessorRole, nil)
		s.Bucket.GrantRead(s.EmbedderRole, nil)
	}
	s.Embedder.GrantInvoke(s.PreprocessorRole)
}
