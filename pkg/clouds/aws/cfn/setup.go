package cfn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Vidhant007/docker-lambda-aws/pkg/clouds/aws"
	"github.com/Vidhant007/docker-lambda-aws/pkg/term"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	cfnTypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/aws/smithy-go/ptr"
)

// MaxTemplateBodySize is the largest template CloudFormation accepts inline.
const MaxTemplateBodySize = 51200

const stackTimeout = time.Minute * 15 // cache clusters and VPC functions are slow to create

type CloudFormationAPI interface {
	cloudformation.DescribeStacksAPIClient
	CreateStack(ctx context.Context, params *cloudformation.CreateStackInput, optFns ...func(*cloudformation.Options)) (*cloudformation.CreateStackOutput, error)
	UpdateStack(ctx context.Context, params *cloudformation.UpdateStackInput, optFns ...func(*cloudformation.Options)) (*cloudformation.UpdateStackOutput, error)
	DeleteStack(ctx context.Context, params *cloudformation.DeleteStackInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DeleteStackOutput, error)
	UpdateTerminationProtection(ctx context.Context, params *cloudformation.UpdateTerminationProtectionInput, optFns ...func(*cloudformation.Options)) (*cloudformation.UpdateTerminationProtectionOutput, error)
}

type Output struct {
	Key         string
	Value       string
	Description string
}

type AwsCfn struct {
	aws.Aws
	TerminationProtection bool

	BucketName               string
	CacheEndpointAddress     string
	PreprocessorUrl          string
	EmbedderUrl              string
	PreprocessorFunctionName string
	EmbedderFunctionName     string
	Outputs                  []Output

	stackName string
	cfn       CloudFormationAPI
	s3        aws.S3Emptier
}

func New(stack string, region aws.Region) *AwsCfn {
	if stack == "" {
		panic("stack must be set")
	}
	return &AwsCfn{
		stackName: stack,
		Aws:       aws.Aws{Region: region},
	}
}

func (a *AwsCfn) StackName() string {
	return a.stackName
}

func (a *AwsCfn) cloudFormationClient(ctx context.Context) (CloudFormationAPI, error) {
	if a.cfn != nil {
		return a.cfn, nil
	}
	cfg, err := a.LoadConfig(ctx)
	if err != nil {
		return nil, err
	}
	a.cfn = cloudformation.NewFromConfig(cfg)
	return a.cfn, nil
}

func (a *AwsCfn) s3Client(ctx context.Context) (aws.S3Emptier, error) {
	if a.s3 != nil {
		return a.s3, nil
	}
	cfg, err := a.LoadConfig(ctx)
	if err != nil {
		return nil, err
	}
	a.s3 = s3.NewFromConfig(cfg)
	return a.s3, nil
}

func (a *AwsCfn) consoleError(action string, err error) error {
	return fmt.Errorf("failed to %s CloudFormation stack: check the CloudFormation console (%s) for the %q stack to learn more: %w", action, aws.ConsoleURL(a.Region, "cloudformation"), a.stackName, err)
}

func (a *AwsCfn) updateStackAndWait(ctx context.Context, templateBody string) error {
	cfn, err := a.cloudFormationClient(ctx)
	if err != nil {
		return err
	}

	uso, err := cfn.UpdateStack(ctx, &cloudformation.UpdateStackInput{
		Capabilities: []cfnTypes.Capability{cfnTypes.CapabilityCapabilityIam, cfnTypes.CapabilityCapabilityNamedIam},
		StackName:    ptr.String(a.stackName),
		TemplateBody: ptr.String(templateBody),
	})
	if err != nil {
		// Go SDK doesn't have --no-fail-on-empty-changeset; ignore ValidationError: No updates are to be performed.
		var apiError smithy.APIError
		if errors.As(err, &apiError) && apiError.ErrorCode() == "ValidationError" && apiError.ErrorMessage() == "No updates are to be performed." {
			term.Info("Stack", a.stackName, "is up to date")
			return a.FillOutputs(ctx)
		}
		return err // might call createStackAndWait depending on the error
	}

	term.Infof("Waiting for CloudFormation stack %s to be updated in %s...", a.stackName, a.Region)
	dso, err := cloudformation.NewStackUpdateCompleteWaiter(cfn, fastUpdate).WaitForOutput(ctx, &cloudformation.DescribeStacksInput{
		StackName: uso.StackId,
	}, stackTimeout)
	if err != nil {
		return a.consoleError("update", err)
	}
	return a.fillWithOutputs(dso)
}

func (a *AwsCfn) createStackAndWait(ctx context.Context, templateBody string) error {
	cfn, err := a.cloudFormationClient(ctx)
	if err != nil {
		return err
	}

	_, err = cfn.CreateStack(ctx, &cloudformation.CreateStackInput{
		Capabilities:                []cfnTypes.Capability{cfnTypes.CapabilityCapabilityIam, cfnTypes.CapabilityCapabilityNamedIam},
		EnableTerminationProtection: ptr.Bool(a.TerminationProtection),
		OnFailure:                   cfnTypes.OnFailureDelete,
		StackName:                   ptr.String(a.stackName),
		TemplateBody:                ptr.String(templateBody),
	})
	if err != nil {
		// Ignore AlreadyExistsException; return all other errors
		var alreadyExists *cfnTypes.AlreadyExistsException
		if !errors.As(err, &alreadyExists) {
			return err
		}
	}

	term.Infof("Waiting for CloudFormation stack %s to be created in %s...", a.stackName, a.Region)
	dso, err := cloudformation.NewStackCreateCompleteWaiter(cfn, fastCreate).WaitForOutput(ctx, &cloudformation.DescribeStacksInput{
		StackName: ptr.String(a.stackName),
	}, stackTimeout)
	if err != nil {
		return a.consoleError("create", err)
	}
	return a.fillWithOutputs(dso)
}

// SetUp creates or updates the stack from a synthesized template and fills the outputs.
func (a *AwsCfn) SetUp(ctx context.Context, templateBody []byte) error {
	if len(templateBody) > MaxTemplateBodySize {
		return fmt.Errorf("template is %d bytes, over the %d byte limit for direct deployment: use `cdk deploy`", len(templateBody), MaxTemplateBodySize)
	}
	return a.upsertStackAndWait(ctx, string(templateBody))
}

func (a *AwsCfn) upsertStackAndWait(ctx context.Context, templateBody string) error {
	if err := a.updateStackAndWait(ctx, templateBody); err != nil {
		// Check if the stack doesn't exist; if so, create it, otherwise return the error
		err = annotateCfnError(err)
		if snf := new(ErrStackNotFound); !errors.As(err, &snf) {
			return err
		}
		return a.createStackAndWait(ctx, templateBody)
	}
	// UpdateStack leaves termination protection as it was at creation
	return a.setTerminationProtection(ctx, a.TerminationProtection)
}

func (a *AwsCfn) setTerminationProtection(ctx context.Context, enable bool) error {
	cfn, err := a.cloudFormationClient(ctx)
	if err != nil {
		return err
	}
	if _, err := cfn.UpdateTerminationProtection(ctx, &cloudformation.UpdateTerminationProtectionInput{
		StackName:                   ptr.String(a.stackName),
		EnableTerminationProtection: ptr.Bool(enable),
	}); err != nil {
		return fmt.Errorf("failed to set termination protection of CloudFormation stack %s to %t: %w", a.stackName, enable, err)
	}
	return nil
}

type ErrStackNotFound = cfnTypes.StackNotFoundException

func annotateCfnError(err error) error {
	// Check if the stack doesn't exist (ValidationError); if so, return a nice error; workaround for https://github.com/aws/aws-sdk-go-v2/issues/2296
	var ae smithy.APIError
	if errors.As(err, &ae) && ae.ErrorCode() == "ValidationError" && strings.HasSuffix(ae.ErrorMessage(), " does not exist") {
		err = &ErrStackNotFound{Message: ptr.String(ae.ErrorMessage())}
	}
	return err
}

func (a *AwsCfn) FillOutputs(ctx context.Context) error {
	cfn, err := a.cloudFormationClient(ctx)
	if err != nil {
		return err
	}

	dso, err := cfn.DescribeStacks(ctx, &cloudformation.DescribeStacksInput{
		StackName: ptr.String(a.stackName),
	})
	if err != nil {
		return annotateCfnError(err)
	}
	return a.fillWithOutputs(dso)
}

func (a *AwsCfn) fillWithOutputs(dso *cloudformation.DescribeStacksOutput) error {
	if len(dso.Stacks) != 1 {
		return fmt.Errorf("expected 1 CloudFormation stack, got %d", len(dso.Stacks))
	}
	stack := dso.Stacks[0]
	if a.AccountID == "" {
		a.AccountID = aws.GetAccountID(ptr.ToString(stack.StackId))
	}

	a.Outputs = a.Outputs[:0]
	for _, output := range stack.Outputs {
		key, value := ptr.ToString(output.OutputKey), ptr.ToString(output.OutputValue)
		a.Outputs = append(a.Outputs, Output{Key: key, Value: value, Description: ptr.ToString(output.Description)})
		switch key {
		case OutputsBucketName:
			a.BucketName = value
		case OutputsCacheEndpointAddress:
			a.CacheEndpointAddress = value
		case OutputsFunctionUrl1:
			a.PreprocessorUrl = value
		case OutputsFunctionUrl2:
			a.EmbedderUrl = value
		case OutputsPreprocessorFunctionName:
			a.PreprocessorFunctionName = value
		case OutputsEmbedderFunctionName:
			a.EmbedderFunctionName = value
		}
	}
	slog.Debug("stack outputs", "stack", a.stackName, "count", len(a.Outputs))
	return nil
}

// TearDown empties the bucket and deletes the stack. A missing stack is not an error.
func (a *AwsCfn) TearDown(ctx context.Context) error {
	if err := a.FillOutputs(ctx); err != nil {
		if snf := new(ErrStackNotFound); errors.As(err, &snf) {
			term.Info("Stack", a.stackName, "does not exist")
			return nil
		}
		return err
	}

	if a.BucketName != "" {
		s3Client, err := a.s3Client(ctx)
		if err != nil {
			return err
		}
		n, err := aws.EmptyBucket(ctx, s3Client, a.BucketName)
		if err != nil {
			return err
		}
		term.Infof("Deleted %d object(s) from bucket %s", n, a.BucketName)
	}

	cfn, err := a.cloudFormationClient(ctx)
	if err != nil {
		return err
	}

	// Disable termination protection before deleting the stack
	if err := a.setTerminationProtection(ctx, false); err != nil {
		term.Warn(err)
	}
	if _, err := cfn.DeleteStack(ctx, &cloudformation.DeleteStackInput{
		StackName: ptr.String(a.stackName),
	}); err != nil {
		return err
	}

	term.Infof("Waiting for CloudFormation stack %s to be deleted in %s...", a.stackName, a.Region)
	if err := cloudformation.NewStackDeleteCompleteWaiter(cfn, fastDelete).Wait(ctx, &cloudformation.DescribeStacksInput{
		StackName: ptr.String(a.stackName),
	}, stackTimeout); err != nil {
		return a.consoleError("delete", err)
	}
	return nil
}
