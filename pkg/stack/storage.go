package stack

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3notifications"
	"github.com/aws/jsii-runtime-go"
)

func (s *DockerLambdaStack) declareBucket() {
	// Objects are removed by `dla destroy` before the stack is deleted.
	s.Bucket = awss3.NewBucket(s.Stack, jsii.String("DocumentBucket"), &awss3.BucketProps{
		RemovalPolicy:     awscdk.RemovalPolicy_DESTROY,
		BlockPublicAccess: awss3.BlockPublicAccess_BLOCK_ALL(),
		Encryption:        awss3.BucketEncryption_S3_MANAGED,
	})
}

func (s *DockerLambdaStack) notifyPreprocessor() {
	var filters []*awss3.NotificationKeyFilter
	if s.Config.UploadSuffix != "" {
		filters = append(filters, &awss3.NotificationKeyFilter{Suffix: jsii.String(s.Config.UploadSuffix)})
	}
	s.Bucket.AddEventNotification(awss3.EventType_OBJECT_CREATED, awss3notifications.NewLambdaDestination(s.Preprocessor), filters...)
}
