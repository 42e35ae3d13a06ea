package aws

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go/ptr"
)

type ErrNoSuchBucket = types.NoSuchBucket

type S3Lister interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

type S3Emptier interface {
	S3Lister
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

type S3Putter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// EmptyBucket deletes all objects in the bucket and returns how many were deleted.
// A missing bucket is treated as empty.
func EmptyBucket(ctx context.Context, client S3Emptier, bucket string) (int, error) {
	deleted := 0
	paginator := s3.NewListObjectsV2Paginator(client, &s3.ListObjectsV2Input{Bucket: ptr.String(bucket)})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			var noSuchBucket *ErrNoSuchBucket
			if errors.As(err, &noSuchBucket) {
				return deleted, nil
			}
			return deleted, fmt.Errorf("failed to list objects in %s: %w", bucket, err)
		}
		if len(page.Contents) == 0 {
			continue
		}

		objects := make([]types.ObjectIdentifier, 0, len(page.Contents))
		for _, obj := range page.Contents {
			objects = append(objects, types.ObjectIdentifier{Key: obj.Key})
		}
		out, err := client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: ptr.String(bucket),
			Delete: &types.Delete{Objects: objects, Quiet: ptr.Bool(true)},
		})
		if err != nil {
			return deleted, fmt.Errorf("failed to delete objects in %s: %w", bucket, err)
		}
		if len(out.Errors) > 0 {
			e := out.Errors[0]
			return deleted, fmt.Errorf("failed to delete %d object(s) in %s: %s: %s", len(out.Errors), bucket, ptr.ToString(e.Key), ptr.ToString(e.Message))
		}
		deleted += len(objects)
	}
	return deleted, nil
}

func PutObject(ctx context.Context, client S3Putter, bucket, key string, body io.Reader) error {
	_, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: ptr.String(bucket),
		Key:    ptr.String(key),
		Body:   body,
	})
	if err != nil {
		return fmt.Errorf("failed to upload s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}
