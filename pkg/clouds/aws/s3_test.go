package aws

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go/ptr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockS3 struct {
	ListFn   func(ctx context.Context, params *s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error)
	DeleteFn func(ctx context.Context, params *s3.DeleteObjectsInput) (*s3.DeleteObjectsOutput, error)
	PutFn    func(ctx context.Context, params *s3.PutObjectInput) (*s3.PutObjectOutput, error)
}

func (m *mockS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	return m.ListFn(ctx, in)
}
func (m *mockS3) DeleteObjects(ctx context.Context, in *s3.DeleteObjectsInput, _ ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	return m.DeleteFn(ctx, in)
}
func (m *mockS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	return m.PutFn(ctx, in)
}

func objects(keys ...string) []types.Object {
	out := make([]types.Object, len(keys))
	for i, key := range keys {
		out[i] = types.Object{Key: ptr.String(key)}
	}
	return out
}

func TestEmptyBucket(t *testing.T) {
	pages := map[string]*s3.ListObjectsV2Output{
		"": {Contents: objects("report.pdf", "filtered_chunks.json"), IsTruncated: ptr.Bool(true), NextContinuationToken: ptr.String("page2")},
		"page2": {Contents: objects("notes.pdf")},
	}
	var deletedKeys []string
	mock := &mockS3{
		ListFn: func(ctx context.Context, in *s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error) {
			assert.Equal(t, "docs", *in.Bucket)
			return pages[ptr.ToString(in.ContinuationToken)], nil
		},
		DeleteFn: func(ctx context.Context, in *s3.DeleteObjectsInput) (*s3.DeleteObjectsOutput, error) {
			for _, obj := range in.Delete.Objects {
				deletedKeys = append(deletedKeys, *obj.Key)
			}
			return &s3.DeleteObjectsOutput{}, nil
		},
	}

	n, err := EmptyBucket(context.Background(), mock, "docs")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"report.pdf", "filtered_chunks.json", "notes.pdf"}, deletedKeys)
}

func TestEmptyBucketMissing(t *testing.T) {
	mock := &mockS3{
		ListFn: func(ctx context.Context, in *s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error) {
			return nil, &types.NoSuchBucket{Message: ptr.String("The specified bucket does not exist")}
		},
	}
	n, err := EmptyBucket(context.Background(), mock, "gone")
	assert.NoError(t, err)
	assert.Zero(t, n)
}

func TestEmptyBucketErrors(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		mock := &mockS3{
			ListFn: func(ctx context.Context, in *s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error) {
				return nil, errors.New("access denied")
			},
		}
		_, err := EmptyBucket(context.Background(), mock, "docs")
		assert.ErrorContains(t, err, "failed to list objects in docs: access denied")
	})

	t.Run("partial delete", func(t *testing.T) {
		mock := &mockS3{
			ListFn: func(ctx context.Context, in *s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error) {
				return &s3.ListObjectsV2Output{Contents: objects("a.pdf")}, nil
			},
			DeleteFn: func(ctx context.Context, in *s3.DeleteObjectsInput) (*s3.DeleteObjectsOutput, error) {
				return &s3.DeleteObjectsOutput{Errors: []types.Error{{Key: ptr.String("a.pdf"), Message: ptr.String("Access Denied")}}}, nil
			},
		}
		_, err := EmptyBucket(context.Background(), mock, "docs")
		assert.EqualError(t, err, "failed to delete 1 object(s) in docs: a.pdf: Access Denied")
	})
}

func TestPutObject(t *testing.T) {
	var got string
	mock := &mockS3{
		PutFn: func(ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
			assert.Equal(t, "docs", *in.Bucket)
			assert.Equal(t, "uploads/report.pdf", *in.Key)
			b, err := io.ReadAll(in.Body)
			got = string(b)
			return &s3.PutObjectOutput{}, err
		},
	}
	require.NoError(t, PutObject(context.Background(), mock, "docs", "uploads/report.pdf", strings.NewReader("%PDF-1.7")))
	assert.Equal(t, "%PDF-1.7", got)

	mock.PutFn = func(ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return nil, errors.New("throttled")
	}
	assert.EqualError(t, PutObject(context.Background(), mock, "docs", "a.pdf", strings.NewReader("")), "failed to upload s3://docs/a.pdf: throttled")
}
