package aws

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/aws/smithy-go/ptr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockInvoker struct {
	InvokeFn func(ctx context.Context, params *lambda.InvokeInput) (*lambda.InvokeOutput, error)
}

func (m *mockInvoker) Invoke(ctx context.Context, in *lambda.InvokeInput, _ ...func(*lambda.Options)) (*lambda.InvokeOutput, error) {
	return m.InvokeFn(ctx, in)
}

func TestInvoke(t *testing.T) {
	mock := &mockInvoker{
		InvokeFn: func(ctx context.Context, in *lambda.InvokeInput) (*lambda.InvokeOutput, error) {
			assert.Equal(t, "Chunk-Embedder", *in.FunctionName)
			assert.Equal(t, types.InvocationTypeRequestResponse, in.InvocationType)
			assert.Equal(t, types.LogTypeTail, in.LogType)
			assert.JSONEq(t, `{"bucket":"docs","key":"filtered_chunks.json"}`, string(in.Payload))
			return &lambda.InvokeOutput{
				StatusCode: 200,
				Payload:    []byte(`{"statusCode":200}`),
				LogResult:  ptr.String(base64.StdEncoding.EncodeToString([]byte("START RequestId: 1\nEND RequestId: 1\n"))),
			}, nil
		},
	}

	result, err := Invoke(context.Background(), mock, "Chunk-Embedder", []byte(`{"bucket":"docs","key":"filtered_chunks.json"}`), false)
	require.NoError(t, err)
	assert.Equal(t, int32(200), result.StatusCode)
	assert.Equal(t, `{"statusCode":200}`, string(result.Payload))
	assert.Empty(t, result.FunctionError)
	assert.Equal(t, "START RequestId: 1\nEND RequestId: 1\n", result.Log)
}

func TestInvokeAsync(t *testing.T) {
	mock := &mockInvoker{
		InvokeFn: func(ctx context.Context, in *lambda.InvokeInput) (*lambda.InvokeOutput, error) {
			assert.Equal(t, types.InvocationTypeEvent, in.InvocationType)
			assert.Equal(t, types.LogTypeNone, in.LogType)
			return &lambda.InvokeOutput{StatusCode: 202}, nil
		},
	}
	result, err := Invoke(context.Background(), mock, "Chunk-Embedder", nil, true)
	require.NoError(t, err)
	assert.Equal(t, int32(202), result.StatusCode)
	assert.Empty(t, result.Log)
}

func TestInvokeErrors(t *testing.T) {
	mock := &mockInvoker{
		InvokeFn: func(ctx context.Context, in *lambda.InvokeInput) (*lambda.InvokeOutput, error) {
			return &lambda.InvokeOutput{StatusCode: 200, FunctionError: ptr.String("Unhandled")}, nil
		},
	}
	result, err := Invoke(context.Background(), mock, "Document-Preprocessor", []byte(`{}`), false)
	require.NoError(t, err)
	assert.Equal(t, "Unhandled", result.FunctionError)

	mock.InvokeFn = func(ctx context.Context, in *lambda.InvokeInput) (*lambda.InvokeOutput, error) {
		return nil, &types.ResourceNotFoundException{Message: ptr.String("Function not found")}
	}
	_, err = Invoke(context.Background(), mock, "Document-Preprocessor", nil, false)
	var notFound *types.ResourceNotFoundException
	assert.True(t, errors.As(err, &notFound))
}
