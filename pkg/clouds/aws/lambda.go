package aws

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/aws/smithy-go/ptr"
)

type LambdaInvoker interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

type InvokeResult struct {
	StatusCode    int32
	Payload       []byte
	FunctionError string // set when the function returned an error
	Log           string // last 4 KB of the execution log
}

// Invoke calls the function synchronously, or asynchronously when async is set.
func Invoke(ctx context.Context, client LambdaInvoker, name string, payload []byte, async bool) (*InvokeResult, error) {
	input := &lambda.InvokeInput{
		FunctionName:   ptr.String(name),
		Payload:        payload,
		InvocationType: types.InvocationTypeRequestResponse,
		LogType:        types.LogTypeTail,
	}
	if async {
		input.InvocationType = types.InvocationTypeEvent
		input.LogType = types.LogTypeNone
	}

	out, err := client.Invoke(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke %s: %w", name, err)
	}

	result := &InvokeResult{
		StatusCode:    out.StatusCode,
		Payload:       out.Payload,
		FunctionError: ptr.ToString(out.FunctionError),
	}
	if out.LogResult != nil {
		log, err := base64.StdEncoding.DecodeString(*out.LogResult)
		if err != nil {
			return result, fmt.Errorf("failed to decode log of %s: %w", name, err)
		}
		result.Log = string(log)
	}
	return result, nil
}
