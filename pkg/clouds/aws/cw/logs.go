package cw

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"
	"time"

	"github.com/Vidhant007/docker-lambda-aws/pkg/clouds/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
	"github.com/aws/smithy-go/ptr"
)

// Function ARN		arn:aws:lambda:us-east-1:123456789012:function:Chunk-Embedder
// LogGroup name	/aws/lambda/Chunk-Embedder
// LogGroup ARN		arn:aws:logs:us-east-1:123456789012:log-group:/aws/lambda/Chunk-Embedder:*
// LogStream		2024/01/02/[$LATEST]2cba912d5eb14ffd926f6992b054f3bf

type LogEvent = types.LiveTailSessionLogEvent

type FilterLogEventsAPIClient = cloudwatchlogs.FilterLogEventsAPIClient

type StartLiveTailAPI interface {
	StartLiveTail(ctx context.Context, params *cloudwatchlogs.StartLiveTailInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.StartLiveTailOutput, error)
}

type LogsClient interface {
	FilterLogEventsAPIClient
	StartLiveTailAPI
}

func LambdaLogGroupName(function string) string {
	return "/aws/lambda/" + function
}

// LogGroupARN returns the log group identifier accepted by StartLiveTail.
func LogGroupARN(region aws.Region, accountID, logGroupName string) string {
	partition := "aws"
	if strings.HasPrefix(string(region), "cn-") {
		partition = "aws-cn"
	}
	return fmt.Sprintf("arn:%s:logs:%s:%s:log-group:%s", partition, region, accountID, logGroupName)
}

func getLogGroupIdentifier(arnOrName string) string {
	return strings.TrimSuffix(arnOrName, ":*")
}

func NewCloudWatchLogsClient(ctx context.Context, region aws.Region) (*cloudwatchlogs.Client, error) {
	cfg, err := aws.LoadDefaultConfig(ctx, region)
	if err != nil {
		return nil, err
	}
	return cloudwatchlogs.NewFromConfig(cfg), nil
}

// QueryLogGroup pages through the events of one log group between start and end, oldest first.
// A zero end means now.
func QueryLogGroup(ctx context.Context, cw FilterLogEventsAPIClient, logGroup string, start, end time.Time) iter.Seq2[[]LogEvent, error] {
	logGroupIdentifier := getLogGroupIdentifier(logGroup)
	if end.IsZero() {
		end = time.Now()
	}
	params := &cloudwatchlogs.FilterLogEventsInput{
		LogGroupIdentifier: &logGroupIdentifier,
		StartTime:          ptr.Int64(start.UnixMilli()),   // rounds down
		EndTime:            ptr.Int64(end.UnixMilli() + 1), // round up
	}
	return func(yield func([]LogEvent, error) bool) {
		for {
			fleo, err := cw.FilterLogEvents(ctx, params)
			if err != nil {
				var notFound *types.ResourceNotFoundException
				if errors.As(err, &notFound) {
					return // functions that never ran have no log group yet
				}
				yield(nil, err)
				return
			}
			events := make([]LogEvent, len(fleo.Events))
			for i, event := range fleo.Events {
				events[i] = LogEvent{
					IngestionTime:      event.IngestionTime,
					LogGroupIdentifier: &logGroupIdentifier,
					LogStreamName:      event.LogStreamName,
					Message:            event.Message,
					Timestamp:          event.Timestamp,
				}
			}
			if !yield(events, nil) {
				return
			}
			if fleo.NextToken == nil {
				return
			}
			params.NextToken = fleo.NextToken
		}
	}
}

// QueryLogGroups merges the events of several log groups by timestamp. A positive limit keeps the newest events.
func QueryLogGroups(ctx context.Context, cw FilterLogEventsAPIClient, start, end time.Time, limit int, logGroups ...string) iter.Seq2[LogEvent, error] {
	var merged iter.Seq2[LogEvent, error]
	for _, logGroup := range logGroups {
		merged = MergeLogEvents(merged, Flatten(QueryLogGroup(ctx, cw, logGroup, start, end)))
	}
	if merged == nil {
		return func(func(LogEvent, error) bool) {}
	}
	return TakeLastN(merged, limit)
}

// TailLogGroups starts a live tail session on up to 10 log groups. Identifiers must be ARNs.
func TailLogGroups(ctx context.Context, cw StartLiveTailAPI, logGroupARNs ...string) (iter.Seq2[[]LogEvent, error], error) {
	if len(logGroupARNs) == 0 {
		return nil, errors.New("at least one log group ARN is required")
	}
	identifiers := make([]string, len(logGroupARNs))
	for i, arn := range logGroupARNs {
		identifiers[i] = getLogGroupIdentifier(arn)
	}

	slto, err := cw.StartLiveTail(ctx, &cloudwatchlogs.StartLiveTailInput{
		LogGroupIdentifiers: identifiers,
	})
	if err != nil {
		return nil, err
	}

	stream := slto.GetStream()
	return func(yield func([]LogEvent, error) bool) {
		defer stream.Close()
		for {
			select {
			case e := <-stream.Events():
				if err := stream.Err(); err != nil {
					yield(nil, err)
					return
				}
				events, err := getLogEvents(e)
				if err != nil {
					yield(nil, err)
					return
				}
				if !yield(events, nil) {
					return
				}
			case <-ctx.Done():
				yield(nil, ctx.Err())
				return
			}
		}
	}, nil
}

func getLogEvents(e types.StartLiveTailResponseStream) ([]LogEvent, error) {
	switch ev := e.(type) {
	case *types.StartLiveTailResponseStreamMemberSessionStart:
		return nil, nil // ignore start message
	case *types.StartLiveTailResponseStreamMemberSessionUpdate:
		return ev.Value.SessionResults, nil
	case nil:
		return nil, io.EOF
	default:
		return nil, fmt.Errorf("unexpected event: %T", ev)
	}
}

// Flatten converts an iterator of batches into an iterator of individual items.
func Flatten[T any](seq iter.Seq2[[]T, error]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for items, err := range seq {
			for _, item := range items {
				if !yield(item, nil) {
					return
				}
			}
			if err != nil {
				var zero T
				if !yield(zero, err) {
					return
				}
			}
		}
	}
}
