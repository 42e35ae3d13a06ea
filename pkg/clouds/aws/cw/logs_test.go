package cw

import (
	"context"
	"errors"
	"iter"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
	"github.com/aws/smithy-go/ptr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLambdaLogGroupName(t *testing.T) {
	assert.Equal(t, "/aws/lambda/Chunk-Embedder", LambdaLogGroupName("Chunk-Embedder"))
}

func TestLogGroupARN(t *testing.T) {
	assert.Equal(t, "arn:aws:logs:us-east-1:123456789012:log-group:/aws/lambda/Document-Preprocessor",
		LogGroupARN("us-east-1", "123456789012", "/aws/lambda/Document-Preprocessor"))
	assert.Equal(t, "arn:aws-cn:logs:cn-north-1:123456789012:log-group:/aws/lambda/Document-Preprocessor",
		LogGroupARN("cn-north-1", "123456789012", "/aws/lambda/Document-Preprocessor"))
}

func TestLogGroupIdentifier(t *testing.T) {
	arn := "arn:aws:logs:us-east-1:123456789012:log-group:/aws/lambda/Chunk-Embedder:*"
	expected := "arn:aws:logs:us-east-1:123456789012:log-group:/aws/lambda/Chunk-Embedder"
	assert.Equal(t, expected, getLogGroupIdentifier(arn))
	assert.Equal(t, expected, getLogGroupIdentifier(expected))
}

type mockFilterer struct {
	pages map[string][]*cloudwatchlogs.FilterLogEventsOutput // by log group
	err   error
}

func (m *mockFilterer) FilterLogEvents(ctx context.Context, in *cloudwatchlogs.FilterLogEventsInput, _ ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.FilterLogEventsOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	pages, ok := m.pages[*in.LogGroupIdentifier]
	if !ok {
		return nil, &types.ResourceNotFoundException{Message: ptr.String("The specified log group does not exist.")}
	}
	i := 0
	if in.NextToken != nil {
		i = 1
	}
	return pages[i], nil
}

func filtered(msgAndTs ...any) []types.FilteredLogEvent {
	var events []types.FilteredLogEvent
	for i := 0; i < len(msgAndTs); i += 2 {
		events = append(events, types.FilteredLogEvent{
			Message:   ptr.String(msgAndTs[i].(string)),
			Timestamp: ptr.Int64(int64(msgAndTs[i+1].(int))),
		})
	}
	return events
}

func messages(t *testing.T, seq iter.Seq2[LogEvent, error]) []string {
	t.Helper()
	var msgs []string
	for evt, err := range seq {
		require.NoError(t, err)
		msgs = append(msgs, *evt.Message)
	}
	return msgs
}

func TestQueryLogGroupPages(t *testing.T) {
	mock := &mockFilterer{pages: map[string][]*cloudwatchlogs.FilterLogEventsOutput{
		"/aws/lambda/Document-Preprocessor": {
			{Events: filtered("START", 1, "chunked 12 pages", 2), NextToken: ptr.String("next")},
			{Events: filtered("END", 3)},
		},
	}}

	seq := Flatten(QueryLogGroup(context.Background(), mock, "/aws/lambda/Document-Preprocessor", time.Now().Add(-time.Hour), time.Time{}))
	assert.Equal(t, []string{"START", "chunked 12 pages", "END"}, messages(t, seq))
}

func TestQueryLogGroupMissing(t *testing.T) {
	mock := &mockFilterer{}
	seq := Flatten(QueryLogGroup(context.Background(), mock, "/aws/lambda/Chunk-Embedder", time.Time{}, time.Time{}))
	assert.Empty(t, messages(t, seq))
}

func TestQueryLogGroupError(t *testing.T) {
	mock := &mockFilterer{err: errors.New("throttled")}
	for _, err := range Flatten(QueryLogGroup(context.Background(), mock, "/aws/lambda/Chunk-Embedder", time.Time{}, time.Time{})) {
		assert.EqualError(t, err, "throttled")
	}
}

func TestQueryLogGroups(t *testing.T) {
	mock := &mockFilterer{pages: map[string][]*cloudwatchlogs.FilterLogEventsOutput{
		"/aws/lambda/Document-Preprocessor": {{Events: filtered("p1", 1, "p3", 3, "p5", 5)}},
		"/aws/lambda/Chunk-Embedder":        {{Events: filtered("e2", 2, "e4", 4)}},
	}}
	groups := []string{"/aws/lambda/Document-Preprocessor", "/aws/lambda/Chunk-Embedder"}

	all := QueryLogGroups(context.Background(), mock, time.Time{}, time.Time{}, 0, groups...)
	assert.Equal(t, []string{"p1", "e2", "p3", "e4", "p5"}, messages(t, all))

	last := QueryLogGroups(context.Background(), mock, time.Time{}, time.Time{}, 2, groups...)
	assert.Equal(t, []string{"e4", "p5"}, messages(t, last))

	assert.Empty(t, messages(t, QueryLogGroups(context.Background(), mock, time.Time{}, time.Time{}, 0)))
}

func TestTailLogGroupsRequiresGroup(t *testing.T) {
	_, err := TailLogGroups(context.Background(), nil)
	assert.Error(t, err)
}

type mockTailer struct{}

func (mockTailer) StartLiveTail(ctx context.Context, in *cloudwatchlogs.StartLiveTailInput, _ ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.StartLiveTailOutput, error) {
	return nil, &types.ResourceNotFoundException{Message: ptr.String("The specified log group does not exist.")}
}

func TestTailLogGroupsError(t *testing.T) {
	_, err := TailLogGroups(context.Background(), mockTailer{}, "arn:aws:logs:us-east-1:123456789012:log-group:/aws/lambda/Chunk-Embedder:*")
	var notFound *types.ResourceNotFoundException
	assert.ErrorAs(t, err, &notFound)
}

func TestGetLogEvents(t *testing.T) {
	events, err := getLogEvents(&types.StartLiveTailResponseStreamMemberSessionStart{})
	assert.NoError(t, err)
	assert.Nil(t, events)

	update := &types.StartLiveTailResponseStreamMemberSessionUpdate{Value: types.LiveTailSessionUpdate{
		SessionResults: []types.LiveTailSessionLogEvent{{Message: ptr.String("hello")}},
	}}
	events, err = getLogEvents(update)
	assert.NoError(t, err)
	assert.Len(t, events, 1)

	_, err = getLogEvents(nil)
	assert.Error(t, err)
}
