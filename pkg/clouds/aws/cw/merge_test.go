package cw

import (
	"errors"
	"iter"
	"testing"

	"github.com/aws/smithy-go/ptr"
	"github.com/stretchr/testify/assert"
)

func logEvents(timestamps ...int64) iter.Seq2[LogEvent, error] {
	return func(yield func(LogEvent, error) bool) {
		for _, ts := range timestamps {
			if !yield(LogEvent{Timestamp: ptr.Int64(ts)}, nil) {
				return
			}
		}
	}
}

func collect(seq iter.Seq2[LogEvent, error]) ([]int64, error) {
	var timestamps []int64
	for evt, err := range seq {
		if err != nil {
			return timestamps, err
		}
		timestamps = append(timestamps, *evt.Timestamp)
	}
	return timestamps, nil
}

func TestMergeLogEvents(t *testing.T) {
	tests := []struct {
		name        string
		left, right iter.Seq2[LogEvent, error]
		expected    []int64
	}{
		{"both empty", logEvents(), logEvents(), nil},
		{"left nil", nil, logEvents(1, 3), []int64{1, 3}},
		{"right nil", logEvents(2, 4), nil, []int64{2, 4}},
		{"interleaved", logEvents(1, 3, 5), logEvents(2, 4, 6), []int64{1, 2, 3, 4, 5, 6}},
		{"left longer", logEvents(1, 2, 7, 8), logEvents(3), []int64{1, 2, 3, 7, 8}},
		{"ties keep left first", logEvents(1, 2), logEvents(2), []int64{1, 2, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := collect(MergeLogEvents(tt.left, tt.right))
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestMergeLogEventsError(t *testing.T) {
	failing := func(yield func(LogEvent, error) bool) {
		if !yield(LogEvent{Timestamp: ptr.Int64(1)}, nil) {
			return
		}
		yield(LogEvent{}, errors.New("boom"))
	}
	got, err := collect(MergeLogEvents(failing, logEvents(2, 3)))
	assert.EqualError(t, err, "boom")
	assert.Equal(t, []int64{1}, got)
}

func TestTakeLastN(t *testing.T) {
	got, err := collect(TakeLastN(logEvents(1, 2, 3, 4), 2))
	assert.NoError(t, err)
	assert.Equal(t, []int64{3, 4}, got)

	got, err = collect(TakeLastN(logEvents(1, 2), 0))
	assert.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, got)
}
