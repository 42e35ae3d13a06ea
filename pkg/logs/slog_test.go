package logs

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/Vidhant007/docker-lambda-aws/pkg/term"
	"github.com/stretchr/testify/assert"
)

func newTestLogger(t *testing.T) (*term.Term, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	tt := term.NewTerm(os.Stdin, &stdout, &stderr)
	tt.ForceColor(false)
	return tt, &stdout, &stderr
}

func TestTermHandler(t *testing.T) {
	tt, stdout, stderr := newTestLogger(t)
	logger := NewTermLogger(tt)

	logger.Info("info message")
	logger.Warn("warning message")
	logger.Error("error message")

	assert.Contains(t, stdout.String(), " * info message")
	assert.Contains(t, stdout.String(), " ! warning message")
	assert.Equal(t, "error message\n", stderr.String())
	assert.True(t, tt.HadWarnings())
}

func TestTermHandlerDebug(t *testing.T) {
	tt, stdout, _ := newTestLogger(t)
	logger := NewTermLogger(tt)

	logger.Debug("hidden")
	assert.Empty(t, stdout.String())

	tt.SetDebug(true)
	logger.Debug("shown")
	assert.Equal(t, " - shown\n", stdout.String())
}

func TestTermHandlerAttrs(t *testing.T) {
	tt, stdout, _ := newTestLogger(t)
	logger := NewTermLogger(tt).With("stack", "dev").WithGroup("fn")

	logger.Info("deployed", "name", "Chunk-Embedder", "memory", 1024)

	assert.Equal(t, " * deployed {stack=dev, fn.name=Chunk-Embedder, fn.memory=1024}\n", stdout.String())
}

func TestTermHandlerTruncatesLongAttrs(t *testing.T) {
	tt, stdout, _ := newTestLogger(t)
	logger := NewTermLogger(tt)

	logger.Info("template", "body", strings.Repeat("x", 200))

	line := strings.TrimSpace(stdout.String())
	assert.True(t, strings.HasSuffix(line, "...}"), line)
	assert.Less(t, len(line), 120)
}
