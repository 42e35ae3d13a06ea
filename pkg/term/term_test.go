package term

import (
	"bytes"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func TestOutput(t *testing.T) {
	tests := []struct {
		msg, output string
		profile     termenv.Profile
	}{
		{"Hello, World!", "Hello, World!", termenv.Ascii},
		{"Hello, World!\n", "Hello, World!\n", termenv.Ascii},
		{"", "", termenv.Ascii},
		{"Hello, World!", "\x1b[95mHello, World!\x1b[0m", termenv.ANSI},
		{"Hello, World!\n", "\x1b[95mHello, World!\n\x1b[0m", termenv.ANSI},
		{"", "", termenv.ANSI},
	}

	for i, test := range tests {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			var buf strings.Builder
			out := termenv.NewOutput(&buf)
			out.Profile = test.profile
			if _, err := output(out, InfoColor, test.msg); err != nil {
				t.Errorf("output(out, InfoColor, %q) results in error: %v", test.msg, err)
			}
			if buf.String() != test.output {
				t.Errorf("output(out, InfoColor, %q) = %q, want %q", test.msg, buf.String(), test.output)
			}
		})
	}
}

func TestPrefixes(t *testing.T) {
	var stdout, stderr bytes.Buffer
	term := NewTerm(os.Stdin, &stdout, &stderr)
	term.ForceColor(false)

	term.Info("deploying")
	term.Warnf("bucket %s is not empty", "b")
	term.Debug("hidden")
	term.SetDebug(true)
	term.Debug("shown")
	term.Error("boom")

	assert.Equal(t, " * deploying\n ! bucket b is not empty\n - shown\n", stdout.String())
	assert.Equal(t, "boom\n", stderr.String())
	assert.True(t, term.HadWarnings())
}

func TestBulletNotRepeated(t *testing.T) {
	var stdout, stderr bytes.Buffer
	term := NewTerm(os.Stdin, &stdout, &stderr)
	term.ForceColor(false)
	assert.False(t, term.StdoutCanColor())

	term.Infof(" * already bulleted")
	term.Warnf("")
	assert.Equal(t, " * already bulleted\n\n", stdout.String())

	term.ForceColor(true)
	assert.True(t, term.StdoutCanColor())
}

func TestFlushWarnings(t *testing.T) {
	var stdout, stderr bytes.Buffer
	term := NewTerm(os.Stdin, &stdout, &stderr)
	term.ForceColor(false)

	term.Warn("b")
	term.Warn("a")
	term.Warn("b")
	stdout.Reset()

	if _, err := term.FlushWarnings(); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, " ! a\n ! b\n", stdout.String())
	assert.False(t, term.HadWarnings())
}

func TestStripAnsi(t *testing.T) {
	tests := []struct {
		msg, stripped string
	}{
		{"", ""},
		{"Hello, World!", "Hello, World!"},
		{"\x1b]0;Set console title!\x07", ""},
		{"\x1b[95mHello, World!\n\x1b[0m", "Hello, World!\n"},
	}
	for _, test := range tests {
		if got := StripAnsi(test.msg); got != test.stripped {
			t.Errorf("StripAnsi(%q) = %q, want %q", test.msg, got, test.stripped)
		}
	}
}

type outputRow struct {
	Key   string
	Value string
}

func TestTable(t *testing.T) {
	stdout, _ := SetupTestTerm(t)

	rows := []outputRow{{"BucketName", "my-bucket"}, {"FunctionUrl1", "https://x.lambda-url.us-east-1.on.aws/"}}
	if err := Table(rows, "Key", "Value", "Missing"); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	if assert.Len(t, lines, 3) {
		assert.Equal(t, []string{"KEY", "VALUE", "MISSING"}, strings.Fields(lines[0]))
		assert.Equal(t, []string{"BucketName", "my-bucket", "N/A"}, strings.Fields(lines[1]))
	}
}

func TestTableNotSlice(t *testing.T) {
	SetupTestTerm(t)
	assert.Error(t, Table(outputRow{}, "Key"))
}
