package term

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"
	"strings"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

type Color = termenv.ANSIColor

const (
	BrightCyan = termenv.ANSIBrightCyan
	InfoColor  = termenv.ANSIBrightMagenta
	ErrorColor = termenv.ANSIBrightRed
	WarnColor  = termenv.ANSIYellow      // not bright, for light backgrounds
	DebugColor = termenv.ANSIBrightBlack // gray

	boldColorStr  = termenv.CSI + termenv.BoldSeq + "m"
	resetColorStr = termenv.CSI + termenv.ResetSeq + "m"
)

// level is the bullet and color of a line of progress output.
type level struct {
	bullet string
	color  Color
}

var (
	debugLevel = level{" - ", DebugColor}
	infoLevel  = level{" * ", InfoColor}
	warnLevel  = level{" ! ", WarnColor}
)

// Term writes progress to stdout and errors to stderr. Warnings are kept so
// they can be repeated after long output.
type Term struct {
	stdout, stderr io.Writer
	out, err       *termenv.Output
	debug          bool
	isTerminal     bool
	warnings       []string
}

var DefaultTerm = NewTerm(os.Stdin, os.Stdout, os.Stderr)

// NewTerm detects color support from stdout; stdin only matters for IsTerminal.
func NewTerm(stdin interface{ Fd() uintptr }, stdout, stderr io.Writer) *Term {
	t := &Term{
		stdout: stdout,
		stderr: stderr,
		out:    termenv.NewOutput(stdout),
		err:    termenv.NewOutput(stderr),
	}
	if f, ok := stdout.(interface{ Fd() uintptr }); ok && os.Getenv("TERM") != "" {
		t.isTerminal = term.IsTerminal(int(f.Fd())) && term.IsTerminal(int(stdin.Fd()))
	}
	return t
}

func (t *Term) ForceColor(color bool) {
	profile := termenv.Ascii
	if color {
		profile = termenv.ANSI
	}
	t.out = termenv.NewOutput(t.stdout, termenv.WithProfile(profile))
	t.err = termenv.NewOutput(t.stderr, termenv.WithProfile(profile))
}

func (t *Term) SetDebug(debug bool) { t.debug = debug }
func (t *Term) DoDebug() bool { return t.debug }
func (t *Term) IsTerminal() bool { return t.isTerminal }
func (t *Term) HadWarnings() bool { return len(t.warnings) > 0 }
func (t *Term) StdoutCanColor() bool {
	return t.out.Profile != termenv.Ascii
}

// output writes msg in color c, unless w is an Ascii output.
func output(w *termenv.Output, c Color, msg string) (int, error) {
	if msg == "" {
		return 0, nil
	}
	if w.Profile != termenv.Ascii {
		msg = termenv.CSI + c.Sequence(false) + "m" + msg + resetColorStr
	}
	return w.WriteString(msg)
}

func ensureNewline(s string) string {
	if s == "" || !strings.HasSuffix(s, "\n") && !strings.HasSuffix(s, "\r") {
		return s + "\n"
	}
	return s
}

// line prints msg as a single bulleted line at level l.
func (t *Term) line(l level, msg string) (int, error) {
	if msg != "" && !strings.HasPrefix(msg, l.bullet) {
		msg = l.bullet + msg
	}
	msg = ensureNewline(msg)
	if l == warnLevel {
		t.warnings = append(t.warnings, msg)
	}
	return output(t.out, l.color, msg)
}

func (t *Term) Printc(c Color, v ...any) (int, error) {
	return output(t.out, c, fmt.Sprint(v...))
}

func (t *Term) Print(v ...any) (int, error) {
	return fmt.Fprint(t.out, v...)
}

func (t *Term) Println(v ...any) (int, error) {
	return fmt.Fprintln(t.out, v...)
}

func (t *Term) Printf(format string, v ...any) (int, error) {
	return fmt.Fprint(t.out, ensureNewline(fmt.Sprintf(format, v...)))
}

func (t *Term) Debug(v ...any) (int, error) {
	if !t.debug {
		return 0, nil
	}
	return t.line(debugLevel, fmt.Sprintln(v...))
}

func (t *Term) Debugf(format string, v ...any) (int, error) {
	if !t.debug {
		return 0, nil
	}
	return t.line(debugLevel, fmt.Sprintf(format, v...))
}

func (t *Term) Info(v ...any) (int, error) {
	return t.line(infoLevel, fmt.Sprintln(v...))
}

func (t *Term) Infof(format string, v ...any) (int, error) {
	return t.line(infoLevel, fmt.Sprintf(format, v...))
}

func (t *Term) Warn(v ...any) (int, error) {
	return t.line(warnLevel, fmt.Sprintln(v...))
}

func (t *Term) Warnf(format string, v ...any) (int, error) {
	return t.line(warnLevel, fmt.Sprintf(format, v...))
}

// Error goes to stderr, unbulleted.
func (t *Term) Error(v ...any) (int, error) {
	return output(t.err, ErrorColor, fmt.Sprintln(v...))
}

// FlushWarnings prints each distinct warning once and forgets them.
func (t *Term) FlushWarnings() (int, error) {
	slices.Sort(t.warnings)
	unique := slices.Compact(t.warnings)
	t.warnings = nil

	written := 0
	for _, w := range unique {
		n, err := output(t.out, WarnColor, w)
		written += n
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

func Print(v ...any) (int, error) { return DefaultTerm.Print(v...) }
func Println(v ...any) (int, error) { return DefaultTerm.Println(v...) }
func Printf(format string, v ...any) (int, error) { return DefaultTerm.Printf(format, v...) }
func Printc(c Color, v ...any) (int, error) { return DefaultTerm.Printc(c, v...) }
func Debug(v ...any) (int, error) { return DefaultTerm.Debug(v...) }
func Debugf(format string, v ...any) (int, error) { return DefaultTerm.Debugf(format, v...) }
func Info(v ...any) (int, error) { return DefaultTerm.Info(v...) }
func Infof(format string, v ...any) (int, error) { return DefaultTerm.Infof(format, v...) }
func Warn(v ...any) (int, error) { return DefaultTerm.Warn(v...) }
func Warnf(format string, v ...any) (int, error) { return DefaultTerm.Warnf(format, v...) }
func Error(v ...any) (int, error) { return DefaultTerm.Error(v...) }
func FlushWarnings() (int, error) { return DefaultTerm.FlushWarnings() }
func ForceColor(color bool) { DefaultTerm.ForceColor(color) }
func SetDebug(debug bool) { DefaultTerm.SetDebug(debug) }
func DoDebug() bool { return DefaultTerm.DoDebug() }
func IsTerminal() bool { return DefaultTerm.IsTerminal() }
func HadWarnings() bool { return DefaultTerm.HadWarnings() }
func StdoutCanColor() bool { return DefaultTerm.StdoutCanColor() }

var ansiRegex = regexp.MustCompile("\x1b(?:[@-WYZ\\\\`-~]|\\[[0-?]*[ -/]*[@-~]|[X\\]^_].*?(?:\x1b\\\\|\x07|$))")

// StripAnsi removes escape sequences, for log lines printed without color.
func StripAnsi(s string) string {
	return ansiRegex.ReplaceAllLiteralString(s, "")
}
