package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/dshills/keyfmt/internal/formatter"
)

var (
	okColor    = color.New(color.FgGreen, color.Bold)
	skipColor  = color.New(color.FgYellow)
	failColor  = color.New(color.FgRed, color.Bold)
	faintColor = color.New(color.Faint)
)

// console serializes output from concurrent format operations.
type console struct {
	mu    sync.Mutex
	out   io.Writer
	quiet bool
}

func newConsole(out io.Writer, quiet bool) *console {
	return &console{out: out, quiet: quiet}
}

func (c *console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

func (c *console) ok(path, detail string) {
	if c.quiet {
		return
	}
	c.printf("%s %s %s\n", okColor.Sprint("ok"), path, faintColor.Sprint(detail))
}

func (c *console) skip(path, reason string) {
	if c.quiet {
		return
	}
	c.printf("%s %s %s\n", skipColor.Sprint("skip"), path, faintColor.Sprint(reason))
}

func (c *console) fail(path string, err error) {
	c.printf("%s %s: %v\n", failColor.Sprint("fail"), path, err)
}

// statusFor returns a status bar that prefixes messages with path.
func (c *console) statusFor(path string, verbose bool) formatter.StatusBar {
	return &statusLine{console: c, path: path, verbose: verbose}
}

// statusLine is the terminal rendition of the editor status bar. Progress
// messages are shown only when verbose; failure messages always are.
type statusLine struct {
	console *console
	path    string
	verbose bool

	mu    sync.Mutex
	since time.Time
}

func (s *statusLine) SetText(text string) {
	switch text {
	case formatter.StatusFormatting, formatter.StatusSuccess:
		if !s.verbose || s.console.quiet {
			return
		}
		s.console.printf("%s %s\n", faintColor.Sprint(s.path+":"), text)
	default:
		s.console.printf("%s %s\n", failColor.Sprint(s.path+":"), text)
	}
}

func (s *statusLine) SetBusy(busy bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if busy {
		s.since = time.Now()
		return
	}
	if s.verbose && !s.console.quiet && !s.since.IsZero() {
		s.console.printf("%s formatter finished in %s\n", faintColor.Sprint(s.path+":"), time.Since(s.since).Round(time.Millisecond))
	}
	s.since = time.Time{}
}
