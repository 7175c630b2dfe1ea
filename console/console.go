// Package console is the diagnostics sink shared by every allocator tier.
//
// Inventory dumps and status lines go through a Printer, one line per call.
// Developer chatter goes to a slog.Logger that discards by default. Fatal
// conditions go through Fatal, which reports the error and hands it to
// OnFatal; the default OnFatal terminates the process.
package console

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// ExitCode is the process exit status used by the default fatal handler.
const ExitCode = 666

// Printer receives human-readable output.
type Printer interface {
	Printf(format string, args ...any)
}

// WriterPrinter writes formatted lines to W, appending a newline when the
// format lacks one.
type WriterPrinter struct {
	W io.Writer
}

// Printf implements Printer.
func (p WriterPrinter) Printf(format string, args ...any) {
	if !strings.HasSuffix(format, "\n") {
		format += "\n"
	}
	fmt.Fprintf(p.W, format, args...)
}

// Console bundles the print sink, the logger and the fatal-error path.
type Console struct {
	Printer Printer
	Logger  *slog.Logger
	// OnFatal is called with the fatal error. It must not return; if it
	// does, Fatal panics with the error.
	OnFatal func(error)
}

// ErrFatal wraps every error passed to Fatal, so recovered panics can be
// recognised with errors.Is.
var ErrFatal = errors.New("fatal")

// FatalError is the value Fatal hands to OnFatal.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string { return "fatal: " + e.Err.Error() }

func (e *FatalError) Unwrap() []error { return []error{ErrFatal, e.Err} }

// New returns a Console printing to w with a discarding logger and the
// process-exiting fatal handler.
func New(w io.Writer) *Console {
	return &Console{
		Printer: WriterPrinter{W: w},
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		OnFatal: exit,
	}
}

// Default returns a Console printing to standard output.
func Default() *Console {
	return New(os.Stdout)
}

func exit(error) {
	os.Exit(ExitCode)
}

// Printf prints one line through the Printer.
func (c *Console) Printf(format string, args ...any) {
	if c.Printer != nil {
		c.Printer.Printf(format, args...)
	}
}

// Debug logs a developer-level message.
func (c *Console) Debug(msg string, args ...any) {
	c.logger().Debug(msg, args...)
}

// Info logs an informational message.
func (c *Console) Info(msg string, args ...any) {
	c.logger().Info(msg, args...)
}

// Fatal reports err and invokes OnFatal. It never returns normally.
func (c *Console) Fatal(err error) {
	ferr := &FatalError{Err: err}
	c.Printf("%s", ferr.Error())
	c.logger().Error("fatal error", "err", err)
	if c.OnFatal != nil {
		c.OnFatal(ferr)
	} else {
		exit(ferr)
	}
	panic(ferr)
}

func (c *Console) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c.Logger
}
