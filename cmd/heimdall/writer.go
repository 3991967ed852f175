package main

import (
	"os"

	"golang.org/x/term"

	"heimdall/internal/geo"
	"heimdall/internal/monitor"
)

type writerOptions struct {
	printOnly  bool
	tui        bool
	logFile    string
	siteID     string
	perimeter  []geo.Point
	// isTerminal reports whether STDOUT is a terminal; nil checks os.Stdout.
	isTerminal func() bool
}

type coverageAlertWriter interface {
	monitor.CoverageWriter
	monitor.AlertWriter
}

// newWriters sets up coverage and alert writers based on flags and env vars.
// It returns the writers and a cleanup function to close any resources.
func newWriters(opts writerOptions) (monitor.CoverageWriter, monitor.AlertWriter, func(), error) {
	base, baseCleanup, err := baseWriter(opts)
	if err != nil {
		return nil, nil, nil, err
	}
	if opts.logFile == "" {
		return base, base, baseCleanup, nil
	}

	fw, err := monitor.NewFileWriter(opts.logFile, opts.logFile+".alerts")
	if err != nil {
		baseCleanup()
		return nil, nil, nil, err
	}
	mw := monitor.NewMultiWriter(
		[]monitor.CoverageWriter{base, fw},
		[]monitor.AlertWriter{base, fw},
	)
	cleanup := func() {
		fw.Close()
		baseCleanup()
	}
	return mw, mw, cleanup, nil
}

// baseWriter chooses GreptimeDB when GREPTIMEDB_ENDPOINT is set, otherwise a
// terminal writer: the TUI when requested, colour output on a TTY and JSON
// lines when piped.
func baseWriter(opts writerOptions) (coverageAlertWriter, func(), error) {
	noop := func() {}
	if !opts.printOnly && os.Getenv("GREPTIMEDB_ENDPOINT") != "" {
		w, err := monitor.NewGreptimeDBWriter(os.Getenv("GREPTIMEDB_ENDPOINT"), envOr("GREPTIMEDB_DATABASE", "public"))
		if err != nil {
			return nil, nil, err
		}
		return w, noop, nil
	}
	if opts.tui {
		w := monitor.NewTUIWriter(opts.siteID)
		return w, func() { w.Close() }, nil
	}
	isTerminal := opts.isTerminal
	if isTerminal == nil {
		isTerminal = stdoutIsTerminal
	}
	if isTerminal() {
		return monitor.NewColorStdoutWriter(opts.siteID, opts.perimeter), noop, nil
	}
	return monitor.NewJSONStdoutWriter(), noop, nil
}

func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
