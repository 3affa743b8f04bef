// Copyright 2022~2024 wangqi. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ericwq/vtseq/executor"
	"github.com/ericwq/vtseq/frontend"
	"github.com/ericwq/vtseq/util"
	"github.com/ericwq/vtseq/xterm"
)

var usage = `Usage:
  ` + frontend.CommandName + ` [-version] [-help]
  ` + frontend.CommandName + ` [-set NAME] -dot FILE | -table FILE | -inspect FILE
  ` + frontend.CommandName + ` [-term TERM] -terminfo
  ` + frontend.CommandName + ` [-term TERM] [-metrics ADDR] [-log FILE] [-verbose LEVEL] [-- COMMAND [ARGS...]]
Options:
  -h, -help      print this message
  -v, -version   print version information
  -set           handler set: xterm or vt100 (default xterm)
  -dot           write the recognizer table as Graphviz to FILE (- for stdout)
  -table         write the recognizer table snapshot to FILE
  -inspect       print statistics of the table snapshot in FILE
  -terminfo      check which terminfo capabilities of TERM are recognized
  -term          terminal type (default $TERM)
  -metrics       serve Prometheus metrics on ADDR while scanning
  -log           write the log to FILE instead of stderr
  -verbose       log level: trace, debug, info, warn, error (default info)
`

// Config is the parsed command line.
type Config struct {
	version  bool
	setName  string
	dot      string
	table    string
	inspect  string
	terminfo bool
	term     string
	metrics  string
	logFile  string
	verbose  string
	shell    string
	args     []string // command and its arguments, after --
}

func parseFlags(progname string, args []string) (config *Config, output string, err error) {
	flagSet := flag.NewFlagSet(progname, flag.ContinueOnError)
	var buf bytes.Buffer
	flagSet.SetOutput(&buf)

	var conf Config

	flagSet.BoolVar(&conf.version, "version", false, "print version information")
	flagSet.BoolVar(&conf.version, "v", false, "print version information")

	flagSet.StringVar(&conf.setName, "set", "xterm", "handler set")
	flagSet.StringVar(&conf.dot, "dot", "", "graphviz output file")
	flagSet.StringVar(&conf.table, "table", "", "table snapshot output file")
	flagSet.StringVar(&conf.inspect, "inspect", "", "table snapshot input file")
	flagSet.BoolVar(&conf.terminfo, "terminfo", false, "terminfo coverage")
	flagSet.StringVar(&conf.term, "term", "", "terminal type")
	flagSet.StringVar(&conf.metrics, "metrics", "", "metrics listen address")
	flagSet.StringVar(&conf.logFile, "log", "", "log file")
	flagSet.StringVar(&conf.verbose, "verbose", "info", "log level")

	err = flagSet.Parse(args)
	if err != nil {
		return nil, buf.String(), err
	}

	// get the non-flag command-line arguments.
	conf.args = flagSet.Args()
	return &conf, buf.String(), nil
}

func (c *Config) buildConfig() (string, bool) {
	// just need version info
	if c.version {
		return "", true
	}

	if c.setName != "xterm" && c.setName != "vt100" {
		return "unknown handler set: " + c.setName, false
	}

	modes := 0
	for _, m := range []bool{c.dot != "", c.table != "", c.inspect != "", c.terminfo} {
		if m {
			modes++
		}
	}
	if modes > 1 {
		return "only one of -dot, -table, -inspect and -terminfo is allowed.", false
	}
	if modes == 1 && len(c.args) > 0 {
		return "command is only allowed when scanning a session.", false
	}

	if c.term == "" {
		c.term = os.Getenv("TERM")
	}
	if c.term == "" && (c.terminfo || modes == 0) {
		return "TERM is not set, use -term.", false
	}

	if modes == 0 && len(c.args) == 0 {
		if c.shell = os.Getenv("SHELL"); c.shell == "" {
			shell, err := util.GetShell()
			if err != nil {
				util.Logger.Debug("login shell", "error", err)
				shell = "/bin/sh"
			}
			c.shell = shell
		}
	} else if len(c.args) > 0 {
		c.shell = c.args[0]
		c.args = c.args[1:]
	}

	return "", true
}

func main() {
	conf, _, err := parseFlags(os.Args[0], os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		frontend.PrintUsage("", usage)
		return
	} else if err != nil {
		frontend.PrintUsage(err.Error(), usage)
		os.Exit(2)
	} else if hint, ok := conf.buildConfig(); !ok {
		frontend.PrintUsage(hint, usage)
		os.Exit(2)
	}

	if conf.version {
		frontend.PrintVersion()
		return
	}

	if code := run(conf, os.Stdin, os.Stdout); code != 0 {
		os.Exit(code)
	}
}

// run performs the mode selected by conf and returns the exit code.
func run(conf *Config, stdin *os.File, stdout io.Writer) int {
	util.Logger.SetLevel(util.ParseLevel(conf.verbose))
	if conf.logFile != "" {
		closer, err := util.Logger.SetLogFile(conf.logFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open log file: %s\n", err)
			return 1
		}
		defer closer.Close()
	}

	var err error
	switch {
	case conf.dot != "":
		err = writeDot(conf.setName, conf.dot, stdout)
	case conf.table != "":
		err = writeTable(conf.setName, conf.table)
	case conf.inspect != "":
		err = inspectTable(conf.inspect, stdout)
	case conf.terminfo:
		err = checkTerminfo(conf.term, stdout)
	default:
		var rep *Report
		rep, err = runSession(conf, stdin, stdout)
		if rep != nil {
			rep.WriteTo(os.Stderr)
		}
	}

	if err != nil {
		util.Logger.Error("vtscan", "error", err)
		fmt.Fprintf(os.Stderr, "%s: %s\n", frontend.CommandName, err)
		return 1
	}
	return 0
}

// handlerSet returns the method names and patterns of the named set, for
// the table dump modes.
func handlerSet(name string) (tableSource, error) {
	switch strings.ToLower(name) {
	case "vt100":
		return xterm.VT100Set(), nil
	case "xterm":
		return xterm.XtermSet(), nil
	}
	return nil, fmt.Errorf("unknown handler set: %s", name)
}

var (
	_ tableSource = (*executor.Set[*xterm.VT100])(nil)
	_ tableSource = (*executor.Set[*xterm.Xterm])(nil)
)
