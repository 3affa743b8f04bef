// Copyright 2022~2024 wangqi. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/creack/pty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/ericwq/vtseq/frontend"
	"github.com/ericwq/vtseq/processor"
	"github.com/ericwq/vtseq/util"
	"github.com/ericwq/vtseq/xterm"
)

// serveMetrics exposes reg on addr until the returned stop function is
// called.
func serveMetrics(addr string, reg *prometheus.Registry) (stop func()) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			util.Logger.Warn("metrics server", "addr", addr, "error", err)
		}
	}()
	util.Logger.Info("metrics server", "addr", addr)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), frontend.ShutdownGrace*time.Millisecond)
		defer cancel()
		srv.Shutdown(ctx)
	}
}

// newScanner returns the processor for one session. Recognized commands and
// unknown sequences go to rep.
func newScanner(setName string, rep *Report, opts ...processor.Option) (*processor.Processor, *xterm.Xterm, error) {
	x := xterm.NewXterm(rep.Command)
	if setName == "vt100" {
		e, err := x.VT100.Engine()
		if err != nil {
			return nil, nil, err
		}
		return processor.New(e, rep, opts...), x, nil
	}

	e, err := x.Engine()
	if err != nil {
		return nil, nil, err
	}
	return processor.New(e, rep, opts...), x, nil
}

// runSession runs conf.shell under a pty, copies stdin to it and its output
// to stdout, and scans the output. It returns when the child exits or a
// termination signal arrives.
func runSession(conf *Config, stdin *os.File, stdout io.Writer) (*Report, error) {
	var metrics *processor.Metrics
	if conf.metrics != "" {
		reg := prometheus.NewRegistry()
		metrics = processor.NewMetrics(reg)
		stop := serveMetrics(conf.metrics, reg)
		defer stop()
	}

	rep := NewReport()
	proc, x, err := newScanner(conf.setName, rep, processor.WithMetrics(metrics))
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(conf.shell, conf.args...)
	cmd.Env = append(os.Environ(), "TERM="+conf.term)

	fd := int(stdin.Fd())
	interactive := term.IsTerminal(fd)

	var ptmx *os.File
	if interactive {
		ws, err := util.GetWinsize(fd)
		if err != nil {
			return nil, err
		}
		ptmx, err = pty.StartWithSize(cmd, ws)
		if err != nil {
			return nil, err
		}
	} else {
		ptmx, err = pty.Start(cmd)
		if err != nil {
			return nil, err
		}
	}
	defer ptmx.Close()

	if err := util.SetIUTF8(int(ptmx.Fd())); err != nil {
		util.Logger.Warn("set IUTF8", "error", err)
	}

	if interactive {
		saved, err := term.MakeRaw(fd)
		if err != nil {
			return nil, err
		}
		defer term.Restore(fd, saved)
	}
	util.Logger.Info("session start", "shell", conf.shell, "args", conf.args, "term", conf.term, "pid", cmd.Process.Pid)

	fileChan := make(chan frontend.Message, 1)
	fileDownChan := make(chan any, 1)

	eg := errgroup.Group{}
	// read from pty master file
	eg.Go(func() error {
		frontend.ReadFromFile(frontend.ReadTimeout, fileChan, fileDownChan, ptmx)
		return nil
	})

	// user input goes to the child as is
	if interactive {
		go io.Copy(ptmx, stdin)
	}

	// intercept signal
	var signals frontend.Signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGWINCH, syscall.SIGTERM, syscall.SIGINT, syscall.SIGHUP)
	defer signal.Stop(sigChan)

mainLoop:
	for {
		select {
		case fileMsg, ok := <-fileChan:
			if !ok {
				break mainLoop
			}
			if fileMsg.Err != nil {
				if errors.Is(fileMsg.Err, os.ErrDeadlineExceeded) {
					continue mainLoop
				}
				// EIO once the child side is closed
				util.Logger.Debug("read from pty", "error", fileMsg.Err)
				break mainLoop
			}
			if _, err := io.WriteString(stdout, fileMsg.Data); err != nil {
				util.Logger.Warn("write to stdout", "error", err)
			}
			proc.WriteString(fileMsg.Data)
		case s := <-sigChan:
			util.Logger.Debug("got signal", "signal", s)
			signals.Handler(s)
		}

		if signals.GotSignal(syscall.SIGWINCH) && interactive {
			if ws, err := util.GetWinsize(fd); err == nil {
				if err = pty.Setsize(ptmx, ws); err != nil {
					util.Logger.Warn("resize pty", "error", err)
				}
			}
		}

		if signals.GotSignal(syscall.SIGTERM) || signals.GotSignal(syscall.SIGINT) ||
			signals.GotSignal(syscall.SIGHUP) {
			cmd.Process.Signal(syscall.SIGHUP)
			break mainLoop
		}
	}

	proc.Flush()
	rep.title = x.Title()

	// stop the reader and drain what it still sends
	fileDownChan <- "done"
	ptmx.Close()
	for range fileChan {
	}
	eg.Wait()

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return rep, err
		}
		util.Logger.Info("session end", "exit", exitErr.ExitCode())
	} else {
		util.Logger.Info("session end", "exit", 0)
	}
	return rep, nil
}
