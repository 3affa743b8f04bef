// Copyright 2022~2024 wangqi. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package frontend

import (
	"os"
	"sync/atomic"
	"syscall"

	"github.com/ericwq/vtseq/util"
)

const (
	MAX_SIGNAL_NUMBER = 64
)

// Signals records pending signals; Handler may run on the signal goroutine
// while the main loop polls.
type Signals [MAX_SIGNAL_NUMBER]atomic.Int32

// This method consumes a signal notification.
func (s *Signals) GotSignal(x syscall.Signal) (ret bool) {
	if x >= 0 && x < MAX_SIGNAL_NUMBER {
		ret = s[x].Swap(0) > 0
	}
	return
}

func (s *Signals) Handler(signal os.Signal) {
	sig, ok := signal.(syscall.Signal)
	if !ok {
		util.Logger.Warn("signal malform", "signal", signal)
		return
	}
	if sig >= 0 && sig < MAX_SIGNAL_NUMBER {
		s[sig].Store(int32(sig))
	} else {
		util.Logger.Warn("signal out of range", "signal", sig)
	}
}

// This method does not consume signal notifications.
func (s *Signals) AnySignal() (rv bool) {
	for i := range s {
		rv = rv || s[i].Load() > 0
	}
	return
}
