// Copyright 2022~2024 wangqi. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package frontend

import (
	"errors"
	"io"
	"os"
	"time"
)

// Message is one read result: Data on success, Err otherwise.
type Message struct {
	Err  error
	Data string
}

type deadLineReader interface {
	io.Reader
	SetReadDeadline(t time.Time) error
}

// ReadFromFile reads fr in chunks and sends every result to msgChan. A read
// that times out after timeout milliseconds is reported and retried; any
// other error is reported and ends the loop. Sending to doneChan stops the
// loop after the current read. msgChan is closed on return.
func ReadFromFile(timeout int, msgChan chan Message, doneChan chan any, fr deadLineReader) {
	defer close(msgChan)

	var buf [16384]byte
	for {
		select {
		case <-doneChan:
			return
		default:
		}

		fr.SetReadDeadline(time.Now().Add(time.Millisecond * time.Duration(timeout)))
		n, err := fr.Read(buf[:])
		if err != nil {
			msgChan <- Message{Err: err}
			if errors.Is(err, os.ErrDeadlineExceeded) {
				continue
			}
			return
		}
		if n == 0 {
			msgChan <- Message{Err: io.EOF}
			return
		}
		msgChan <- Message{Data: string(buf[:n])}
	}
}
