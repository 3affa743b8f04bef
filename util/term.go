// Copyright 2022~2024 wangqi. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package util

import (
	"github.com/creack/pty"
	"golang.org/x/sys/unix"
)

// CheckIUTF8 reports whether the terminal at fd treats input as UTF-8.
func CheckIUTF8(fd int) (bool, error) {
	termios, err := unix.IoctlGetTermios(fd, GetTermios)
	if err != nil {
		return false, err
	}

	// Input is UTF-8 (since Linux 2.6.4)
	return (termios.Iflag & unix.IUTF8) != 0, nil
}

// SetIUTF8 turns on UTF-8 input processing, so the line discipline erases
// whole characters.
func SetIUTF8(fd int) error {
	termios, err := unix.IoctlGetTermios(fd, GetTermios)
	if err != nil {
		return err
	}

	termios.Iflag |= unix.IUTF8
	return unix.IoctlSetTermios(fd, SetTermios, termios)
}

// GetWinsize reads the window size of the terminal at fd in the form pty
// expects.
func GetWinsize(fd int) (*pty.Winsize, error) {
	ws, err := unix.IoctlGetWinsize(fd, unix.TIOCGWINSZ)
	if err != nil {
		return nil, err
	}
	return ConvertWinsize(ws), nil
}

func ConvertWinsize(windowSize *unix.Winsize) *pty.Winsize {
	if windowSize == nil {
		return nil
	}
	var sz pty.Winsize
	sz.Cols = windowSize.Col
	sz.Rows = windowSize.Row
	sz.X = windowSize.Xpixel
	sz.Y = windowSize.Ypixel

	return &sz
}
