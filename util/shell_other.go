// Copyright 2022~2024 wangqi. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !linux && !darwin

package util

import "errors"

// GetShell is not supported here; callers fall back to $SHELL.
func GetShell() (string, error) {
	return "", errors.New("login shell lookup not supported")
}
