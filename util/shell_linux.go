// Copyright 2022~2024 wangqi. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package util

import (
	"errors"
	"os/exec"
	"os/user"
	"strings"
)

var (
	userCurrentTest bool
	execCmdTest     bool
)

// GetShell returns the login shell of the current user from the passwd
// database.
func GetShell() (string, error) {
	u, err := user.Current()
	if err != nil || userCurrentTest {
		return "", errors.Join(errors.New("current user"), err)
	}

	out, err := exec.Command("getent", "passwd", u.Uid).Output()
	if err != nil || execCmdTest {
		return "", errors.Join(errors.New("getent passwd"), err)
	}

	ent := strings.Split(strings.TrimSuffix(string(out), "\n"), ":")
	if len(ent) < 7 || ent[6] == "" {
		return "", errors.New("invalid passwd entry: " + string(out))
	}
	return ent[6], nil
}
