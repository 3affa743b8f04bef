// Copyright 2022~2024 wangqi. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build darwin

package util

import (
	"fmt"
	"os"
	"os/exec"
	"regexp"
)

// GetShell returns the login shell of the current user from the directory
// service.
func GetShell() (string, error) {
	dir := "Local/Default/Users/" + os.Getenv("USER")
	out, err := exec.Command("dscl", "localhost", "-read", dir, "UserShell").Output()
	if err != nil {
		return "", err
	}

	re := regexp.MustCompile("UserShell: (/[^ ]+)\n")
	matched := re.FindStringSubmatch(string(out))
	var shell string

	if matched != nil {
		shell = matched[1]
	}
	if matched == nil || shell == "" {
		return "", fmt.Errorf("invalid output: %s", out)
	}

	return shell, nil
}
