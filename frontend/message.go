// Copyright 2022~2024 wangqi. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package frontend

import (
	"fmt"
	"strings"
)

const (
	PackageName   = "vtseq"
	CommandName   = "vtscan"
	ReadTimeout   = 100 // milliseconds
	ShutdownGrace = 500 // milliseconds

	VersionInfo = `Copyright (c) 2022~2024 wangqi ericwq057@qq.com
This is free software: you are free to change and redistribute it.
There is NO WARRANTY, to the extent permitted by law.

control sequence scanner for terminal output
`
)

var (
	BuildVersion string // build version
	GoVersion    string // Go version
	BuildTime    string // build time
	GitCommit    string // git commit id
	GitBranch    string // git branch name
)

func PrintVersion() {
	fmt.Printf("version   \t: %s\n", BuildVersion)
	fmt.Printf("go version\t: %s\n", GoVersion)
	fmt.Printf("build time\t: %s\n", BuildTime)
	fmt.Printf("git commit\t: %s\n", GitCommit)
	fmt.Printf("git branch\t: %s\n\n", GitBranch)
	fmt.Print(VersionInfo)
}

// PrintUsage prints the hint, if any, followed by the usage text.
func PrintUsage(hint string, usage ...string) {
	var sb strings.Builder
	if hint != "" {
		if len(usage) > 0 {
			sb.WriteString("Hints: ")
		}
		sb.WriteString(hint)
		sb.WriteString("\n")
	}
	for _, u := range usage {
		sb.WriteString(u)
	}
	fmt.Print(sb.String())
}
