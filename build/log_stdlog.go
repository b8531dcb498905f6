// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

//go:build stdlog && !nolog

package build

// LogLevel specifies the log level of stdout logging in tests.
var LogLevel = "debug"

// LoggingType is a log type that writes only to stdout.
const LoggingType = LogTypeStdOut
