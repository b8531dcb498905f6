// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

//go:build !nolog && !stdlog

package build

// LogLevel specifies the default log level.
var LogLevel = "info"

// LoggingType is a log type that writes to both stderr and the log file.
const LoggingType = LogTypeDefault
