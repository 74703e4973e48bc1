// Copyright (C) 2025 Notedrop Labs (oss@notedrop.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Exit codes for CLI commands.
const (
	CLIExitSuccess  = 0 // Operation completed successfully
	CLIExitFindings = 1 // Operation completed with findings (e.g. unhealthy store)
	CLIExitError    = 2 // Operation failed
)

// CommandResult wraps command output with metadata for JSON mode.
type CommandResult struct {
	Command   string      `json:"command"`
	Timestamp time.Time   `json:"timestamp"`
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// OutputJSON writes structured data as indented JSON to stdout.
func OutputJSON(data interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// OutputError writes an error in the appropriate format and exits
// with CLIExitError.
//
// # Inputs
//
//   - command: The command name for JSON metadata.
//   - msg: Human-readable error message.
//   - err: The underlying error.
func OutputError(command, msg string, err error) {
	if jsonOutput {
		result := CommandResult{
			Command:   command,
			Timestamp: time.Now(),
			Success:   false,
			Error:     fmt.Sprintf("%s: %v", msg, err),
		}
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		encoder.Encode(result)
	} else if !quietMode {
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
	}
	os.Exit(CLIExitError)
}

// OutputResult emits either the JSON envelope or nothing, leaving
// human-readable printing to the caller.
func OutputResult(command string, data interface{}) {
	if quietMode {
		return
	}
	if jsonOutput {
		OutputJSON(CommandResult{
			Command:   command,
			Timestamp: time.Now(),
			Success:   true,
			Data:      data,
		})
	}
}
