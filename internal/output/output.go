package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// JSONMode switches every command to JSON output (--json).
var JSONMode bool

// Stdout is where results go. Tests may replace it.
var Stdout io.Writer = os.Stdout

// Result wraps command output in JSON mode.
type Result struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Print outputs data. In JSON mode, marshals to JSON. Otherwise calls the textFn.
func Print(data interface{}, textFn func()) {
	if JSONMode {
		out, err := json.MarshalIndent(Result{Success: true, Data: data}, "", "  ")
		if err != nil {
			PrintError(err)
			return
		}
		fmt.Fprintln(Stdout, string(out))
		return
	}
	textFn()
}

// PrintLine is Print for streams such as `watch`: in JSON mode each record is
// one compact line, so consumers can read it line by line.
func PrintLine(data interface{}, textFn func()) {
	if !JSONMode {
		textFn()
		return
	}
	out, err := json.Marshal(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(Stdout, string(out))
}

// PrintError outputs an error and exits 1.
func PrintError(err error) {
	if JSONMode {
		out, _ := json.MarshalIndent(Result{Success: false, Error: err.Error()}, "", "  ")
		fmt.Fprintln(Stdout, string(out))
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
