// Package monitoring holds the diagnostic logger and the progress side
// channel used while a location history is being read.
package monitoring

import "log"

// Logf receives every diagnostic line: processing notices, low accuracy
// fixes, malformed records and read progress. Report output never goes here.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger redirects diagnostics. nil mutes them.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		f = func(string, ...interface{}) {}
	}
	Logf = f
}

// Verbosef logs only when verbose is set. Per-record diagnostics go through
// here so a normal run over years of history stays quiet.
func Verbosef(verbose bool, format string, v ...interface{}) {
	if verbose {
		Logf(format, v...)
	}
}
