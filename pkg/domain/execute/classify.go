package execute

import (
	"strings"
)

// Model containers write everything to one combined channel, so there
// is no real stdout/stderr split to recover. Diagnostic lines are
// recognized by the phrases the model templates print while working;
// everything else is treated as payload-side text.
//
// This is a heuristic, not a stream split. The strict contract for
// new models is: diagnostics go to standard error, the result is only
// ever the output file.
var diagnosticMarkers = []string{
	"Loading",
	"Processing",
	"Error:",
	"Warning:",
	"Completed",
	"Starting",
	"records",
	"written to",
	"Successfully generated",
	"Model loaded",
}

// Classify splits combined container output into stdout-like and
// stderr-like text. Lines holding a diagnostic marker go to stderr,
// all other non-blank lines go to stdout.
func Classify(combined []byte) (stdout string, stderr string) {
	outLines := []string{}
	errLines := []string{}

	for _, line := range strings.Split(string(combined), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if isDiagnostic(line) {
			errLines = append(errLines, line)
		} else {
			outLines = append(outLines, line)
		}
	}

	return strings.Join(outLines, "\n"), strings.Join(errLines, "\n")
}

func isDiagnostic(line string) bool {
	for _, marker := range diagnosticMarkers {
		if strings.Contains(line, marker) {
			return true
		}
	}
	return false
}
