package cmd

import (
	"fmt"
	"time"

	"github.com/PolarWolf314/tarvault/internal/ui"

	"github.com/briandowns/spinner"
)

// startSpinner creates a spinner with the given message and starts it when
// enabled. Returns the spinner and a function that should be deferred to
// clean up.
//
// spinner.FinalMSG values do not need trailing newlines; the cleanup
// function adds one before printing the message to w. The message is
// printed even when the spinner never ran.
func (r *runner) startSpinner(message string, enabled bool) (*spinner.Spinner, func()) {
	r.log.Debugf("Starting spinner with message: %s", message)
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(r.stderr))
	s.Suffix = " " + message

	if err := s.Color("cyan"); err != nil {
		r.log.Warnf("Failed to set spinner color: %v", err)
	}

	if enabled {
		s.Start()
	} else {
		r.log.Infof("%s", message)
	}

	cleanup := func() {
		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			// Clear FinalMSG so s.Stop() doesn't print it.
			s.FinalMSG = ""
		}

		if enabled {
			s.Stop()
		}

		if finalMsg != "" {
			fmt.Fprint(r.stderr, finalMsg)
		}
	}

	return s, cleanup
}
