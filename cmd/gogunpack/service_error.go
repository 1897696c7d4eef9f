// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/gogunpack/gogunpack/internal/issue"

	"github.com/spf13/cobra"
)

// issueStyle is the glamour style used for catalog help.
const issueStyle = "dark"

type (
	// ServiceError pairs a failure with the help a command shows for it:
	// a pre-styled headline and a catalog entry. Build it with
	// newServiceError; a nil Err panics.
	ServiceError struct {
		Err           error
		IssueID       issue.Id
		StyledMessage string
	}
)

func newServiceError(err error, id issue.Id, styled string) *ServiceError {
	if err == nil {
		panic("newServiceError: nil error")
	}
	return &ServiceError{Err: err, IssueID: id, StyledMessage: styled}
}

func (e *ServiceError) Error() string { return e.Err.Error() }

func (e *ServiceError) Unwrap() error { return e.Err }

// renderServiceError prints any styled message first, then the optional
// issue help section.
func renderServiceError(w io.Writer, se *ServiceError) {
	if se == nil {
		return
	}
	if se.StyledMessage != "" {
		fmt.Fprint(w, se.StyledMessage)
	}

	entry := issue.Get(se.IssueID)
	if se.IssueID == 0 || entry == nil {
		return
	}
	text, err := entry.Render(issueStyle)
	if err != nil {
		slog.Warn("cannot render help", "issue", se.IssueID, "error", err)
		return
	}
	fmt.Fprint(w, text)
}

// formatErrorForDisplay adds suggestions, and in verbose mode the cause
// chain, when err carries an ActionableError.
func formatErrorForDisplay(err error, verbose bool) string {
	var actionable *issue.ActionableError
	if errors.As(err, &actionable) {
		return actionable.Format(verbose)
	}
	return err.Error()
}

// failCommand renders err on stderr and returns an ExitError so fang does
// not print it a second time.
func failCommand(cmd *cobra.Command, err error, verboseMode bool) error {
	w := cmd.ErrOrStderr()

	var se *ServiceError
	switch {
	case errors.As(err, &se):
		renderServiceError(w, se)
	case issue.IssueOf(err) != nil:
		renderServiceError(w, newServiceError(err, issue.IssueOf(err).Id(), ""))
	}
	fmt.Fprintln(w, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verboseMode))

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	return &ExitError{Code: 1, Err: err}
}
