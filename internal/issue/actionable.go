// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
)

type (
	// ActionableError is a user-facing error: the step that failed, the path
	// it was working on, what the user can do about it and, optionally, the
	// catalog entry with longer help.
	//
	//	err := issue.NewErrorContext().
	//		WithOperation("save manifest").
	//		WithResource("manifests/gog-games.json").
	//		WithSuggestion("Check that MANIFESTS_OUTPUT_DIR is writable").
	//		WithIssue(issue.ManifestWriteFailedId).
	//		Wrap(err).
	//		BuildError()
	ActionableError struct {
		// Operation is a verb phrase such as "load sources".
		Operation string
		// Resource is the file or directory involved, if any.
		Resource string
		// Suggestions are shown under "Try:".
		Suggestions []string
		// IssueID selects the catalog entry rendered by the CLI, 0 for none.
		IssueID Id
		Cause   error
	}

	// ErrorContext builds an ActionableError step by step.
	ErrorContext struct {
		err ActionableError
	}
)

// NewErrorContext starts an empty ErrorContext.
func NewErrorContext() *ErrorContext {
	return &ErrorContext{}
}

// Error renders "failed to <operation>[: <resource>][: <cause>]".
func (e *ActionableError) Error() string {
	parts := []string{"failed to " + e.Operation}
	if e.Resource != "" {
		parts = append(parts, e.Resource)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, ": ")
}

// Unwrap returns the cause.
func (e *ActionableError) Unwrap() error {
	return e.Cause
}

// Chain lists the messages of the cause and of everything it wraps.
func (e *ActionableError) Chain() []string {
	var chain []string
	for err := e.Cause; err != nil; err = errors.Unwrap(err) {
		chain = append(chain, err.Error())
	}
	return chain
}

// Format renders the message and suggestions. Verbose output also numbers
// every error in the cause chain:
//
//	failed to <operation>: <resource>: <cause>
//
//	Try:
//	  - <suggestion>
//
//	Error chain:
//	  1. <cause>
func (e *ActionableError) Format(verbose bool) string {
	var b strings.Builder
	b.WriteString(e.Error())

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nTry:")
		for _, s := range e.Suggestions {
			b.WriteString("\n  - ")
			b.WriteString(s)
		}
	}

	if chain := e.Chain(); verbose && len(chain) > 0 {
		b.WriteString("\n\nError chain:")
		for i, msg := range chain {
			fmt.Fprintf(&b, "\n  %d. %s", i+1, msg)
		}
	}
	return b.String()
}

// WithOperation sets the failed step.
func (c *ErrorContext) WithOperation(op string) *ErrorContext {
	c.err.Operation = op
	return c
}

// WithResource sets the path involved.
func (c *ErrorContext) WithResource(res string) *ErrorContext {
	c.err.Resource = res
	return c
}

// WithSuggestion appends a suggestion.
func (c *ErrorContext) WithSuggestion(s string) *ErrorContext {
	c.err.Suggestions = append(c.err.Suggestions, s)
	return c
}

// WithIssue links a catalog entry.
func (c *ErrorContext) WithIssue(id Id) *ErrorContext {
	c.err.IssueID = id
	return c
}

// Wrap sets the cause.
func (c *ErrorContext) Wrap(err error) *ErrorContext {
	c.err.Cause = err
	return c
}

// BuildError returns the built error, or an untyped nil when no operation
// was set.
func (c *ErrorContext) BuildError() error {
	if c.err.Operation == "" {
		return nil
	}
	built := c.err
	built.Suggestions = append([]string(nil), c.err.Suggestions...)
	return &built
}

// IssueOf returns the catalog entry linked to the first ActionableError in
// err's chain, or nil.
func IssueOf(err error) *Issue {
	var ae *ActionableError
	if !errors.As(err, &ae) || ae.IssueID == 0 {
		return nil
	}
	return Get(ae.IssueID)
}
