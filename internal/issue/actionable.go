// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
)

type (
	// ActionableError is an error with context for user-facing error messages.
	// It records what operation failed, which resource was involved, hints
	// for fixing it and, optionally, the troubleshooting guide to show.
	//
	//	err := issue.NewErrorContext().
	//		WithOperation("list releases").
	//		WithResource("CleverRaven/Cataclysm-DDA").
	//		WithSuggestion("Set a GitHub token to raise the rate limit").
	//		WithIssue(issue.RateLimitedId).
	//		Wrap(originalErr).
	//		BuildError()
	ActionableError struct {
		// Operation describes what was being attempted (e.g., "download asset").
		Operation string

		// Resource identifies the file, URL, or repository involved (optional).
		Resource string

		// Suggestions provides hints on how to fix the issue (optional).
		Suggestions []string

		// Guide links the error to a troubleshooting Issue (optional, zero when unset).
		Guide Id

		// Cause is the underlying error that triggered this error (optional).
		Cause error
	}

	// ErrorContext is a builder for constructing ActionableError instances.
	//
	//	ctx := issue.NewErrorContext().
	//		WithOperation("extract archive").
	//		WithResource("download/cdda-linux-tiles-x64-2024-01-01-0000.tar.gz")
	//
	//	// Later, when an error occurs:
	//	return ctx.WithSuggestion("Delete the archive and retry").Wrap(err).BuildError()
	ErrorContext struct {
		operation   string
		resource    string
		suggestions []string
		guide       Id
		cause       error
	}
)

// --- Constructors ---

// NewErrorContext creates a new ErrorContext builder.
func NewErrorContext() *ErrorContext {
	return &ErrorContext{}
}

// WrapWithContext wraps an error with operation and resource context.
func WrapWithContext(err error, operation, resource string) *ActionableError {
	if err == nil {
		return nil
	}
	return &ActionableError{
		Operation: operation,
		Resource:  resource,
		Cause:     err,
	}
}

// --- ActionableError Methods ---

// Error implements the error interface.
// Returns a concise error message suitable for default (non-verbose) output.
func (e *ActionableError) Error() string {
	var msg strings.Builder

	msg.WriteString("failed to ")
	msg.WriteString(e.Operation)

	if e.Resource != "" {
		msg.WriteString(": ")
		msg.WriteString(e.Resource)
	}

	if e.Cause != nil {
		msg.WriteString(": ")
		msg.WriteString(e.Cause.Error())
	}

	return msg.String()
}

// Unwrap returns the underlying cause error for use with errors.Is/As.
func (e *ActionableError) Unwrap() error {
	return e.Cause
}

// Format returns the error line followed by Details, separated by a blank
// line:
//
//	failed to <operation>: <resource>: <cause message>
//
//	  • <suggestion 1>
//	  • <suggestion 2>
func (e *ActionableError) Format(verbose bool) string {
	details := e.Details(verbose)
	if details == "" {
		return e.Error()
	}
	return e.Error() + "\n\n" + details
}

// Details renders the suggestions as a bulleted list and, when verbose, the
// cause chain. It is empty when there is nothing to add to Error.
func (e *ActionableError) Details(verbose bool) string {
	var sections []string
	if len(e.Suggestions) > 0 {
		bullets := make([]string, len(e.Suggestions))
		for i, s := range e.Suggestions {
			bullets[i] = "  • " + s
		}
		sections = append(sections, strings.Join(bullets, "\n"))
	}
	if verbose && e.Cause != nil {
		sections = append(sections, Chain(e.Cause))
	}
	return strings.Join(sections, "\n\n")
}

// Chain lists err and every error it wraps, one per numbered line.
func Chain(err error) string {
	var b strings.Builder
	b.WriteString("Error chain:")
	for depth := 1; err != nil; depth++ {
		fmt.Fprintf(&b, "\n  %d. %s", depth, err.Error())
		err = errors.Unwrap(err)
	}
	return b.String()
}

// HasSuggestions returns true if there are any suggestions.
func (e *ActionableError) HasSuggestions() bool {
	return len(e.Suggestions) > 0
}

// Issue returns the linked troubleshooting guide, or nil.
func (e *ActionableError) Issue() *Issue {
	if e.Guide == 0 {
		return nil
	}
	return Get(e.Guide)
}

// --- ErrorContext Methods ---

// WithOperation sets the operation being performed, as a verb phrase
// like "download asset".
func (c *ErrorContext) WithOperation(op string) *ErrorContext {
	c.operation = op
	return c
}

// WithResource sets the resource (file, URL, repository) involved.
func (c *ErrorContext) WithResource(res string) *ErrorContext {
	c.resource = res
	return c
}

// WithSuggestion adds a suggestion for how to fix the issue.
// Can be called multiple times to add multiple suggestions.
func (c *ErrorContext) WithSuggestion(sug string) *ErrorContext {
	c.suggestions = append(c.suggestions, sug)
	return c
}

// WithSuggestions adds multiple suggestions at once.
func (c *ErrorContext) WithSuggestions(sugs ...string) *ErrorContext {
	c.suggestions = append(c.suggestions, sugs...)
	return c
}

// WithIssue links a troubleshooting guide.
func (c *ErrorContext) WithIssue(id Id) *ErrorContext {
	c.guide = id
	return c
}

// Wrap wraps an underlying error as the cause.
func (c *ErrorContext) Wrap(err error) *ErrorContext {
	c.cause = err
	return c
}

// Build creates an ActionableError from the context.
// Returns nil if no operation is set (operation is required).
func (c *ErrorContext) Build() *ActionableError {
	if c.operation == "" {
		return nil
	}

	return &ActionableError{
		Operation:   c.operation,
		Resource:    c.resource,
		Suggestions: c.suggestions,
		Guide:       c.guide,
		Cause:       c.cause,
	}
}

// BuildError creates an ActionableError and returns it as an error interface.
// Returns nil if no operation is set.
func (c *ErrorContext) BuildError() error {
	ae := c.Build()
	if ae == nil {
		return nil
	}
	return ae
}
