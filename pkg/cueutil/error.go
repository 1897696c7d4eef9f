// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	cueerrors "cuelang.org/go/cue/errors"
)

// ErrFileTooLarge is returned when an input exceeds the configured size limit.
var ErrFileTooLarge = errors.New("file too large")

type (
	// ValidationError lists the CUE problems found in one file.
	ValidationError struct {
		File     string
		Problems []Problem
	}

	// Problem is a single CUE error located by its JSON path,
	// e.g. gog_games.ignores[0].
	Problem struct {
		Path    string
		Message string
	}
)

// Error renders "<file>: <path>: <message>", one problem per line when
// there are several.
func (e *ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return e.File + ": " + e.Problems[0].String()
	}
	lines := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		lines[i] = p.String()
	}
	return fmt.Sprintf("%s: validation failed:\n  %s", e.File, strings.Join(lines, "\n  "))
}

// String renders the problem with its path, if any.
func (p Problem) String() string {
	if p.Path == "" {
		return p.Message
	}
	return p.Path + ": " + p.Message
}

// FormatError turns a CUE error into a *ValidationError for filePath.
// Errors that carry no CUE detail are wrapped with the file name.
func FormatError(err error, filePath string) error {
	if err == nil {
		return nil
	}

	list := cueerrors.Errors(err)
	if len(list) == 0 {
		return fmt.Errorf("%s: %w", filePath, err)
	}

	verr := &ValidationError{File: filePath}
	for _, e := range list {
		path := formatPath(cueerrors.Path(e))
		// CUE sometimes repeats the path at the start of the message.
		msg := strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(e.Error(), path), ":"))
		if path == "" {
			msg = e.Error()
		}
		verr.Problems = append(verr.Problems, Problem{Path: path, Message: msg})
	}
	return verr
}

// formatPath joins CUE path selectors in JSON-path notation: list indexes
// after the first selector become [n].
func formatPath(path []string) string {
	var b strings.Builder
	for i, sel := range path {
		switch {
		case i == 0:
			b.WriteString(sel)
		case isIndex(sel):
			b.WriteString("[" + sel + "]")
		default:
			b.WriteString("." + sel)
		}
	}
	return b.String()
}

func isIndex(sel string) bool {
	_, err := strconv.ParseUint(sel, 10, 64)
	return err == nil
}

// CheckFileSize returns an error wrapping ErrFileTooLarge if data is larger
// than maxSize.
func CheckFileSize(data []byte, maxSize int64, filename string) error {
	if size := int64(len(data)); size > maxSize {
		return fmt.Errorf("%s: %w: %d bytes exceeds maximum %d bytes", filename, ErrFileTooLarge, size, maxSize)
	}
	return nil
}
