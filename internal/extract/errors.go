// SPDX-License-Identifier: MPL-2.0

package extract

import (
	"errors"
	"fmt"
)

var (
	// ErrInnoextractNotFound is returned when the innoextract binary cannot be started.
	ErrInnoextractNotFound = errors.New("innoextract not found")
	// ErrTimeout is returned when a single installer runs past the configured timeout.
	ErrTimeout = errors.New("extraction timed out")
	// ErrInstallerNotFound is returned when an installer listed for a game is missing.
	ErrInstallerNotFound = errors.New("installer not found")
	// ErrVerification is returned when extraction left the destination empty.
	ErrVerification = errors.New("extraction verification failed")

	// Conditions reported through innoextract exit codes.
	ErrGeneric                = errors.New("generic error or syntax error")
	ErrFileIO                 = errors.New("file not found or I/O error")
	ErrUnsupportedVersion     = errors.New("unsupported installer version")
	ErrEncrypted              = errors.New("setup data is encrypted")
	ErrChecksum               = errors.New("checksum error")
	ErrUnknown                = errors.New("unknown error")
	ErrUnsupportedCompression = errors.New("unsupported compression method")
	ErrCorrupted              = errors.New("corrupted installer")
	ErrDiskSpace              = errors.New("insufficient disk space")
	ErrCancelled              = errors.New("cancelled by user")

	exitCodeErrors = map[int]error{
		1:  ErrGeneric,
		2:  ErrFileIO,
		3:  ErrUnsupportedVersion,
		4:  ErrEncrypted,
		5:  ErrChecksum,
		6:  ErrUnknown,
		7:  ErrUnsupportedCompression,
		8:  ErrCorrupted,
		9:  ErrDiskSpace,
		10: ErrCancelled,
	}
)

type (
	// ExitCodeError is returned when innoextract exits with a non-zero status.
	ExitCodeError struct {
		Installer string
		Code      int
		// LogPath is the kept innoextract output.
		LogPath string
	}

	// GameError wraps the underlying failure of a game.
	GameError struct {
		GameName string
		Err      error
	}
)

// ErrorForExitCode returns the named condition for an innoextract exit code,
// or nil when the code has no name.
func ErrorForExitCode(code int) error {
	return exitCodeErrors[code]
}

// Error implements the error interface.
func (e *ExitCodeError) Error() string {
	if named := ErrorForExitCode(e.Code); named != nil {
		return fmt.Sprintf("extract %s: %s (exit code %d)", e.Installer, named, e.Code)
	}
	return fmt.Sprintf("extract %s: unknown error code %d", e.Installer, e.Code)
}

// Unwrap returns the named condition for the exit code, if any.
func (e *ExitCodeError) Unwrap() error {
	return ErrorForExitCode(e.Code)
}

// Error implements the error interface.
func (e *GameError) Error() string {
	return fmt.Sprintf("process game %q: %v", e.GameName, e.Err)
}

// Unwrap returns the underlying error.
func (e *GameError) Unwrap() error {
	return e.Err
}
