package core

// errors.go defines the error taxonomy for the moderation pipeline and the
// mapping from internal errors to user-facing messages with support codes.
//
// Error codes are grouped by category:
//
//	REC001 - Record not found
//	REC002 - Show before approve
//	REC003 - Storage failure
//	FET001 - Upstream API unreachable or malformed
//	EXP001 - Export write failure
//	CFG001 - Malformed or unwritable settings
//	REQ001 - Malformed request parameter

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a moderation operation targets an id that is
// not in the record store.
var ErrNotFound = errors.New("donation not found")

// ErrNotApproved is returned when MarkShown is called on a record that has
// not been approved. Shown is only reachable from Approved.
var ErrNotApproved = errors.New("donation not approved")

// StorageError wraps a persistence-layer fault. Callers must not assume any
// partial write happened.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// UpstreamFetchError wraps a failure to fetch or decode the upstream
// donation list. It never corrupts existing state; a cycle that hits it
// simply reconciles zero records.
type UpstreamFetchError struct {
	TeamID string
	Err    error
}

func (e *UpstreamFetchError) Error() string {
	return fmt.Sprintf("extra-life fetch for team %s: %v", e.TeamID, e.Err)
}

func (e *UpstreamFetchError) Unwrap() error { return e.Err }

// ExportWriteError wraps a failure to append an approved donation to the
// export file. The approval flag itself is already committed when this is
// returned; flag mutation and export are not transactional.
type ExportWriteError struct {
	Path string
	Err  error
}

func (e *ExportWriteError) Error() string {
	return fmt.Sprintf("export write to %s: %v", e.Path, e.Err)
}

func (e *ExportWriteError) Unwrap() error { return e.Err }

// ConfigError wraps a malformed or unwritable persisted settings document.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("settings %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// BadInputError wraps a malformed client-supplied value, such as a flag
// query parameter that is not a boolean.
type BadInputError struct {
	Field string
	Err   error
}

func (e *BadInputError) Error() string {
	return fmt.Sprintf("bad input %s: %v", e.Field, e.Err)
}

func (e *BadInputError) Unwrap() error { return e.Err }

// UserMessage is a user-friendly error with a support code and a suggested
// action. Moderators can quote the code when reporting a problem.
type UserMessage struct {
	Code    string
	Message string
	Action  string
}

// MapError converts an internal error to a user-friendly message.
// Unrecognized errors fall through to a generic message so raw internals
// never leak to the client.
func MapError(err error) UserMessage {
	var storageErr *StorageError
	var fetchErr *UpstreamFetchError
	var exportErr *ExportWriteError
	var configErr *ConfigError
	var inputErr *BadInputError

	switch {
	case errors.Is(err, ErrNotFound):
		return UserMessage{
			Code:    "REC001",
			Message: "That donation is not in the queue",
			Action:  "Refresh the queue and try again",
		}
	case errors.Is(err, ErrNotApproved):
		return UserMessage{
			Code:    "REC002",
			Message: "Only approved donations can be marked as shown",
			Action:  "Approve the donation first",
		}
	case errors.As(err, &storageErr):
		return UserMessage{
			Code:    "REC003",
			Message: "The donation database could not complete the operation",
			Action:  "Check the database file and try again",
		}
	case errors.As(err, &fetchErr):
		return UserMessage{
			Code:    "FET001",
			Message: "Could not reach the Extra Life API",
			Action:  "Already-stored donations are unaffected; retry on the next refresh",
		}
	case errors.As(err, &exportErr):
		return UserMessage{
			Code:    "EXP001",
			Message: "The donation was approved but could not be written to the export file",
			Action:  "Check the export path in settings, then re-approve to re-export",
		}
	case errors.As(err, &configErr):
		return UserMessage{
			Code:    "CFG001",
			Message: "Export settings could not be read or saved",
			Action:  "Verify the settings file is valid JSON and writable",
		}
	case errors.As(err, &inputErr):
		return UserMessage{
			Code:    "REQ001",
			Message: fmt.Sprintf("The %s parameter is not valid", inputErr.Field),
			Action:  "Use 0/1 or true/false for flag parameters",
		}
	case err != nil && strings.Contains(err.Error(), "context deadline exceeded"):
		return UserMessage{
			Code:    "FET002",
			Message: "The operation timed out",
			Action:  "Try again in a few moments",
		}
	default:
		return UserMessage{
			Code:    "GEN001",
			Message: "An unexpected error occurred",
			Action:  "Try again, and quote this code if the problem persists",
		}
	}
}
