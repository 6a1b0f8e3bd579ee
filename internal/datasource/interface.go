package datasource

import (
	"context"
	"errors"

	"github.com/yourusername/sodium-tycoon/internal/models"
)

// MatchSource supplies the contest currently open for betting
type MatchSource interface {
	// FetchCurrentMatch returns the decision input for the open contest.
	// A side the source has never seen comes back as a nil fighter.
	FetchCurrentMatch(ctx context.Context) (*models.DecisionInput, error)

	// FetchBalance returns the wallet balance to size stakes against
	FetchBalance(ctx context.Context) (int64, error)

	// Name returns the name of the data source
	Name() string
}

// DataSourceError represents errors from data source operations.
// Every DataSourceError matches models.ErrDataUnavailable.
type DataSourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e DataSourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

// Unwrap exposes the data-unavailable sentinel and the underlying cause
func (e DataSourceError) Unwrap() []error {
	if e.Err != nil {
		return []error{models.ErrDataUnavailable, e.Err}
	}
	return []error{models.ErrDataUnavailable}
}

// Common error codes
const (
	ErrCodeRateLimitExceeded = "rate_limit_exceeded"
	ErrCodeNotFound          = "not_found"
	ErrCodeInvalidData       = "invalid_data"
	ErrCodeNetworkError      = "network_error"
	ErrCodeServerError       = "server_error"
)

// ErrNoOpenMatch is returned when the source has no contest in progress
var ErrNoOpenMatch = errors.New("no open match")

// NewDataSourceError creates a new data source error
func NewDataSourceError(source, code, message string, err error) DataSourceError {
	return DataSourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
