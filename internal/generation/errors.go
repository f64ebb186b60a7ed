package generation

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Common errors returned by the generation package
var (
	// ErrInvalidResponse is returned when a model or vendor response cannot be parsed
	ErrInvalidResponse = errors.New("invalid response from generation service")

	// ErrContentBlocked is returned when the model blocks the content due to safety filters
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransientFailure is returned for temporary errors that might resolve on retry
	ErrTransientFailure = errors.New("transient error from generation service")

	// ErrInvalidConfig is returned when a client configuration is invalid
	ErrInvalidConfig = errors.New("invalid generation client configuration")
)

// AnalysisError reports model output that could not be turned into a song
// configuration.
type AnalysisError struct {
	MissingFields []string
	Err           error
}

func (e *AnalysisError) Error() string {
	if len(e.MissingFields) > 0 {
		return fmt.Sprintf("image analysis returned incomplete output, missing: %s",
			strings.Join(e.MissingFields, ", "))
	}
	if e.Err != nil {
		return "image analysis failed: " + e.Err.Error()
	}
	return "image analysis failed"
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// SubmissionError reports a rejected generation request.
type SubmissionError struct {
	StatusCode int
	Body       string
	Err        error
}

// IsGatewayTimeout reports whether the service answered 504.
func (e *SubmissionError) IsGatewayTimeout() bool {
	return e.StatusCode == 504
}

func (e *SubmissionError) Error() string {
	if e.IsGatewayTimeout() {
		return "music generation service timed out (504). Possible causes: " +
			"the service is temporarily unavailable, the API token is invalid or out of quota, " +
			"or the network path to the service is unstable. Retry later or check the token"
	}
	msg := fmt.Sprintf("music generation request rejected (status %d)", e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// PollFailureError reports that the generation job itself failed.
type PollFailureError struct {
	JobID  string
	Reason string
}

func (e *PollFailureError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "no reason given"
	}
	return fmt.Sprintf("music generation job %s failed: %s", e.JobID, reason)
}

// PollTimeoutError reports that the attempt budget ran out before the job
// reached a terminal state.
type PollTimeoutError struct {
	JobID    string
	Attempts int
	Budget   time.Duration
}

func (e *PollTimeoutError) Error() string {
	return fmt.Sprintf("music generation job %s did not finish after %d status checks (%s)",
		e.JobID, e.Attempts, e.Budget)
}
