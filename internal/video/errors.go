package video

import (
	"errors"
	"fmt"
)

// ErrInvalidDuration is returned for a video length outside 1..60 seconds.
var ErrInvalidDuration = errors.New("video duration must be between 1 and 60 seconds")

// DownloadError reports that the audio track could not be fetched.
type DownloadError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *DownloadError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to download audio: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("failed to download audio: %v", e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// DecodeError reports image bytes that are not a decodable picture.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode image: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError reports a failure of the encoder or of the audio probe.
type EncodeError struct {
	Stage  string
	Output string
	Err    error
}

func (e *EncodeError) Error() string {
	msg := fmt.Sprintf("video %s failed: %v", e.Stage, e.Err)
	if e.Output != "" {
		msg += ": " + e.Output
	}
	return msg
}

func (e *EncodeError) Unwrap() error { return e.Err }
