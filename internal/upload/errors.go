package upload

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrInFlight is returned when Upload is called while another attempt on the
// same Flow has not settled.
var ErrInFlight = errors.New("an upload is already in progress")

// ValidationError means the request had nothing to upload. No network call
// was made.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// AuthFetchError means the auth endpoint was unreachable, answered with a
// non-2xx status or returned a body that is not valid AuthParameters.
type AuthFetchError struct {
	Err error
}

func (e *AuthFetchError) Error() string { return "fetch auth parameters: " + e.Err.Error() }
func (e *AuthFetchError) Unwrap() error { return e.Err }

// UploadError means the vendor rejected the upload or the request failed.
// Message is the vendor-provided message when there was one.
type UploadError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *UploadError) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return "upload: " + e.Err.Error()
	default:
		return fmt.Sprintf("upload failed with status %d", e.StatusCode)
	}
}

func (e *UploadError) Unwrap() error { return e.Err }

// TimeoutError reports that a stage exceeded its deadline.
type TimeoutError struct {
	Stage string // "auth" or "upload"
	Err   error
}

func (e *TimeoutError) Error() string { return e.Stage + " request timed out" }
func (e *TimeoutError) Unwrap() error { return e.Err }

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// StatusText renders the settled outcome the way it is shown to the user.
func StatusText(err error) string {
	if err == nil {
		return "Upload successful!"
	}

	var (
		verr *ValidationError
		aerr *AuthFetchError
		uerr *UploadError
		terr *TimeoutError
	)
	switch {
	case errors.As(err, &verr):
		return verr.Message
	case errors.As(err, &terr):
		return "Error: " + terr.Error()
	case errors.As(err, &aerr):
		return "Error: could not get upload authorization"
	case errors.As(err, &uerr) && uerr.Message != "":
		return "Error: " + uerr.Message
	case errors.As(err, &uerr):
		return "Error: Upload failed"
	default:
		return "Error: " + err.Error()
	}
}
