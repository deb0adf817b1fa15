package fullpage

import "errors"

// Sentinel errors returned by the library. Session failures wrap one of
// these, so callers can classify them with [errors.Is].
var (
	// ErrClosed is returned when attempting to use a closed [Capturer].
	ErrClosed = errors.New("fullpage: capturer is closed")

	// ErrBusy is returned under [RejectWhileBusy] when a capture request
	// arrives while another session is still running.
	ErrBusy = errors.New("fullpage: a capture session is already in progress")

	// ErrProbeFailed means the page's scroll geometry could not be read.
	// It is fatal to the session before any capture is attempted.
	ErrProbeFailed = errors.New("fullpage: page geometry unreadable")

	// ErrScrollFailed means a scroll step could not be applied. The
	// session aborts without producing a partial image.
	ErrScrollFailed = errors.New("fullpage: scroll step not applied")

	// ErrCaptureFailed means the visible-area capture primitive errored,
	// for example due to devtools rate limiting.
	ErrCaptureFailed = errors.New("fullpage: viewport capture failed")

	// ErrStitchFailed means the final canvas could not be composed or
	// encoded. No partial output is produced.
	ErrStitchFailed = errors.New("fullpage: image composition failed")
)

// isSessionError reports whether err carries one of the per-stage
// sentinels, in which case it is already fully described and must not be
// wrapped again.
func isSessionError(err error) bool {
	for _, kind := range []error{ErrProbeFailed, ErrScrollFailed, ErrCaptureFailed, ErrStitchFailed} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
