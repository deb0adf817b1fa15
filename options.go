package fullpage

import (
	"time"

	"github.com/rs/zerolog"
)

// BusyPolicy decides what happens to a capture request that arrives while
// another session is still running against the same Capturer. Two
// sessions must never interleave their scroll and capture steps, so the
// only choices are rejecting or waiting.
type BusyPolicy int

const (
	// RejectWhileBusy fails the new request immediately with [ErrBusy].
	// This is the default.
	RejectWhileBusy BusyPolicy = iota

	// QueueWhileBusy blocks the new request until the running session
	// finishes, then runs it.
	QueueWhileBusy
)

// capturerConfig holds internal configuration for a Capturer.
type capturerConfig struct {
	chromePath   string
	timeout      time.Duration
	noSandbox    bool
	headless     string
	autoDownload bool
	busyPolicy   BusyPolicy
	log          zerolog.Logger
}

func defaultConfig() capturerConfig {
	return capturerConfig{
		timeout:  60 * time.Second,
		headless: "new",
		log:      zerolog.Nop(),
	}
}

// Option configures a [Capturer].
type Option func(*capturerConfig)

// WithChromePath sets the path to the Chrome or Chromium executable.
// By default the library searches standard locations automatically.
func WithChromePath(path string) Option {
	return func(c *capturerConfig) {
		c.chromePath = path
	}
}

// WithTimeout sets the maximum duration for a single capture session,
// covering every scroll, settle and capture step plus stitching.
// Defaults to 60 seconds. A zero or negative value disables the timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *capturerConfig) {
		c.timeout = d
	}
}

// WithNoSandbox disables the Chrome sandbox. This is required when
// running as root, for example inside Docker containers.
func WithNoSandbox() Option {
	return func(c *capturerConfig) {
		c.noSandbox = true
	}
}

// WithAutoDownload downloads a compatible Chromium binary into the local
// cache when no executable is found, and uses it. Ignored when
// [WithChromePath] is also given.
func WithAutoDownload() Option {
	return func(c *capturerConfig) {
		c.autoDownload = true
	}
}

// WithBusyPolicy sets how requests arriving mid-session are handled.
// Defaults to [RejectWhileBusy].
func WithBusyPolicy(p BusyPolicy) Option {
	return func(c *capturerConfig) {
		c.busyPolicy = p
	}
}

// WithLogger sets the logger used for per-step progress and for
// best-effort failures such as scroll restoration. Defaults to a no-op
// logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *capturerConfig) {
		c.log = log
	}
}
