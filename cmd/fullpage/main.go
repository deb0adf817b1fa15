// fullpage captures full-page screenshots of web pages from the command
// line.
//
// Usage:
//
//	fullpage capture [options] <url>
//	fullpage serve [options]
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	fullpage "github.com/porticus-lab/go-fullpage"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "capture":
		if err := runCapture(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	case "serve":
		if err := runServe(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`fullpage - full-page screenshot capture tool

Usage:
  fullpage capture [options] <url>
  fullpage serve [options]

Commands:
  capture   Capture one URL and save the stitched PNG
  serve     Accept JSON capture requests over HTTP

Common options:
  -o <dir>         Output directory (default: current directory)
  -timeout <dur>   Session timeout, e.g. "90s" (default: 60s)
  -settle <dur>    Settle delay after each scroll (default: 300ms)
  -step <frac>     Scroll step as a fraction of the viewport (default: 0.8)
  -max-steps <n>   Scroll step ceiling per session (default: 64)
  -viewport <WxH>  Emulated viewport, e.g. "1280x800"
  -no-sandbox      Disable the Chrome sandbox (needed as root)
  -download        Download Chromium if none is installed
  -v               Verbose (debug) logging

Serve options:
  -addr <addr>     Listen address (default: :8044)

Examples:
  fullpage capture https://example.com
  fullpage capture -o shots -step 0.7 -viewport 1280x800 https://example.com
  fullpage serve -addr :8044 -o shots
`)
}

// cliOptions holds the flags shared by the capture and serve commands.
type cliOptions struct {
	outDir    string
	timeout   time.Duration
	addr      string
	noSandbox bool
	download  bool
	verbose   bool
	cfg       fullpage.CaptureConfig
	args      []string
}

// parseOptions consumes flags from args in order, returning the
// positional remainder in cliOptions.args.
func parseOptions(args []string) (*cliOptions, error) {
	o := &cliOptions{
		outDir: ".",
		addr:   ":8044",
		cfg:    fullpage.DefaultCaptureConfig(),
	}

	next := func(i *int, flag string) (string, error) {
		*i++
		if *i >= len(args) {
			return "", fmt.Errorf("%s requires an argument", flag)
		}
		return args[*i], nil
	}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-o":
			v, err := next(&i, "-o")
			if err != nil {
				return nil, err
			}
			o.outDir = v
		case "-timeout":
			v, err := next(&i, "-timeout")
			if err != nil {
				return nil, err
			}
			d, err := time.ParseDuration(v)
			if err != nil {
				return nil, fmt.Errorf("invalid -timeout: %w", err)
			}
			o.timeout = d
		case "-settle":
			v, err := next(&i, "-settle")
			if err != nil {
				return nil, err
			}
			d, err := time.ParseDuration(v)
			if err != nil {
				return nil, fmt.Errorf("invalid -settle: %w", err)
			}
			o.cfg.SettleDelay = d
		case "-step":
			v, err := next(&i, "-step")
			if err != nil {
				return nil, err
			}
			f, err := strconv.ParseFloat(v, 64)
			if err != nil || f <= 0 || f > 1 {
				return nil, fmt.Errorf("invalid -step %q: want a fraction in (0, 1]", v)
			}
			o.cfg.StepFraction = f
		case "-max-steps":
			v, err := next(&i, "-max-steps")
			if err != nil {
				return nil, err
			}
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				return nil, fmt.Errorf("invalid -max-steps %q", v)
			}
			o.cfg.MaxSteps = n
		case "-viewport":
			v, err := next(&i, "-viewport")
			if err != nil {
				return nil, err
			}
			w, h, err := parseViewport(v)
			if err != nil {
				return nil, err
			}
			o.cfg.ViewportWidth = w
			o.cfg.ViewportHeight = h
		case "-addr":
			v, err := next(&i, "-addr")
			if err != nil {
				return nil, err
			}
			o.addr = v
		case "-no-sandbox":
			o.noSandbox = true
		case "-download":
			o.download = true
		case "-v":
			o.verbose = true
		default:
			if strings.HasPrefix(args[i], "-") {
				return nil, fmt.Errorf("unknown option: %s", args[i])
			}
			o.args = append(o.args, args[i])
		}
	}
	return o, nil
}

// parseViewport parses "1280x800" into width and height.
func parseViewport(spec string) (int, int, error) {
	parts := strings.SplitN(strings.ToLower(spec), "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid -viewport %q: want WxH", spec)
	}
	w, err := strconv.Atoi(parts[0])
	if err != nil || w < 1 {
		return 0, 0, fmt.Errorf("invalid viewport width: %s", parts[0])
	}
	h, err := strconv.Atoi(parts[1])
	if err != nil || h < 1 {
		return 0, 0, fmt.Errorf("invalid viewport height: %s", parts[1])
	}
	return w, h, nil
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

func newCapturer(o *cliOptions, log zerolog.Logger) (*fullpage.Capturer, error) {
	opts := []fullpage.Option{fullpage.WithLogger(log)}
	if o.timeout > 0 {
		opts = append(opts, fullpage.WithTimeout(o.timeout))
	}
	if o.noSandbox {
		opts = append(opts, fullpage.WithNoSandbox())
	}
	if o.download {
		opts = append(opts, fullpage.WithAutoDownload())
	}
	return fullpage.NewCapturer(opts...)
}

// runCapture implements the "capture" command.
func runCapture(args []string) error {
	o, err := parseOptions(args)
	if err != nil {
		return err
	}
	if len(o.args) != 1 {
		return fmt.Errorf("expected exactly one URL")
	}
	log := newLogger(o.verbose)

	c, err := newCapturer(o, log)
	if err != nil {
		return err
	}
	defer c.Close()

	res, err := c.CaptureURL(context.Background(), o.args[0], &o.cfg)
	if err != nil {
		return err
	}

	path, err := res.Save(o.outDir)
	if err != nil {
		return err
	}
	log.Info().Str("file", path).Int("bytes", res.Len()).Msg("capture saved")
	return nil
}

// runServe implements the "serve" command.
func runServe(args []string) error {
	o, err := parseOptions(args)
	if err != nil {
		return err
	}
	if len(o.args) != 0 {
		return fmt.Errorf("serve takes no positional arguments")
	}
	log := newLogger(o.verbose)

	c, err := newCapturer(o, log)
	if err != nil {
		return err
	}
	defer c.Close()

	handler := &fullpage.Handler{Capturer: c, OutDir: o.outDir, Config: &o.cfg}
	log.Info().Str("addr", o.addr).Str("out_dir", o.outDir).Msg("listening for capture requests")
	return http.ListenAndServe(o.addr, handler)
}
