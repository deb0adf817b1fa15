package fullpage

import (
	"bytes"
	"encoding/base64"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Result holds a stitched full-page screenshot and provides helpers for
// common output formats such as raw bytes, base64 encoding, and streaming
// readers.
//
// A Result is returned by every capture method. It is safe to call its
// methods multiple times — the underlying data is never modified.
type Result struct {
	data     []byte
	filename string
}

// Bytes returns the raw PNG content.
func (r *Result) Bytes() []byte {
	return r.data
}

// Base64 returns the PNG encoded as a standard base64 string (RFC 4648).
// This is useful for embedding in JSON payloads or data URLs.
func (r *Result) Base64() string {
	return base64.StdEncoding.EncodeToString(r.data)
}

// Reader returns an [*bytes.Reader] over the PNG content.
// This is suitable for streaming uploads to cloud storage or any API that
// accepts an [io.Reader].
func (r *Result) Reader() *bytes.Reader {
	return bytes.NewReader(r.data)
}

// WriteTo writes the full PNG content to w. It implements [io.WriterTo].
func (r *Result) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(r.data)
	return int64(n), err
}

// WriteToFile writes the PNG to the file at path, creating it if needed.
func (r *Result) WriteToFile(path string, perm os.FileMode) error {
	return os.WriteFile(path, r.data, perm)
}

// Filename returns the deterministic name generated from the capture
// time, in the form fullpage_2026-08-25_14-03-59.png.
func (r *Result) Filename() string {
	return r.filename
}

// Save writes the PNG into dir under its generated [Result.Filename] and
// returns the full path.
func (r *Result) Save(dir string) (string, error) {
	path := filepath.Join(dir, r.filename)
	if err := os.WriteFile(path, r.data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// Len returns the size of the PNG in bytes.
func (r *Result) Len() int {
	return len(r.data)
}

// outputFilename names a capture artifact from its capture time.
func outputFilename(t time.Time) string {
	return "fullpage_" + t.Format("2006-01-02_15-04-05") + ".png"
}
