package fullpage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Actions accepted by [Handler]. Both trigger the same full-page capture;
// two names are kept because existing callers use either.
const (
	ActionCaptureScreenshot = "captureScreenshot"
	ActionCaptureFullPage   = "captureFullPage"
)

// Request asks for a full-page capture of a target URL.
type Request struct {
	Action string `json:"action"`
	Target string `json:"target"`
}

// Response reports whether a capture request succeeded.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Handler is the thin glue between a capture trigger and the pipeline: it
// runs a session against the requested target and persists the artifact
// into OutDir under its generated filename. It also implements
// [http.Handler], decoding a JSON [Request] body and writing a JSON
// [Response].
type Handler struct {
	Capturer *Capturer
	OutDir   string

	// Config applies to every capture this handler runs; nil means
	// [DefaultCaptureConfig].
	Config *CaptureConfig
}

// ServeRequest runs the capture described by req.
func (h *Handler) ServeRequest(ctx context.Context, req Request) Response {
	switch req.Action {
	case ActionCaptureScreenshot, ActionCaptureFullPage:
	default:
		return Response{Error: fmt.Sprintf("unknown action %q", req.Action)}
	}
	if req.Target == "" {
		return Response{Error: "missing capture target"}
	}

	res, err := h.Capturer.CaptureURL(ctx, req.Target, h.Config)
	if err != nil {
		return Response{Error: err.Error()}
	}
	if _, err := res.Save(h.OutDir); err != nil {
		return Response{Error: err.Error()}
	}
	return Response{Success: true}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Error: "malformed request: " + err.Error()})
		return
	}
	resp := h.ServeRequest(r.Context(), req)
	status := http.StatusOK
	if !resp.Success {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
